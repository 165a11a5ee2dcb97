package model

import "time"

// ClientTraffic is a panel client joined with its inbound and traffic counters.
type ClientTraffic struct {
	ID         int64      `db:"id" json:"id"`
	UUID       string     `db:"uuid" json:"uuid"`
	Username   string     `db:"username" json:"username"`
	Enabled    bool       `db:"enable" json:"enable"`
	Inbound    string     `db:"inbound" json:"inbound"`
	Upload     int64      `db:"upload" json:"upload"`
	Download   int64      `db:"download" json:"download"`
	ExpiryTime *time.Time `db:"expiry_time" json:"expiry_time,omitempty"`
}

// Total is the combined upload and download byte count.
func (c *ClientTraffic) Total() int64 {
	return c.Upload + c.Download
}

// Expired reports whether the client has an expiry in the past relative to now.
func (c *ClientTraffic) Expired(now time.Time) bool {
	return c.ExpiryTime != nil && now.After(*c.ExpiryTime)
}

// DaysRemaining rounds the time left until expiry up to whole days. It returns false when
// the client never expires.
func (c *ClientTraffic) DaysRemaining(now time.Time) (int, bool) {
	if c.ExpiryTime == nil {
		return 0, false
	}
	left := c.ExpiryTime.Sub(now)
	if left <= 0 {
		return 0, true
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days, true
}

// HostHealth is a snapshot of the machine serving the panel. Nil fields could not be
// collected.
type HostHealth struct {
	Uptime       *string
	CPUPercent   *float64
	RAMPercent   *float64
	RAMUsageText *string
	DiskPercent  *float64
	IP           *string
}
