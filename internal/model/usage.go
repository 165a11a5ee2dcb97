package model

import "math"

// GiB is the multiplier between the gigabyte figures on the wire and bytes.
const GiB = 1024 * 1024 * 1024

// IdentifierKind selects which query key a usage lookup is made with.
type IdentifierKind string

const (
	KindUsername IdentifierKind = "username"
	KindUUID     IdentifierKind = "uuid"
)

// Valid reports whether k is a supported lookup key.
func (k IdentifierKind) Valid() bool {
	return k == KindUsername || k == KindUUID
}

// Status is the account state reported by the usage endpoint. Anything other than
// StatusActive is rendered as disabled.
type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusDisabled Status = "disabled"
)

func (s Status) Active() bool {
	return s == StatusActive
}

// Values used when the usage endpoint omits a field, and wholesale for the demo record.
const (
	DefaultStatus           = StatusActive
	DefaultDaysRemaining    = 14
	DefaultDataLimitBytes   = int64(10 * GiB)
	DefaultUsedGB           = 8.01
	DefaultUploadGB         = 2.34
	DefaultDownloadGB       = 5.67
	DefaultServerUptime     = "14 days, 5 hours"
	DefaultServerLocation   = "SG"
	DefaultServerStatus     = "Healthy"
	DefaultServerIP         = "127.0.0.1"
	DefaultCPULoadPercent   = 0.08
	DefaultRAMUsagePercent  = 37.0
	DefaultDiskUsagePercent = 10.77
	DefaultRAMUsageText     = "367MB out of 980MB"

	// LastUpdatedLayout formats the locally stamped update time.
	LastUpdatedLayout = "15:04:05"
)

// UsageRecord is the normalized, fully populated account and server record handed to a
// renderer.
type UsageRecord struct {
	Username       string `json:"username"`
	Status         Status `json:"status"`
	DaysRemaining  int    `json:"days_remaining"`
	DataLimitBytes int64  `json:"data_limit_bytes"`
	UsedBytes      int64  `json:"used_bytes"`
	UploadBytes    int64  `json:"upload_bytes"`
	DownloadBytes  int64  `json:"download_bytes"`
	LastUpdated    string `json:"last_updated"`

	ServerUptime     string  `json:"server_uptime"`
	ServerLocation   string  `json:"server_location"`
	ServerStatus     string  `json:"server_status"`
	ServerIP         string  `json:"server_ip"`
	CPULoadPercent   float64 `json:"cpu_load_percent"`
	RAMUsagePercent  float64 `json:"ram_usage_percent"`
	DiskUsagePercent float64 `json:"disk_usage_percent"`
	RAMUsageText     string  `json:"ram_usage_text"`

	// Demo marks a record made entirely of placeholder values because the lookup failed.
	Demo bool `json:"demo"`
}

// UsagePercentage is the share of the data limit consumed, rounded and clamped to [0,100].
// A record without a limit counts as fully used once any traffic exists.
func (r UsageRecord) UsagePercentage() int {
	if r.UsedBytes <= 0 {
		return 0
	}
	if r.DataLimitBytes <= 0 {
		return 100
	}
	pct := math.Round(float64(r.UsedBytes) / float64(r.DataLimitBytes) * 100)
	return int(math.Max(0, math.Min(pct, 100)))
}

// GBToBytes converts a gigabyte figure to whole bytes.
func GBToBytes(gb float64) int64 {
	return ClampBytes(gb * GiB)
}

// ClampBytes rounds a byte count to an integer in [0, math.MaxInt64]. NaN is zero.
func ClampBytes(b float64) int64 {
	if !(b > 0) {
		return 0
	}
	b = math.Round(b)
	if b >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}
