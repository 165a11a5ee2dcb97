package dto

// UsageQueryDTO carries the lookup parameters of GET /usage.
type UsageQueryDTO struct {
	UUID     string `validate:"required_without=Username,max=128"`
	Username string `validate:"required_without=UUID,max=256"`
}

// UsageResponseDTO is the body of GET /usage. Every field is optional on the wire: the
// server leaves out what it cannot determine and clients substitute their own defaults.
type UsageResponseDTO struct {
	Username      *string  `json:"username,omitempty"`
	UUID          *string  `json:"uuid,omitempty"`
	Upload        *int64   `json:"upload,omitempty"`
	Download      *int64   `json:"download,omitempty"`
	Total         *int64   `json:"total,omitempty"`
	UploadGB      *float64 `json:"upload_gb,omitempty"`
	DownloadGB    *float64 `json:"download_gb,omitempty"`
	TotalGB       *float64 `json:"total_gb,omitempty"`
	Inbound       *string  `json:"inbound,omitempty"`
	ExpiryTime    *string  `json:"expiry_time,omitempty"`
	Status        *string  `json:"status,omitempty"`
	DaysRemaining *float64 `json:"days_remaining,omitempty"`
	DataLimit     *float64 `json:"data_limit,omitempty"`
	LastUpdated   *string  `json:"last_updated,omitempty"`

	ServerUptime   *string  `json:"server_uptime,omitempty"`
	ServerLocation *string  `json:"server_location,omitempty"`
	ServerStatus   *string  `json:"server_status,omitempty"`
	ServerIP       *string  `json:"server_ip,omitempty"`
	CPULoad        *float64 `json:"cpu_load,omitempty"`
	RAMPercentage  *float64 `json:"ram_percentage,omitempty"`
	RAMUsageText   *string  `json:"ram_usage_text,omitempty"`
	DiskUsage      *float64 `json:"disk_usage,omitempty"`
}

// ErrorResponseDTO is returned with every non-2xx status.
type ErrorResponseDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
