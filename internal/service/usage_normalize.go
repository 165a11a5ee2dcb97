package service

import (
	"math"
	"strings"
	"time"

	"trafficdash/internal/api/v1/dto"
	"trafficdash/internal/model"
)

// NormalizeUsage maps a usage response onto a record, filling every field the response
// leaves out with its default. now stamps LastUpdated when the response has none.
func NormalizeUsage(resp dto.UsageResponseDTO, identifier string, now time.Time) model.UsageRecord {
	rec := model.UsageRecord{
		Username:         stringOr(resp.Username, identifier),
		Status:           model.Status(stringOr(resp.Status, string(model.DefaultStatus))),
		DaysRemaining:    model.DefaultDaysRemaining,
		DataLimitBytes:   model.DefaultDataLimitBytes,
		UsedBytes:        model.GBToBytes(floatOr(resp.TotalGB, model.DefaultUsedGB)),
		UploadBytes:      model.GBToBytes(floatOr(resp.UploadGB, model.DefaultUploadGB)),
		DownloadBytes:    model.GBToBytes(floatOr(resp.DownloadGB, model.DefaultDownloadGB)),
		LastUpdated:      stringOr(resp.LastUpdated, now.Format(model.LastUpdatedLayout)),
		ServerUptime:     stringOr(resp.ServerUptime, model.DefaultServerUptime),
		ServerLocation:   stringOr(resp.ServerLocation, model.DefaultServerLocation),
		ServerStatus:     stringOr(resp.ServerStatus, model.DefaultServerStatus),
		ServerIP:         stringOr(resp.ServerIP, model.DefaultServerIP),
		CPULoadPercent:   floatOr(resp.CPULoad, model.DefaultCPULoadPercent),
		RAMUsagePercent:  floatOr(resp.RAMPercentage, model.DefaultRAMUsagePercent),
		DiskUsagePercent: floatOr(resp.DiskUsage, model.DefaultDiskUsagePercent),
		RAMUsageText:     stringOr(resp.RAMUsageText, model.DefaultRAMUsageText),
	}

	if resp.DaysRemaining != nil {
		rec.DaysRemaining = wholeDays(*resp.DaysRemaining)
	}
	if resp.DataLimit != nil {
		rec.DataLimitBytes = model.ClampBytes(*resp.DataLimit)
	}
	return rec
}

// wholeDays rounds a day count into [0, math.MaxInt32].
func wholeDays(d float64) int {
	if !(d > 0) {
		return 0
	}
	return int(math.Min(math.Round(d), math.MaxInt32))
}

// DemoUsage is the placeholder record shown when a lookup cannot complete.
func DemoUsage(identifier string, now time.Time) model.UsageRecord {
	rec := NormalizeUsage(dto.UsageResponseDTO{}, identifier, now)
	rec.Demo = true
	return rec
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
