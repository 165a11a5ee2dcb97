// Package render presents usage records. Nothing here looks anything up; callers hand
// over a finished record.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"trafficdash/internal/model"
)

// Renderer draws one usage record.
type Renderer interface {
	Render(rec model.UsageRecord) error
}

const barWidth = 20

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes prints a byte count in base-1024 units with up to decimals fractional
// digits and no trailing zeros, e.g. "8.01 GB".
func FormatBytes(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 B"
	}
	if decimals < 0 {
		decimals = 0
	}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}
	return strconv.FormatFloat(roundTo(value, decimals), 'f', -1, 64) + " " + byteUnits[i]
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// StatusLabel is the account state as shown to the viewer.
func StatusLabel(s model.Status) string {
	if s.Active() {
		return "Enabled"
	}
	return "Disabled"
}

// TextRenderer writes a plain-text dashboard.
type TextRenderer struct {
	w io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(rec model.UsageRecord) error {
	pct := rec.UsagePercentage()

	var b strings.Builder
	if rec.Demo {
		b.WriteString("!! usage service unavailable, showing demo data\n\n")
	}

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT")
	fmt.Fprintf(tw, "  User\t%s\n", rec.Username)
	fmt.Fprintf(tw, "  Status\t%s\n", StatusLabel(rec.Status))
	fmt.Fprintf(tw, "  Time remaining\t%d days\n", rec.DaysRemaining)
	fmt.Fprintf(tw, "  Data limit\t%s\n", FormatBytes(rec.DataLimitBytes, 2))
	fmt.Fprintf(tw, "  Last updated\t%s\n", orNA(rec.LastUpdated))
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintf(tw, "  Used\t%s of %s\n", FormatBytes(rec.UsedBytes, 2), FormatBytes(rec.DataLimitBytes, 2))
	fmt.Fprintf(tw, "  \t%s %d%%\n", bar(float64(pct)), pct)
	fmt.Fprintf(tw, "  Upload\t%s\n", FormatBytes(rec.UploadBytes, 2))
	fmt.Fprintf(tw, "  Download\t%s\n", FormatBytes(rec.DownloadBytes, 2))
	fmt.Fprintf(tw, "  Total\t%s\n", FormatBytes(rec.UsedBytes, 2))
	fmt.Fprintln(tw, "SERVER")
	fmt.Fprintf(tw, "  Uptime\t%s\n", rec.ServerUptime)
	fmt.Fprintf(tw, "  Location\t%s\n", rec.ServerLocation)
	fmt.Fprintf(tw, "  Status\t%s\n", rec.ServerStatus)
	fmt.Fprintf(tw, "  IP\t%s\n", rec.ServerIP)
	fmt.Fprintf(tw, "  CPU\t%s %s%%\n", bar(rec.CPULoadPercent), formatPercent(rec.CPULoadPercent))
	fmt.Fprintf(tw, "  RAM\t%s %s\n", bar(rec.RAMUsagePercent), rec.RAMUsageText)
	fmt.Fprintf(tw, "  Disk\t%s %s%% used\n", bar(rec.DiskUsagePercent), formatPercent(rec.DiskUsagePercent))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("formatting dashboard: %w", err)
	}

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return fmt.Errorf("writing dashboard: %w", err)
	}
	return nil
}

// RenderPing writes a simulated ping result.
func RenderPing(w io.Writer, p model.PingResult) error {
	_, err := fmt.Fprintf(w, "ping  min %d ms  avg %d ms  max %d ms  loss %d%%\n", p.MinMs, p.AvgMs, p.MaxMs, p.LossPercent)
	return err
}

// RenderSpeedTest writes a speed test result.
func RenderSpeedTest(w io.Writer, s model.SpeedTestResult) error {
	_, err := fmt.Fprintf(w, "speed download %s Mbps  upload %s Mbps  ping %s ms\n",
		formatPercent(s.DownloadMbps), formatPercent(s.UploadMbps), formatPercent(s.PingMs))
	if err != nil || s.Note == "" {
		return err
	}
	_, err = fmt.Fprintf(w, "      (%s)\n", s.Note)
	return err
}

func bar(pct float64) string {
	pct = math.Max(0, math.Min(pct, 100))
	filled := int(math.Round(pct / 100 * barWidth))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
