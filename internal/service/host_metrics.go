package service

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"trafficdash/internal/model"
	"trafficdash/internal/util"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"golang.org/x/sync/errgroup"
)

// Above these percentages the server is reported as degraded.
const (
	degradedCPUPercent  = 90
	degradedRAMPercent  = 90
	degradedDiskPercent = 95
)

// HostMetricsCollector samples the health of the machine serving the API.
type HostMetricsCollector interface {
	Collect(ctx context.Context) model.HostHealth
}

type hostMetricsCollector struct {
	diskPath string
	staticIP string
	logger   zerolog.Logger
}

// NewHostMetricsCollector reports disk usage for diskPath. staticIP, when set, is
// reported instead of the first non-loopback interface address.
func NewHostMetricsCollector(diskPath, staticIP string, logger zerolog.Logger) HostMetricsCollector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &hostMetricsCollector{
		diskPath: diskPath,
		staticIP: strings.TrimSpace(staticIP),
		logger:   logger.With().Str("service", "HostMetricsCollector").Logger(),
	}
}

// Collect gathers every metric concurrently. A metric that fails is left nil and the
// others are still reported.
func (c *hostMetricsCollector) Collect(ctx context.Context) model.HostHealth {
	var health model.HostHealth

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		secs, err := host.UptimeWithContext(gctx)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Failed to read uptime")
			return nil
		}
		health.Uptime = util.Ptr(FormatUptime(time.Duration(secs) * time.Second))
		return nil
	})
	g.Go(func() error {
		pcts, err := cpu.PercentWithContext(gctx, 0, false)
		if err != nil || len(pcts) == 0 {
			c.logger.Debug().Err(err).Msg("Failed to read CPU load")
			return nil
		}
		health.CPUPercent = util.Ptr(util.Round2(pcts[0]))
		return nil
	})
	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(gctx)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Failed to read memory usage")
			return nil
		}
		health.RAMPercent = util.Ptr(util.Round2(vm.UsedPercent))
		health.RAMUsageText = util.Ptr(fmt.Sprintf("%dMB out of %dMB", vm.Used/(1024*1024), vm.Total/(1024*1024)))
		return nil
	})
	g.Go(func() error {
		du, err := disk.UsageWithContext(gctx, c.diskPath)
		if err != nil {
			c.logger.Debug().Err(err).Str("path", c.diskPath).Msg("Failed to read disk usage")
			return nil
		}
		health.DiskPercent = util.Ptr(util.Round2(du.UsedPercent))
		return nil
	})
	g.Go(func() error {
		if c.staticIP != "" {
			health.IP = util.Ptr(c.staticIP)
			return nil
		}
		ifaces, err := psnet.InterfacesWithContext(gctx)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Failed to list interfaces")
			return nil
		}
		health.IP = firstPublicAddr(ifaces)
		return nil
	})
	// Every goroutine swallows its own error.
	_ = g.Wait()

	return health
}

// ServerStatus summarizes host health as the dashboard label.
func ServerStatus(h model.HostHealth) string {
	over := func(v *float64, limit float64) bool { return v != nil && *v >= limit }
	if over(h.CPUPercent, degradedCPUPercent) || over(h.RAMPercent, degradedRAMPercent) || over(h.DiskPercent, degradedDiskPercent) {
		return "Degraded"
	}
	return "Healthy"
}

// FormatUptime renders an uptime as "<days> days, <hours> hours".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	return fmt.Sprintf("%d days, %d hours", days, hours)
}

func firstPublicAddr(ifaces psnet.InterfaceStatList) *string {
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			ip := prefix.Addr()
			if ip.Is4() && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() {
				return util.Ptr(ip.String())
			}
		}
	}
	return nil
}
