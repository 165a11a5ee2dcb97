package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"production"`

	// Usage query client settings
	UsageAPIBaseURL        string `envconfig:"USAGE_API_BASE_URL" default:"http://localhost:8000/api"`
	UsageDemoFallback      bool   `envconfig:"USAGE_DEMO_FALLBACK" default:"true"`
	UsageRequestTimeoutSec int    `envconfig:"USAGE_REQUEST_TIMEOUT_SEC" default:"10"`

	// Panel database settings
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"/etc/x-ui/x-ui.db"`

	// API server settings
	RateLimit           string   `envconfig:"RATE_LIMIT" default:"60/minute"`
	TrustedProxies      []string `envconfig:"TRUSTED_PROXIES" default:""`
	TelegramAdminURL    string   `envconfig:"TELEGRAM_ADMIN_URL" default:""`
	ServerLocation      string   `envconfig:"SERVER_LOCATION" default:"SG"`
	ServerIP            string   `envconfig:"SERVER_IP" default:""`
	FrontendDir         string   `envconfig:"FRONTEND_DIR" default:"frontend"`
	SpeedTestTimeoutSec int      `envconfig:"SPEED_TEST_TIMEOUT_SEC" default:"60"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsageRequestTimeout bounds a single usage lookup. Zero or negative disables the bound.
func (c *Config) UsageRequestTimeout() time.Duration {
	if c.UsageRequestTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.UsageRequestTimeoutSec) * time.Second
}

func (c *Config) SpeedTestTimeout() time.Duration {
	if c.SpeedTestTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.SpeedTestTimeoutSec) * time.Second
}

// ParseRateLimit turns a "<count>/<unit>" expression such as "60/minute" into a token
// bucket rate and burst. The burst equals the count so a client may spend its whole
// allowance at once.
func ParseRateLimit(expr string) (rate.Limit, int, error) {
	countStr, unit, ok := strings.Cut(strings.TrimSpace(expr), "/")
	if !ok {
		return 0, 0, fmt.Errorf("rate limit %q: expected <count>/<unit>", expr)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil || count <= 0 {
		return 0, 0, fmt.Errorf("rate limit %q: invalid count", expr)
	}

	var per time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "second", "s", "sec":
		per = time.Second
	case "minute", "m", "min":
		per = time.Minute
	case "hour", "h":
		per = time.Hour
	case "day", "d":
		per = 24 * time.Hour
	default:
		return 0, 0, fmt.Errorf("rate limit %q: unknown unit %q", expr, unit)
	}

	return rate.Every(per / time.Duration(count)), count, nil
}

// ParseTrustedProxies reads TRUSTED_PROXIES entries, each a CIDR or a bare address.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
