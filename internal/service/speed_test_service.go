package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"trafficdash/internal/model"
	"trafficdash/internal/util"

	"github.com/rs/zerolog"
)

// ErrSpeedTestTimeout is returned when a speed test tool runs past its deadline.
var ErrSpeedTestTimeout = errors.New("speed test timed out")

// CommandRunner runs an external program and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// SpeedTestService measures the server's own bandwidth with whichever CLI tool is
// installed, and reports placeholder figures when none is.
type SpeedTestService interface {
	Run(ctx context.Context) (model.SpeedTestResult, error)
}

type speedTestService struct {
	run     CommandRunner
	timeout time.Duration
	logger  zerolog.Logger
}

func NewSpeedTestService(run CommandRunner, timeout time.Duration, logger zerolog.Logger) SpeedTestService {
	if run == nil {
		run = ExecRunner
	}
	return &speedTestService{
		run:     run,
		timeout: timeout,
		logger:  logger.With().Str("service", "SpeedTestService").Logger(),
	}
}

// speedtest-cli --json reports bits per second.
type speedtestCLIOutput struct {
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
	Ping     float64 `json:"ping"`
}

// fast --json reports Mbps.
type fastCLIOutput struct {
	DownloadSpeed float64 `json:"downloadSpeed"`
	UploadSpeed   float64 `json:"uploadSpeed"`
	Latency       float64 `json:"latency"`
}

func (s *speedTestService) Run(ctx context.Context) (model.SpeedTestResult, error) {
	out, err := s.runTool(ctx, "speedtest-cli", "--json")
	if err == nil {
		var parsed speedtestCLIOutput
		if err = json.Unmarshal(out, &parsed); err == nil {
			return model.SpeedTestResult{
				DownloadMbps: util.Round2(parsed.Download / 1_000_000),
				UploadMbps:   util.Round2(parsed.Upload / 1_000_000),
				PingMs:       util.Round2(parsed.Ping),
				Success:      true,
			}, nil
		}
	}
	if errors.Is(err, ErrSpeedTestTimeout) {
		return model.SpeedTestResult{}, err
	}
	s.logger.Debug().Err(err).Msg("speedtest-cli unavailable, trying fast")

	out, err = s.runTool(ctx, "fast", "--json")
	if err == nil {
		var parsed fastCLIOutput
		if err = json.Unmarshal(out, &parsed); err == nil {
			return model.SpeedTestResult{
				DownloadMbps: util.Round2(parsed.DownloadSpeed),
				UploadMbps:   util.Round2(parsed.UploadSpeed),
				PingMs:       util.Round2(parsed.Latency),
				Success:      true,
			}, nil
		}
	}
	if errors.Is(err, ErrSpeedTestTimeout) {
		return model.SpeedTestResult{}, err
	}

	s.logger.Warn().Err(err).Msg("No speed test tool available, returning mock result")
	return model.MockSpeedTestResult("Mock data - neither speedtest-cli nor fast-cli were available"), nil
}

func (s *speedTestService) runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := s.run(ctx, name, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", name, ErrSpeedTestTimeout)
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}
