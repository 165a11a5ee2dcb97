package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trafficdash/internal/model"

	"github.com/rs/zerolog"
)

// SpeedTestClient asks the API server to run a speed test. Any failure is answered with
// the placeholder result so the dashboard always has figures to show.
type SpeedTestClient interface {
	Measure(ctx context.Context) model.SpeedTestResult
}

type speedTestClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewSpeedTestClient(baseURL string, timeout time.Duration, logger zerolog.Logger) SpeedTestClient {
	return &speedTestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("service", "SpeedTestClient").Logger(),
	}
}

func (c *speedTestClient) Measure(ctx context.Context) model.SpeedTestResult {
	result, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Speed test request failed, showing mock result")
		return model.MockSpeedTestResult("Mock data - " + err.Error())
	}
	return result
}

func (c *speedTestClient) fetch(ctx context.Context) (model.SpeedTestResult, error) {
	var result model.SpeedTestResult

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speed-test", nil)
	if err != nil {
		return result, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("making speed test request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("speed test failed with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decoding speed test response: %w", err)
	}
	return result, nil
}
