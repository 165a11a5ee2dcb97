package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trafficdash/internal/api/v1/dto"
	"trafficdash/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxUsageBodyBytes caps how much of a usage response is read.
const maxUsageBodyBytes = 1 << 20

// UsageQueryService looks up the usage of one subject against the usage API.
type UsageQueryService interface {
	// FetchUsage makes exactly one request and returns a fully populated record. Invalid
	// input is always reported. Transport and parse failures are reported only when the
	// demo fallback is off; otherwise the demo record is returned instead.
	FetchUsage(ctx context.Context, identifier string, kind model.IdentifierKind) (model.UsageRecord, error)
}

// UsageQueryOptions configures a UsageQueryService.
type UsageQueryOptions struct {
	BaseURL string
	// Timeout bounds the whole request. Zero means no bound beyond ctx.
	Timeout time.Duration
	// DemoFallback swaps transport and parse failures for the demo record so the
	// dashboard never shows an empty page. It also hides outages from the viewer.
	DemoFallback bool
	HTTPClient   *http.Client
	Now          func() time.Time
}

type usageQuery struct {
	Identifier string `validate:"required"`
	Kind       string `validate:"oneof=username uuid"`
}

type usageQueryService struct {
	baseURL      string
	client       *http.Client
	demoFallback bool
	now          func() time.Time
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewUsageQueryService(opts UsageQueryOptions, validate *validator.Validate, logger zerolog.Logger) UsageQueryService {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return &usageQueryService{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		client:       client,
		demoFallback: opts.DemoFallback,
		now:          now,
		validate:     validate,
		logger:       logger.With().Str("service", "UsageQueryService").Logger(),
	}
}

func (s *usageQueryService) FetchUsage(ctx context.Context, identifier string, kind model.IdentifierKind) (model.UsageRecord, error) {
	identifier = strings.TrimSpace(identifier)
	if err := s.validateQuery(identifier, kind); err != nil {
		return model.UsageRecord{}, err
	}

	resp, err := s.requestUsage(ctx, identifier, kind)
	if err != nil {
		// A caller that gave up gets its cancellation back rather than a demo record.
		if !s.demoFallback || errors.Is(ctx.Err(), context.Canceled) {
			return model.UsageRecord{}, err
		}
		s.logger.Warn().Err(err).Str("identifier", identifier).Str("kind", string(kind)).Msg("Usage lookup failed, showing demo data")
		return DemoUsage(identifier, s.now()), nil
	}

	return NormalizeUsage(resp, identifier, s.now()), nil
}

func (s *usageQueryService) validateQuery(identifier string, kind model.IdentifierKind) error {
	err := s.validate.Struct(&usageQuery{Identifier: identifier, Kind: string(kind)})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Field() {
		case "Identifier":
			return &ValidationError{Field: "identifier", Reason: "must not be empty"}
		case "Kind":
			return &ValidationError{Field: "kind", Reason: fmt.Sprintf("must be %q or %q", model.KindUsername, model.KindUUID)}
		}
	}
	return &ValidationError{Field: "query", Reason: err.Error()}
}

func (s *usageQueryService) requestUsage(ctx context.Context, identifier string, kind model.IdentifierKind) (dto.UsageResponseDTO, error) {
	var out dto.UsageResponseDTO

	endpoint := fmt.Sprintf("%s/usage?%s=%s", s.baseURL, kind, url.QueryEscape(identifier))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, &TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return out, &TransportError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUsageBodyBytes))
	if err != nil {
		return out, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &TransportError{StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &ParseError{Err: err}
	}

	s.logger.Debug().
		Str("kind", string(kind)).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Usage lookup succeeded")
	return out, nil
}
