package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trafficdash/internal/api/v1/dto"
	"trafficdash/internal/model"
	"trafficdash/internal/service"
	"trafficdash/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type stubUserService struct {
	usage *service.UserUsage
	err   error
	gotID [2]string
}

func (s *stubUserService) GetUsage(ctx context.Context, uuid, username string) (*service.UserUsage, error) {
	s.gotID = [2]string{uuid, username}
	return s.usage, s.err
}

type stubSpeedTest struct {
	result model.SpeedTestResult
	err    error
}

func (s stubSpeedTest) Run(ctx context.Context) (model.SpeedTestResult, error) {
	return s.result, s.err
}

func passThrough(next http.Handler) http.Handler { return next }

func newTestMux(users service.UserService, speed service.SpeedTestService) *http.ServeMux {
	mux := http.NewServeMux()
	v := validator.New(validator.WithRequiredStructEnabled())
	NewUserHandler(users, v, zerolog.Nop()).RegisterRoutes(mux, passThrough)
	NewSpeedTestHandler(speed, zerolog.Nop()).RegisterRoutes(mux, passThrough)
	NewMetaHandler("https://t.me/admin").RegisterRoutes(mux, passThrough)
	return mux
}

func serve(mux http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetUsageMissingParameter(t *testing.T) {
	users := &stubUserService{}
	w := serve(newTestMux(users, stubSpeedTest{}), "/usage?username=%20%20")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body dto.ErrorResponseDTO
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error != "Missing parameter" {
		t.Fatalf("unexpected error body %+v", body)
	}
	if users.gotID != [2]string{} {
		t.Fatal("service must not be called without an identifier")
	}
}

func TestGetUsageNotFound(t *testing.T) {
	users := &stubUserService{err: service.ErrUserNotFound}
	w := serve(newTestMux(users, stubSpeedTest{}), "/usage?uuid=nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if users.gotID != [2]string{"nope", ""} {
		t.Fatalf("unexpected lookup %v", users.gotID)
	}
}

func TestGetUsageServerError(t *testing.T) {
	users := &stubUserService{err: errors.New("database is locked")}
	w := serve(newTestMux(users, stubSpeedTest{}), "/usage?username=alice")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetUsageResponseFeedsNormalizer(t *testing.T) {
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	checked := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	users := &stubUserService{usage: &service.UserUsage{
		Client: &model.ClientTraffic{
			UUID:       "u-1",
			Username:   "alice",
			Enabled:    true,
			Inbound:    "vless-sg",
			Upload:     model.GiB,
			Download:   3 * model.GiB / 2,
			ExpiryTime: &expiry,
		},
		Status:         model.StatusActive,
		DaysRemaining:  util.Ptr(30),
		CheckedAt:      checked,
		ServerLocation: "SG",
		ServerStatus:   "Healthy",
		Host: model.HostHealth{
			CPUPercent:   util.Ptr(3.5),
			RAMUsageText: util.Ptr("100MB out of 1000MB"),
		},
	}}

	w := serve(newTestMux(users, stubSpeedTest{}), "/usage?username=alice")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if raw["total_gb"] != 2.5 || raw["upload_gb"] != 1.0 || raw["inbound"] != "vless-sg" {
		t.Fatalf("unexpected body %v", raw)
	}
	if raw["expiry_time"] != "2030-01-01T00:00:00Z" {
		t.Fatalf("unexpected expiry %v", raw["expiry_time"])
	}
	for _, absent := range []string{"server_ip", "disk_usage", "data_limit"} {
		if _, ok := raw[absent]; ok {
			t.Fatalf("expected %s to be omitted", absent)
		}
	}

	var resp dto.UsageResponseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	rec := service.NormalizeUsage(resp, "alice", checked)
	if rec.UsedBytes != model.GBToBytes(2.5) || rec.DaysRemaining != 30 || rec.LastUpdated != "08:30:00" {
		t.Fatalf("unexpected normalized record %+v", rec)
	}
	if rec.ServerIP != model.DefaultServerIP || rec.CPULoadPercent != 3.5 {
		t.Fatalf("unexpected server fields %+v", rec)
	}
}

func TestSpeedTestRoute(t *testing.T) {
	mux := newTestMux(&stubUserService{}, stubSpeedTest{result: model.MockSpeedTestResult("mock")})
	w := serve(mux, "/speed-test")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got model.SpeedTestResult
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.DownloadMbps != model.MockDownloadMbps || got.Note != "mock" {
		t.Fatalf("unexpected result %+v", got)
	}

	mux = newTestMux(&stubUserService{}, stubSpeedTest{err: service.ErrSpeedTestTimeout})
	if w := serve(mux, "/speed-test"); w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
}

func TestMetaRoutes(t *testing.T) {
	mux := newTestMux(&stubUserService{}, stubSpeedTest{})

	w := serve(mux, "/health")
	var health dto.HealthResponseDTO
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil || health.Status != "healthy" {
		t.Fatalf("unexpected health response %d %+v %v", w.Code, health, err)
	}

	w = serve(mux, "/admin-contact")
	var contact dto.AdminContactResponseDTO
	if err := json.NewDecoder(w.Body).Decode(&contact); err != nil || contact.TelegramURL != "https://t.me/admin" {
		t.Fatalf("unexpected contact response %d %+v %v", w.Code, contact, err)
	}

	if w := serve(mux, "/"); w.Code != http.StatusOK {
		t.Fatalf("expected banner, got %d", w.Code)
	}
}
