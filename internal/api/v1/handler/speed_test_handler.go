package handler

import (
	"errors"
	"net/http"

	"trafficdash/internal/service"

	"github.com/rs/zerolog"
)

type SpeedTestHandler struct {
	speedTestService service.SpeedTestService
	logger           zerolog.Logger
}

func NewSpeedTestHandler(speedTestService service.SpeedTestService, logger zerolog.Logger) *SpeedTestHandler {
	return &SpeedTestHandler{
		speedTestService: speedTestService,
		logger:           logger.With().Str("handler", "SpeedTestHandler").Logger(),
	}
}

func (h *SpeedTestHandler) RegisterRoutes(mux *http.ServeMux, limitMw func(http.Handler) http.Handler) {
	mux.Handle("GET /speed-test", limitMw(http.HandlerFunc(h.runSpeedTest)))
}

func (h *SpeedTestHandler) runSpeedTest(w http.ResponseWriter, r *http.Request) {
	result, err := h.speedTestService.Run(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrSpeedTestTimeout) {
			writeError(w, http.StatusGatewayTimeout, "Speed test timed out", "")
			return
		}
		h.logger.Error().Err(err).Msg("Speed test failed")
		writeError(w, http.StatusInternalServerError, "Server error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
