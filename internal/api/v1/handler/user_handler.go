package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"trafficdash/internal/api/v1/dto"
	"trafficdash/internal/model"
	"trafficdash/internal/service"
	"trafficdash/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewUserHandler(userService service.UserService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    v,
		logger:      logger.With().Str("handler", "UserHandler").Logger(),
	}
}

// RegisterRoutes mounts the usage route
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, limitMw func(http.Handler) http.Handler) {
	mux.Handle("GET /usage", limitMw(http.HandlerFunc(h.getUsage)))
}

func (h *UserHandler) getUsage(w http.ResponseWriter, r *http.Request) {
	// 1. Read query parameters
	q := r.URL.Query()
	req := dto.UsageQueryDTO{
		UUID:     strings.TrimSpace(q.Get("uuid")),
		Username: strings.TrimSpace(q.Get("username")),
	}

	// 2. Validate
	if err := h.validate.Struct(&req); err != nil {
		detail := "Either uuid or username must be provided"
		if req.UUID != "" || req.Username != "" {
			detail = err.Error()
		}
		writeError(w, http.StatusBadRequest, "Missing parameter", detail)
		return
	}

	// 3. Look up usage
	usage, err := h.userService.GetUsage(r.Context(), req.UUID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found", "No user found with the provided identifier")
		default:
			h.logger.Error().Err(err).Msg("Error processing usage request")
			writeError(w, http.StatusInternalServerError, "Server error", err.Error())
		}
		return
	}

	// 4. Map to response DTO
	writeJSON(w, http.StatusOK, usageResponse(usage))
}

func usageResponse(u *service.UserUsage) dto.UsageResponseDTO {
	c := u.Client
	uploadGB := float64(c.Upload) / model.GiB
	downloadGB := float64(c.Download) / model.GiB

	resp := dto.UsageResponseDTO{
		Username:      util.Ptr(c.Username),
		UUID:          util.Ptr(c.UUID),
		Upload:        util.Ptr(c.Upload),
		Download:      util.Ptr(c.Download),
		Total:         util.Ptr(c.Total()),
		UploadGB:      util.Ptr(util.Round2(uploadGB)),
		DownloadGB:    util.Ptr(util.Round2(downloadGB)),
		TotalGB:       util.Ptr(util.Round2(uploadGB + downloadGB)),
		Inbound:       util.Ptr(c.Inbound),
		Status:        util.Ptr(string(u.Status)),
		LastUpdated:   util.Ptr(u.CheckedAt.Format(model.LastUpdatedLayout)),

		ServerUptime:   u.Host.Uptime,
		ServerLocation: util.NonEmpty(u.ServerLocation),
		ServerStatus:   util.NonEmpty(u.ServerStatus),
		ServerIP:       u.Host.IP,
		CPULoad:        u.Host.CPUPercent,
		RAMPercentage:  u.Host.RAMPercent,
		RAMUsageText:   u.Host.RAMUsageText,
		DiskUsage:      u.Host.DiskPercent,
	}
	if u.DaysRemaining != nil {
		resp.DaysRemaining = util.Ptr(float64(*u.DaysRemaining))
	}
	if c.ExpiryTime != nil {
		resp.ExpiryTime = util.Ptr(c.ExpiryTime.Format(time.RFC3339))
	}
	return resp
}
