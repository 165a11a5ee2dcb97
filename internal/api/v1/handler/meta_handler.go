package handler

import (
	"net/http"

	"trafficdash/internal/api/v1/dto"
)

// MetaHandler serves the banner, health check and admin contact routes.
type MetaHandler struct {
	telegramAdminURL string
}

func NewMetaHandler(telegramAdminURL string) *MetaHandler {
	return &MetaHandler{telegramAdminURL: telegramAdminURL}
}

func (h *MetaHandler) RegisterRoutes(mux *http.ServeMux, limitMw func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /admin-contact", limitMw(http.HandlerFunc(h.adminContact)))
}

func (h *MetaHandler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Traffic Dashboard API"})
}

func (h *MetaHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponseDTO{Status: "healthy"})
}

func (h *MetaHandler) adminContact(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.AdminContactResponseDTO{TelegramURL: h.telegramAdminURL})
}
