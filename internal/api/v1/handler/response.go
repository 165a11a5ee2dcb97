package handler

import (
	"encoding/json"
	"net/http"

	"trafficdash/internal/api/v1/dto"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, dto.ErrorResponseDTO{Error: msg, Detail: detail})
}
