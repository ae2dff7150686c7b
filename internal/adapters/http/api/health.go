package api

import (
	"net/http"

	"github.com/okian/libero/internal/domain/wallclock"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles GET /healthz. Prometheus metrics live on /metrics.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type formatResponse struct {
	Seconds   string `json:"seconds"`
	Formatted string `json:"formatted"`
}

// handleFormatTime handles GET /v1/time/format?seconds=N. Missing or invalid
// input renders the placeholder rather than failing.
func (s *Server) handleFormatTime(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("seconds")
	writeJSON(w, http.StatusOK, formatResponse{Seconds: raw, Formatted: wallclock.FormatAny(raw)})
}
