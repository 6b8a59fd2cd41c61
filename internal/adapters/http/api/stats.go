package api

import (
	"net/http"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	svc Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}
