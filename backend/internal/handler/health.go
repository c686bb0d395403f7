package handler

import (
	"net/http"

	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/utils"
)

// Health is a liveness probe endpoint.
// Returns 200 OK if the server is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, api.HealthResponse{Ok: true, Status: "ok"})
}

// Ready is a readiness probe endpoint.
// Returns 503 Service Unavailable while the record store does not answer.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ready(r.Context()); err != nil {
		logger.Log.Warn("readiness check failed", "component", "health", "error", err)
		utils.WriteJSONStatus(w, http.StatusServiceUnavailable, api.HealthResponse{Ok: false, Status: "store unavailable"})
		return
	}
	utils.WriteJSON(w, api.HealthResponse{Ok: true, Status: "ok"})
}
