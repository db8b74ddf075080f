package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/threads/shared/logger"
)

// readyTimeout bounds the document store ping behind /ready.
const readyTimeout = 2 * time.Second

type probeResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// Health answers as long as the process serves requests. It never touches
// the document store, so a store outage does not restart the api.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, probeResponse{Status: "ok"})
}

// Ready reports whether thread reads and writes can reach the configured store.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	store := h.cfg.Public.Storage
	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("document store not ready", "store", store, "error", err)
		writeJSONStatus(w, http.StatusServiceUnavailable, probeResponse{Status: "unavailable", Store: store})
		return
	}
	writeJSON(w, probeResponse{Status: "ready", Store: store})
}
