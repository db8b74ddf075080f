package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread service.ThreadService
	feed   service.FeedService
	user   service.UserService
	health HealthChecker
	cfg    *config.Config
}

func New(thread service.ThreadService, feed service.FeedService, user service.UserService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		thread: thread,
		feed:   feed,
		user:   user,
		health: health,
		cfg:    cfg,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
