package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/applytrack/internal/repository"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the server can reach its repository.
type HealthHandler struct {
	db     repository.Pinger
	logger *slog.Logger
}

func NewHealthHandler(db repository.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type HealthResponse struct {
	Status string `json:"status"`
}

// HandleHealth answers GET /healthz with 200 {"status":"ok"}, or 503 when
// the repository ping fails.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
