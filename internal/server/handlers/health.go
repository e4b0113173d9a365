package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/pkg/api"
)

const pingTimeout = 2 * time.Second

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	storage storage.Pinger
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, pinger storage.Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		storage: pinger,
		version: version,
	}
}

// Health обрабатывает GET /api/v1/health
// Проверяет доступность хранилища учетных записей
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := api.HealthResponse{
		Status:  "ok",
		Storage: "ok",
		Version: h.version,
	}
	status := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "storage health check failed", slog.Any("error", err))
		resp.Status = "degraded"
		resp.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(h.logger, w, resp, status)
}
