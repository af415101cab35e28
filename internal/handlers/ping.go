package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"

	"go.uber.org/zap"
)

// HealthCheck проверяет доступность зависимости сервиса.
type HealthCheck func(ctx context.Context) error

// PingHandler отвечает на /api/ping, если все зависимости доступны.
type PingHandler struct {
	Checks  map[string]HealthCheck
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewPingHandler создает новый экземпляр PingHandler.
func NewPingHandler(checks map[string]HealthCheck, logger *zap.Logger, timeout time.Duration) *PingHandler {
	return &PingHandler{
		Checks:  checks,
		Logger:  logger,
		Timeout: timeout,
	}
}

// Ping обрабатывает GET запрос к /api/ping
func (h *PingHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, h.Logger, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			h.Logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			sendError(w, h.Logger, &models.ErrorResponse{
				StatusCode: http.StatusServiceUnavailable,
				Kind:       models.KindInternal,
				Message:    name + " is unavailable",
			})
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		h.Logger.Warn("failed to write ping response", zap.Error(err))
	}
}
