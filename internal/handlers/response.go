package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/senyabanana/sisterly-service/internal/auth"
	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"go.uber.org/zap"
)

// sendServiceError отправляет типизированную ошибку сервиса или 500 без деталей.
func sendServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	if errorResponse, ok := utils.AsErrorResponse(err); ok {
		logger.Debug("request rejected", zap.String("kind", string(errorResponse.Kind)), zap.Error(err))
		sendError(w, logger, errorResponse)
		return
	}
	logger.Error(fallback, zap.Error(err))
	sendError(w, logger, models.NewErrorResponse(models.KindInternal, fallback))
}

// sendError отправляет ошибку клиенту.
func sendError(w http.ResponseWriter, logger *zap.Logger, errorResponse *models.ErrorResponse) {
	if err := utils.SendError(w, errorResponse); err != nil {
		logger.Warn("failed to encode error response", zap.Error(err))
	}
}

func sendJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, payload any) {
	if err := utils.SendJSON(w, statusCode, payload); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// decodeBody разбирает тело запроса; при ошибке отвечает 400.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, logger, models.NewValidationError("invalid request body"))
		return false
	}
	return true
}

// currentActor достает пользователя, положенного в контекст auth.Middleware.
func currentActor(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (models.Actor, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		sendError(w, logger, models.NewUnauthorizedError(auth.ErrMissingToken.Error()))
	}
	return actor, ok
}
