package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

// AdminHandler - обработчик запросов модерации.
type AdminHandler struct {
	Service *services.ModerationService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewAdminHandler создает новый экземпляр AdminHandler.
func NewAdminHandler(service *services.ModerationService, logger *zap.Logger, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetReviewQueue обрабатывает запросы для получения товаров на модерации.
func (h *AdminHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListUnderReview(ctx, actor, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch review queue")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// ReviewProduct обрабатывает решение модератора по товару.
func (h *AdminHandler) ReviewProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var decision models.ReviewDecision
	if !decodeBody(w, r, h.Logger, &decision) {
		return
	}

	product, err := h.Service.ReviewProduct(ctx, actor, r.PathValue("productId"), decision)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to review product")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, product)
}
