package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

type SearchHandler struct {
	Service *services.SearchService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewSearchHandler создает новый экземпляр SearchHandler.
func NewSearchHandler(service *services.SearchService, logger *zap.Logger, timeout time.Duration) *SearchHandler {
	return &SearchHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// SearchProducts обрабатывает запросы поиска товаров.
func (h *SearchHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var filter models.ProductFilter
	if !decodeBody(w, r, h.Logger, &filter) {
		return
	}

	products, err := h.Service.SearchProducts(ctx, filter)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to search products")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// SearchUsers обрабатывает запросы поиска пользователей.
func (h *SearchHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var filter models.UserFilter
	if !decodeBody(w, r, h.Logger, &filter) {
		return
	}

	users, err := h.Service.SearchUsers(ctx, filter)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to search users")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, users)
}
