package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

type FavoriteHandler struct {
	Service *services.FavoriteService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewFavoriteHandler создает новый экземпляр FavoriteHandler.
func NewFavoriteHandler(service *services.FavoriteService, logger *zap.Logger, timeout time.Duration) *FavoriteHandler {
	return &FavoriteHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetFavorites обрабатывает запросы для получения избранного.
func (h *FavoriteHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListFavorites(ctx, actor, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch favorites")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// AddFavorite обрабатывает запросы для добавления товара в избранное.
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.AddFavorite(ctx, actor, r.PathValue("productId")); err != nil {
		sendServiceError(w, h.Logger, err, "failed to add favorite")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveFavorite обрабатывает запросы для удаления товара из избранного.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.RemoveFavorite(ctx, actor, r.PathValue("productId")); err != nil {
		sendServiceError(w, h.Logger, err, "failed to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
