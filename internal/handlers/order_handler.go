package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/services"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"go.uber.org/zap"
)

// OrderHandler - структура для обработки HTTP-запросов к предложениям аренды.
type OrderHandler struct {
	Service *services.OrderService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewOrderHandler создает новый экземпляр OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// SubmitOffer обрабатывает запросы для создания предложения аренды.
func (h *OrderHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var offerReq models.OfferRequest
	if !decodeBody(w, r, h.Logger, &offerReq) {
		return
	}

	order, err := h.Service.SubmitOffer(ctx, actor, r.PathValue("productId"), offerReq)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to submit offer")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, order)
}

// GetOffers обрабатывает запросы владельца для получения ожидающих предложений.
func (h *OrderHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offers, err := h.Service.ListOffers(ctx, actor, r.PathValue("productId"), r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch offers")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, offers)
}

// RespondOffer обрабатывает решение владельца по предложению.
func (h *OrderHandler) RespondOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var response models.OfferResponse
	if !decodeBody(w, r, h.Logger, &response) {
		return
	}

	decision, err := h.Service.RespondOffer(ctx, actor, r.PathValue("productId"), r.PathValue("orderId"), response)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to respond to offer")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, decision)
}

// GetAvailability обрабатывает запросы для получения свободных дней товара.
func (h *OrderHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	month, err := optionalQueryInt(r, "month")
	if err != nil {
		sendError(w, h.Logger, models.NewValidationError(err.Error()))
		return
	}
	year, err := optionalQueryInt(r, "year")
	if err != nil {
		sendError(w, h.Logger, models.NewValidationError(err.Error()))
		return
	}

	availability, err := h.Service.GetAvailability(ctx, actor, r.PathValue("productId"), month, year)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch availability")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, availability)
}

// optionalQueryInt возвращает nil, если параметр не передан.
func optionalQueryInt(r *http.Request, name string) (*int, error) {
	value, present, err := utils.ParseOptionalInt(r.URL.Query().Get(name), name)
	if err != nil || !present {
		return nil, err
	}
	return &value, nil
}

// GetCart обрабатывает запросы для получения принятых заказов пользователя.
func (h *OrderHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orders, err := h.Service.Cart(ctx, actor)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch cart")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, orders)
}

// Checkout обрабатывает запросы для продолжения или отмены принятого заказа.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var checkoutReq models.CheckoutRequest
	if !decodeBody(w, r, h.Logger, &checkoutReq) {
		return
	}

	if err := h.Service.Checkout(ctx, actor, r.PathValue("orderId"), checkoutReq); err != nil {
		sendServiceError(w, h.Logger, err, "failed to check out order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
