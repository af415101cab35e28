package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

// UserHandler - обработчик запросов к профилю, устройствам и адресам.
type UserHandler struct {
	Service *services.UserService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger, timeout time.Duration) *UserHandler {
	return &UserHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetUserProducts обрабатывает запросы для получения опубликованных товаров пользователя.
func (h *UserHandler) GetUserProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.UserProducts(ctx, r.PathValue("userId"), r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch user products")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// RegisterDevice обрабатывает регистрацию устройства для уведомлений.
func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var deviceReq models.DeviceRequest
	if !decodeBody(w, r, h.Logger, &deviceReq) {
		return
	}

	if err := h.Service.RegisterDevice(ctx, actor, deviceReq); err != nil {
		sendServiceError(w, h.Logger, err, "failed to register device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAddress обрабатывает запросы для создания адреса.
func (h *UserHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var addressReq models.AddressRequest
	if !decodeBody(w, r, h.Logger, &addressReq) {
		return
	}

	address, err := h.Service.CreateAddress(ctx, actor, addressReq)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to create address")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, address)
}

// GetAddresses обрабатывает запросы для получения адресов пользователя.
func (h *UserHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	addresses, err := h.Service.ListAddresses(ctx, actor)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch addresses")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, addresses)
}

// GetAddress обрабатывает запросы для получения адреса.
func (h *UserHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	address, err := h.Service.GetAddress(ctx, actor, r.PathValue("addressId"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch address")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, address)
}

// UpdateAddress обрабатывает запросы для изменения адреса.
func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var addressReq models.AddressRequest
	if !decodeBody(w, r, h.Logger, &addressReq) {
		return
	}

	address, err := h.Service.UpdateAddress(ctx, actor, r.PathValue("addressId"), addressReq)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to update address")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, address)
}
