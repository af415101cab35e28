package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/services"

	"go.uber.org/zap"
)

// ProductHandler - структура для обработки HTTP-запросов к товарам.
type ProductHandler struct {
	Service *services.ProductService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewProductHandler создаёт новый экземпляр ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetProducts обрабатывает запросы для получения ленты опубликованных товаров.
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListProducts(ctx, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch products")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// CreateProduct обрабатывает запросы для создания товара.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var productReq models.ProductRequest
	if !decodeBody(w, r, h.Logger, &productReq) {
		return
	}

	product, err := h.Service.CreateProduct(ctx, actor, productReq)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to create product")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, product)
}

// GetMyProducts обрабатывает запросы для получения товаров текущего пользователя.
func (h *ProductHandler) GetMyProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.MyProducts(ctx, actor, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch products")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, products)
}

// GetProduct обрабатывает запросы для получения карточки товара.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	product, err := h.Service.GetProduct(ctx, actor, r.PathValue("productId"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch product")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, product)
}

// EditProduct обрабатывает запросы для изменения товара.
func (h *ProductHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var productReq models.ProductRequest
	if !decodeBody(w, r, h.Logger, &productReq) {
		return
	}

	product, err := h.Service.EditProduct(ctx, actor, r.PathValue("productId"), productReq)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to edit product")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, product)
}

// SubmitProduct обрабатывает запросы для отправки товара на модерацию.
func (h *ProductHandler) SubmitProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var submission models.ReviewSubmission
	if !decodeBody(w, r, h.Logger, &submission) {
		return
	}

	product, err := h.Service.SubmitForReview(ctx, actor, r.PathValue("productId"), submission)
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to submit product")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, product)
}

// GetProductIssues обрабатывает запросы для получения замечаний модерации.
func (h *ProductHandler) GetProductIssues(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.Logger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	issues, err := h.Service.ProductIssues(ctx, actor, r.PathValue("productId"))
	if err != nil {
		sendServiceError(w, h.Logger, err, "failed to fetch product issues")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, issues)
}
