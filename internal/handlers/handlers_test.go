package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/sisterly-service/internal/auth"
	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubProductRepo struct {
	products map[string]models.Product
	err      error
}

func (r *stubProductRepo) CreateProduct(_ context.Context, product models.Product) (*models.Product, error) {
	product.ID = "created"
	product.Status = models.PreparationProduct
	return &product, nil
}

func (r *stubProductRepo) GetProductById(_ context.Context, productId string) (*models.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[productId]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *stubProductRepo) CheckProductReferences(context.Context, string, models.ProductRequest) (bool, error) {
	return true, nil
}

func (r *stubProductRepo) GetProducts(context.Context, models.ProductStatus, int, int) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (r *stubProductRepo) GetOwnerProducts(context.Context, string, []models.ProductStatus, int, int) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (r *stubProductRepo) SearchProducts(context.Context, models.ProductFilter) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (r *stubProductRepo) GetProductIssues(context.Context, string) ([]models.Issue, error) {
	return []models.Issue{}, nil
}

func (r *stubProductRepo) InTx(context.Context, func(tx repository.ProductTx) error) error {
	return errors.New("transactions are not supported")
}

const testSecret = "handler-secret"

func newTestServer(t *testing.T, repo *stubProductRepo) (http.Handler, *auth.Authenticator) {
	t.Helper()
	authenticator := auth.NewAuthenticator(testSecret, zap.NewNop())
	logger := zap.NewNop()
	timeout := time.Second

	products := newProductHandler(repo, logger, timeout)
	mux := http.NewServeMux()
	mux.Handle("GET /api/products/{productId}", authenticator.Middleware(http.HandlerFunc(products.GetProduct)))
	mux.Handle("POST /api/products/new", authenticator.Middleware(http.HandlerFunc(products.CreateProduct)))
	mux.Handle("GET /api/products", authenticator.Middleware(http.HandlerFunc(products.GetProducts)))

	orders := NewOrderHandler(services.NewOrderService(nil, repo, nil, nil, logger, 2021), logger, timeout)
	mux.Handle("GET /api/products/{productId}/availability", authenticator.Middleware(http.HandlerFunc(orders.GetAvailability)))
	mux.HandleFunc("/api/ping", NewPingHandler(nil, logger, timeout).Ping)
	return mux, authenticator
}

func newProductHandler(repo *stubProductRepo, logger *zap.Logger, timeout time.Duration) *ProductHandler {
	return NewProductHandler(services.NewProductService(repo, nil), logger, timeout)
}

func bearer(t *testing.T, a *auth.Authenticator, actor models.Actor) string {
	t.Helper()
	token, err := a.Issue(actor, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPingHandler(t *testing.T) {
	server, _ := newTestServer(t, &stubProductRepo{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	repo := &stubProductRepo{products: map[string]models.Product{
		"listed": {ID: "listed", OwnerID: "owner", Status: models.AcceptedProduct},
		"draft":  {ID: "draft", OwnerID: "owner", Status: models.PreparationProduct},
	}}
	server, a := newTestServer(t, repo)
	visitor := bearer(t, a, models.Actor{UserID: "visitor", Active: true})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		kind   string
	}{
		{"unauthenticated", "/api/products/listed", "", http.StatusUnauthorized, "unauthorized"},
		{"listed", "/api/products/listed", visitor, http.StatusOK, ""},
		{"draft hidden", "/api/products/draft", visitor, http.StatusNotFound, "not_found"},
		{"missing", "/api/products/missing", visitor, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.kind != "" {
				require.Equal(t, tt.kind, decodeError(t, rec)["kind"])
				return
			}
			var product models.Product
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
			require.Equal(t, "listed", product.ID)
			require.Equal(t, models.AcceptedProduct, product.Status)
		})
	}
}

func TestGetProduct_InternalErrorIsHidden(t *testing.T) {
	server, a := newTestServer(t, &stubProductRepo{err: errors.New("connection refused to 10.0.0.5")})

	req := httptest.NewRequest(http.MethodGet, "/api/products/any", nil)
	req.Header.Set("Authorization", bearer(t, a, models.Actor{UserID: "u", Active: true}))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "internal", body["kind"])
	require.Equal(t, "failed to fetch product", body["reason"])
}

func TestCreateProduct_BadRequests(t *testing.T) {
	server, a := newTestServer(t, &stubProductRepo{})
	header := bearer(t, a, models.Actor{UserID: "owner", Active: true})

	req := httptest.NewRequest(http.MethodPost, "/api/products/new", strings.NewReader("{not json"))
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid request body", decodeError(t, rec)["reason"])

	req = httptest.NewRequest(http.MethodPost, "/api/products/new", strings.NewReader(`{"model":"Kelly"}`))
	req.Header.Set("Authorization", header)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation", decodeError(t, rec)["kind"])
}

func TestGetProducts_Pagination(t *testing.T) {
	server, a := newTestServer(t, &stubProductRepo{})
	header := bearer(t, a, models.Actor{UserID: "u", Active: true})

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=100", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/products?limit=10&offset=0", nil)
	req.Header.Set("Authorization", header)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestGetAvailability_QueryValidation(t *testing.T) {
	repo := &stubProductRepo{products: map[string]models.Product{
		"p1": {ID: "p1", OwnerID: "owner", Status: models.AcceptedProduct},
	}}
	server, a := newTestServer(t, repo)
	header := bearer(t, a, models.Actor{UserID: "visitor", Active: true})

	for _, query := range []string{"month=may", "year=x", "month=13", "month=5&year=2019", "month=0", "year=0", "month=0&year=2024"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products/p1/availability?"+query, nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "validation", decodeError(t, rec)["kind"])
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/missing/availability?month=5&year=2024", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p1/availability", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAvailability_HiddenProduct(t *testing.T) {
	repo := &stubProductRepo{products: map[string]models.Product{
		"draft": {ID: "draft", OwnerID: "owner", Status: models.UnderReviewProduct},
	}}
	server, a := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/products/draft/availability?month=5&year=2024", nil)
	req.Header.Set("Authorization", bearer(t, a, models.Actor{UserID: "visitor", Active: true}))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeError(t, rec)["kind"])
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestSendError_LogsWriteFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	sendError(brokenWriter{httptest.NewRecorder()}, zap.New(core), models.NewNotFoundError("product not found"))

	entries := logs.FilterMessage("failed to encode error response").All()
	require.Len(t, entries, 1)
	require.Equal(t, "broken pipe", entries[0].ContextMap()["error"])
}

func TestPingHandler_FailingDependency(t *testing.T) {
	ping := NewPingHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	}, zap.NewNop(), time.Second)

	rec := httptest.NewRecorder()
	ping.Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "redis is unavailable", decodeError(t, rec)["reason"])
}
