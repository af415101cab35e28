package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/sisterly-service/internal/auth"
	"github.com/senyabanana/sisterly-service/internal/handlers"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitRoutes(t *testing.T) {
	logger := zap.NewNop()
	routes := InitRoutes(Handlers{
		Ping:      handlers.NewPingHandler(nil, logger, time.Second),
		Products:  handlers.NewProductHandler(nil, logger, 0),
		Orders:    handlers.NewOrderHandler(nil, logger, 0),
		Admin:     handlers.NewAdminHandler(nil, logger, 0),
		Favorites: handlers.NewFavoriteHandler(nil, logger, 0),
		Search:    handlers.NewSearchHandler(nil, logger, 0),
		Users:     handlers.NewUserHandler(nil, logger, 0),
		Media:     handlers.NewMediaHandler(nil, nil, logger, 0),
	}, auth.NewAuthenticator("secret", logger))

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/my"},
		{http.MethodPost, "/api/products/p1/offers/new"},
		{http.MethodPut, "/api/products/p1/offers/o1/respond"},
		{http.MethodGet, "/api/products/p1/availability"},
		{http.MethodPut, "/api/admin/products/p1/review"},
		{http.MethodDelete, "/api/favorites/p1"},
		{http.MethodPut, "/api/orders/o1/checkout"},
		{http.MethodPost, "/api/media/m1/videos"},
	}
	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
