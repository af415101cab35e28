package router

import (
	"net/http"

	"github.com/senyabanana/sisterly-service/internal/auth"
	"github.com/senyabanana/sisterly-service/internal/handlers"
	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
)

// Handlers - обработчики, из которых собираются маршруты API.
type Handlers struct {
	Ping      *handlers.PingHandler
	Products  *handlers.ProductHandler
	Orders    *handlers.OrderHandler
	Admin     *handlers.AdminHandler
	Favorites *handlers.FavoriteHandler
	Search    *handlers.SearchHandler
	Users     *handlers.UserHandler
	Media     *handlers.MediaHandler
}

func InitRoutes(h Handlers, authenticator *auth.Authenticator) http.Handler {
	mux := http.NewServeMux()
	protected := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, authenticator.Middleware(handler))
	}

	mux.HandleFunc("/api/ping", h.Ping.Ping)
	mux.HandleFunc("GET /api/brands", h.Media.GetTaxonomy(repository.Brands))
	mux.HandleFunc("GET /api/colors", h.Media.GetTaxonomy(repository.Colors))
	mux.HandleFunc("GET /api/materials", h.Media.GetTaxonomy(repository.Materials))

	protected("GET /api/products", h.Products.GetProducts)
	protected("POST /api/products/new", h.Products.CreateProduct)
	protected("GET /api/products/my", h.Products.GetMyProducts)
	protected("POST /api/products/search", h.Search.SearchProducts)
	protected("GET /api/products/{productId}", h.Products.GetProduct)
	protected("PATCH /api/products/{productId}/edit", h.Products.EditProduct)
	protected("POST /api/products/{productId}/submit", h.Products.SubmitProduct)
	protected("GET /api/products/{productId}/issues", h.Products.GetProductIssues)
	protected("GET /api/products/{productId}/availability", h.Orders.GetAvailability)

	protected("POST /api/products/{productId}/offers/new", h.Orders.SubmitOffer)
	protected("GET /api/products/{productId}/offers", h.Orders.GetOffers)
	protected("PUT /api/products/{productId}/offers/{orderId}/respond", h.Orders.RespondOffer)
	protected("GET /api/orders/cart", h.Orders.GetCart)
	protected("PUT /api/orders/{orderId}/checkout", h.Orders.Checkout)

	protected("GET /api/admin/products", h.Admin.GetReviewQueue)
	protected("PUT /api/admin/products/{productId}/review", h.Admin.ReviewProduct)

	protected("GET /api/favorites", h.Favorites.GetFavorites)
	protected("POST /api/favorites/{productId}", h.Favorites.AddFavorite)
	protected("DELETE /api/favorites/{productId}", h.Favorites.RemoveFavorite)

	protected("POST /api/users/search", h.Search.SearchUsers)
	protected("GET /api/users/{userId}/products", h.Users.GetUserProducts)
	protected("POST /api/devices", h.Users.RegisterDevice)
	protected("GET /api/addresses", h.Users.GetAddresses)
	protected("POST /api/addresses/new", h.Users.CreateAddress)
	protected("GET /api/addresses/{addressId}", h.Users.GetAddress)
	protected("PUT /api/addresses/{addressId}", h.Users.UpdateAddress)

	protected("POST /api/media/new", h.Media.CreateMedia)
	protected("GET /api/media/{mediaId}", h.Media.GetMedia)
	protected("POST /api/media/{mediaId}/images", h.Media.AddMediaFile(models.ImageMedia))
	protected("POST /api/media/{mediaId}/videos", h.Media.AddMediaFile(models.VideoMedia))
	protected("DELETE /api/images/{fileId}", h.Media.DeactivateMediaFile(models.ImageMedia))
	protected("DELETE /api/videos/{fileId}", h.Media.DeactivateMediaFile(models.VideoMedia))

	return mux
}
