package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalog administration
	mux.HandleFunc("POST /api/admin/categories", h.Catalog.CreateCategory)
	mux.HandleFunc("PUT /api/admin/categories/{id}", h.Catalog.UpdateCategory)
	mux.HandleFunc("PATCH /api/admin/categories/{id}/active", h.Catalog.SetCategoryActive)
	mux.HandleFunc("GET /api/admin/categories/{id}/counts", h.Catalog.CategoryCounts)
	mux.HandleFunc("DELETE /api/admin/categories/{id}", h.Catalog.DeleteCategory)
	mux.HandleFunc("POST /api/admin/categories/{id}/subcategories", h.Catalog.CreateSubcategory)
	mux.HandleFunc("PATCH /api/admin/subcategories/{id}/active", h.Catalog.SetSubcategoryActive)
	mux.HandleFunc("GET /api/admin/subcategories/{id}/counts", h.Catalog.SubcategoryCounts)
	mux.HandleFunc("POST /api/admin/products", h.Catalog.CreateProduct)
	mux.HandleFunc("PATCH /api/admin/products/{id}/price", h.Catalog.UpdateProductPrice)
	mux.HandleFunc("PATCH /api/admin/products/{id}/active", h.Catalog.SetProductActive)
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.Catalog.DeleteProduct)
	mux.HandleFunc("GET /api/admin/orders", h.Order.ListByState)

	// Storefront
	mux.HandleFunc("GET /api/categories", h.Catalog.ListCategories)
	mux.HandleFunc("GET /api/products/{id}", h.Catalog.GetProduct)

	// Cart and order routes act on behalf of the X-User-ID caller
	user := middleware.RequireUser(logger)
	mux.Handle("GET /api/cart", user(http.HandlerFunc(h.Cart.Get)))
	mux.Handle("DELETE /api/cart", user(http.HandlerFunc(h.Cart.Clear)))
	mux.Handle("GET /api/cart/total", user(http.HandlerFunc(h.Cart.Total)))
	mux.Handle("PUT /api/cart/items/{productId}", user(http.HandlerFunc(h.Cart.PutItem)))
	mux.Handle("DELETE /api/cart/items/{productId}", user(http.HandlerFunc(h.Cart.RemoveItem)))
	mux.Handle("POST /api/orders", user(http.HandlerFunc(h.Order.Create)))
	mux.Handle("GET /api/orders", user(http.HandlerFunc(h.Order.History)))

	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)
	mux.HandleFunc("POST /api/orders/{id}/transition", h.Order.Transition)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.Order.Cancel)
	mux.HandleFunc("DELETE /api/orders/{id}", h.Order.Delete)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
