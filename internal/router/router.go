package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-shop-api/internal/config"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
			auth.With(authMiddleware.RequireAuth).Put("/password", authHandler.ChangePassword)
		})

		api.Route("/products", func(products chi.Router) {
			products.Get("/", productHandler.List)
			products.Get("/{id}", productHandler.Get)
			products.With(authMiddleware.RequireAuth).Post("/", productHandler.Create)
			products.With(authMiddleware.RequireAuth).Put("/{id}", productHandler.Update)
			products.With(authMiddleware.RequireAuth).Delete("/{id}", productHandler.Delete)
		})

		api.Route("/cart", func(cart chi.Router) {
			cart.Use(authMiddleware.RequireAuth)
			cart.Get("/", cartHandler.Get)
			cart.Delete("/", cartHandler.Clear)
			cart.Post("/items", cartHandler.AddItem)
			cart.Put("/items/{product_id}", cartHandler.UpdateItem)
			cart.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"route not found"}}`))
	})

	return r
}
