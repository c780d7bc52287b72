package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/handler"
	"github.com/lushhair/storefront/internal/telemetry"
)

// NewRouter assembles the HTTP surface: public catalog and cart routes,
// session-guarded checkout and order routes, and the admin area.
func NewRouter(
	authHandler *handler.AuthHandler,
	cartHandler *handler.CartHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	userHandler *handler.UserHandler,
	sessions auth.Service,
) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(telemetry.Middleware)
	router.Use(auth.Authenticator(sessions))

	router.Route("/api", func(api chi.Router) {
		authHandler.RegisterRoutes(api)
		cartHandler.RegisterRoutes(api)
		productHandler.RegisterRoutes(api)

		api.Group(func(private chi.Router) {
			private.Use(auth.RequireUser)
			orderHandler.RegisterRoutes(private)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)
			productHandler.RegisterAdminRoutes(admin)
			orderHandler.RegisterAdminRoutes(admin)
			userHandler.RegisterAdminRoutes(admin)
		})
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", telemetry.Handler())

	return router
}
