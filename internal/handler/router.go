package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/middleware"
)

// RouterConfig carries the handlers and middleware settings for NewRouter.
type RouterConfig struct {
	Logger   *slog.Logger
	Guard    middleware.Authorizer
	Metrics  metrics.Recorder
	Security middleware.SecurityConfig
	CORS     middleware.CORSConfig

	Root        *Handler
	Health      *HealthHandler
	MetricsView *MetricsHandler
	Token       *TokenHandler
	Sellers     *SellerHandler
	Books       *BookHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	r.Use(middleware.CORS(cfg.CORS))

	// Operational endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.MetricsView != nil {
		r.Get("/metrics", cfg.MetricsView.Metrics)
	}

	// Root info endpoint and API description
	r.Get("/", cfg.Root.Hello)
	r.Get("/openapi.yaml", cfg.Root.OpenAPI)

	requireAuth := middleware.Authenticate(middleware.AuthConfig{
		Logger:  cfg.Logger,
		Guard:   cfg.Guard,
		Metrics: cfg.Metrics,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/token", cfg.Token.Login)

		r.Route("/sellers", func(r chi.Router) {
			r.Post("/", cfg.Sellers.Create)
			r.Get("/", cfg.Sellers.List)
			r.With(requireAuth).Get("/{id}", cfg.Sellers.Get)
			r.With(requireAuth).Put("/{id}", cfg.Sellers.Update)
			r.With(requireAuth).Delete("/{id}", cfg.Sellers.Delete)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", cfg.Books.List)
			r.Get("/{id}", cfg.Books.Get)
			r.With(requireAuth).Post("/", cfg.Books.Create)
			r.With(requireAuth).Put("/{id}", cfg.Books.Update)
			r.With(requireAuth).Delete("/{id}", cfg.Books.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
