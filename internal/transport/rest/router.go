package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/checkout-gateway/internal/checkout"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/internal/transport/middleware"
	"github.com/frahmantamala/checkout-gateway/internal/transport/swagger"
	"github.com/frahmantamala/checkout-gateway/internal/webhook"
)

type RouterConfig struct {
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

type Handlers struct {
	Checkout *checkout.Handler
	Webhook  *webhook.Handler
	Provider ReadinessChecker
}

func NewRouter(cfg RouterConfig, handlers Handlers, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, cfg, handlers, logger)
	return router
}

func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(transport.NewBaseHandler(logger), handlers.Provider)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.Tracing)
	router.Use(middleware.RequestID)
	router.Use(middleware.Metrics)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, promhttp.Handler())
	}

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Route("/api", func(r chi.Router) {
		if handlers.Checkout != nil {
			r.Post("/create-charge", handlers.Checkout.CreateCheckout)
			r.Post("/create-checkout", handlers.Checkout.CreateCheckout)
		}

		if handlers.Webhook != nil {
			r.Post("/webhook/helio", handlers.Webhook.HandleNotification)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		transport.NewBaseHandler(logger).WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Not found",
			"message": r.Method + " " + r.URL.Path + " is not a known route",
		})
	})
}
