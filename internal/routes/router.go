package routes

import (
	"net/http"
	"time"

	"infinite-experiment/hangar/internal/api"
	"infinite-experiment/hangar/internal/config"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	"infinite-experiment/hangar/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterOptions carries what RegisterRoutes needs beyond the dependencies.
type RouterOptions struct {
	Config  *config.Config
	Tokens  middleware.TokenParser
	Metrics *metrics.MetricsRegistry
	Probes  map[string]api.HealthProbe
	UpSince time.Time
}

func RegisterRoutes(deps *api.Dependencies, opts RouterOptions) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.InFlightMiddleware(opts.Metrics))
	r.Use(middleware.MetricsMiddleware(opts.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.Config.AllowedOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(opts.Probes, opts.UpSince))

	limiter := middleware.NewRateLimiter(opts.Config.RateLimitRPS, opts.Config.RateLimitBurst, opts.Config.RateLimitWhitelist...)
	RegisterAPIRoutes(r, deps, opts.Tokens, limiter)

	return r
}
