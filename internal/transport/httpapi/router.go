// Package httpapi is the Request Normalizer entry point: routing,
// middleware chain, and the sentinel-error-to-HTTP-status dispatch
// table (spec §6, §7), adapted from the teacher's chi transport layer.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/metrics"
)

// NewRouter assembles the chi router: middleware chain, health probes,
// /metrics, and the versioned API surface under apiPrefix.
func NewRouter(h *Handlers, limiter RateLimiter, log *zap.Logger, apiPrefix string, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(jsonRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(correlationMiddleware)
	r.Use(wideEventMiddleware(log))
	r.Use(metrics.Middleware())
	r.Use(requestDeadlineMiddleware(requestTimeout))
	r.Use(rateLimitMiddleware(limiter))

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(apiPrefix, func(api chi.Router) {
		api.Get("/search", h.Search)
		api.Get("/search/facets", h.Facets)
	})

	return r
}
