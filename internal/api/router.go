package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/mystic-arcana/oracle/internal/middleware"
)

// Mounter registers a group of endpoints. Domain handlers implement it so the
// router can mount them without importing their packages.
type Mounter interface {
	Routes(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	// Checks are the readiness dependencies keyed by name.
	Checks map[string]HealthCheck
}

// NewRouter builds the reading service router with every handler under /api/v1.
func NewRouter(cfg RouterConfig, v1 ...Mounter) http.Handler {
	r := newBaseRouter(cfg)

	r.Get("/health", readiness(cfg.Checks))

	r.Route("/api/v1", func(r chi.Router) {
		for _, m := range v1 {
			m.Routes(r)
		}
	})

	return r
}

// NewJourneyRouter builds the memory service router. Its endpoints live at the root.
func NewJourneyRouter(cfg RouterConfig, journey Mounter) http.Handler {
	r := newBaseRouter(cfg)
	journey.Routes(r)
	return r
}

func newBaseRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	r.Get("/health/ready", readiness(cfg.Checks))

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func readiness(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				health[name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			health[name] = "healthy"
		}

		JSON(w, status, health)
	}
}
