package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/api/handler"
	apimw "github.com/runnerkit/hello-service/internal/api/middleware"
	"github.com/runnerkit/hello-service/internal/config"
	"github.com/runnerkit/hello-service/internal/service"
)

// Deps carries the collaborators the HTTP layer needs.
type Deps struct {
	Health  *service.HealthService
	Media   handler.ObjectLocator
	Static  handler.ObjectLocator
	Limiter apimw.Limiter
	Metrics prometheus.Gatherer
	Logger  *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(d.Logger))
	r.Use(apimw.SecurityHeaders)
	r.Use(apimw.AllowedHosts(cfg.AllowedHosts))

	// --- handler instances ---
	hh := handler.NewHealthHandler(d.Health)
	ih := handler.NewInfoHandler(cfg.Environment, cfg.HTTPPort)
	dh := handler.NewDocsHandler()

	// --- routes ---
	r.Get("/", hh.Hello)
	r.Get("/home/", hh.Hello)
	r.Get("/info", ih.Info)

	r.Get("/health", hh.Liveness)
	r.Get("/health/", hh.Liveness)

	// Probes that reach a dependency share one token bucket.
	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(d.Limiter))
		r.Get("/health/db", hh.Readiness)
		r.Get("/health/db/", hh.Readiness)
		r.Get("/health/storage", hh.StorageReadiness)
		r.Get("/health/storage/", hh.StorageReadiness)
	})

	if d.Media != nil && d.Static != nil {
		mh := handler.NewMediaHandler(d.Media, d.Static)
		r.Get("/media/*", mh.Media)
		r.Get("/static/*", mh.Static)
	}

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))

	r.Get("/swagger", dh.RedirectToIndex)
	r.Get("/swagger/openapi.yaml", dh.Spec)
	r.Get("/swagger/*", dh.UI)

	return r
}
