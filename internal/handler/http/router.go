package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pricewise/catalog-admin/internal/service"
	"github.com/pricewise/catalog-admin/pkg/health"
	"github.com/pricewise/catalog-admin/pkg/middleware"
)

// NewRouter creates a chi router with all catalog admin routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	prefillService *service.PrefillService,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("catalog-admin"))
	r.Use(middleware.PrometheusMetrics("catalog-admin"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(catalogService, logger)
	prefillHandler := NewPrefillHandler(prefillService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/products", catalogHandler.CreateProduct)

		r.Post("/variants", catalogHandler.CreateVariant)
		r.Get("/variants", catalogHandler.ListVariants)
		r.Post("/variants/prefill", prefillHandler.Prefill)
		r.Delete("/variants/{id}", catalogHandler.DeleteVariant)

		r.Post("/prices", catalogHandler.AddPrice)

		r.Get("/stats", catalogHandler.GetStats)
	})

	return r
}
