package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dwatson/storefront/pkg/health"
	"github.com/dwatson/storefront/pkg/middleware"
)

// RouterConfig holds the cross-cutting settings the router needs.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	PublicCacheAge int
	PprofCIDRs     []string
	TokenValidator middleware.TokenValidator
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	sectionHandler *SectionHandler,
	homepageHandler *HomepageHandler,
	catalogHandler *CatalogHandler,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	// Public storefront endpoints. Responses are cacheable and carry ETags so
	// returning visitors revalidate instead of re-downloading.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ETag())
		r.Use(middleware.CacheControl(cfg.PublicCacheAge))

		r.Get("/api/v1/homepage", homepageHandler.RenderHomepage)
		r.Get("/home-sections/{templateName}", homepageHandler.GetTemplate)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/api/v1/homepage-sections/public", homepageHandler.ListPublicSections)
			r.Get("/api/v1/homepage-sections/{id}/data/public", homepageHandler.GetSectionData)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/api/v1/products", catalogHandler.ListProducts)
			r.Get("/api/v1/categories", catalogHandler.ListCategories)
			r.Get("/api/v1/subcategories", catalogHandler.ListSubcategories)
			r.Get("/api/v1/departments", catalogHandler.ListDepartments)
			r.Get("/api/v1/brands", catalogHandler.ListBrands)
			r.Get("/api/v1/sliders", catalogHandler.ListSliders)
		})
	})

	// Admin section management. The public list and data variants above share
	// the prefix; chi resolves the static /public segments ahead of /{id}.
	r.Route("/api/v1/homepage-sections", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(middleware.RequireRole("admin"))
		r.Use(ContentTypeJSON)

		r.Get("/", sectionHandler.ListSections)
		r.Post("/", sectionHandler.CreateSection)

		// Reorder must come before /{id} to avoid route conflict.
		r.Patch("/reorder", sectionHandler.ReorderSections)

		r.Get("/{id}", sectionHandler.GetSection)
		r.Put("/{id}", sectionHandler.UpdateSection)
		r.Delete("/{id}", sectionHandler.DeleteSection)
		r.Get("/{id}/data", sectionHandler.GetSectionData)
	})

	return r
}

// ContentTypeJSON sets the JSON content type on every response in the group.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}
