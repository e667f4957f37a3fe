package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/pkg/httputil"
	"github.com/dwatson/storefront/pkg/pagination"
)

// maxProductLimit caps the product list endpoint.
const maxProductLimit = 100

// CatalogHandler handles the read-only catalog endpoints backing the
// storefront.
type CatalogHandler struct {
	catalog domain.CatalogRepository
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog domain.CatalogRepository, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var filter domain.ProductFilter

	q := r.URL.Query()
	if v := q.Get("new_arrival"); v != "" {
		b := strings.EqualFold(v, "true")
		filter.IsNewArrival = &b
	}
	if v := q.Get("top_selling"); v != "" {
		b := strings.EqualFold(v, "true")
		filter.IsTopSelling = &b
	}
	if v := q.Get("trending"); v != "" {
		b := strings.EqualFold(v, "true")
		filter.IsTrending = &b
	}
	if v := q.Get("featured"); v != "" {
		b := strings.EqualFold(v, "true")
		filter.IsFeatured = &b
	}
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	p := pagination.FromRequest(r)
	if v := q.Get("limit"); v != "" {
		// An explicit limit overrides the page size.
		if limit := parseLimit(v, maxProductLimit); limit > 0 {
			p.PerPage = limit
			p.Offset = (p.Page - 1) * p.PerPage
		}
	}
	filter.Limit = p.PerPage
	filter.Offset = p.Offset

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	total, err := h.catalog.CountProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, p.Page, p.PerPage))
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 0)

	categories, err := h.catalog.ListCategories(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// ListSubcategories handles GET /api/v1/subcategories
func (h *CatalogHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := h.catalog.ListSubcategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: subcategories})
}

// ListDepartments handles GET /api/v1/departments
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.catalog.ListDepartments(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: departments})
}

// ListBrands handles GET /api/v1/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brands})
}

// ListSliders handles GET /api/v1/sliders
func (h *CatalogHandler) ListSliders(w http.ResponseWriter, r *http.Request) {
	sliders, err := h.catalog.ListSliders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sliders})
}

// parseLimit parses a limit query parameter, clamping to max when max is
// positive. Invalid or absent values yield 0 (no limit).
func parseLimit(v string, max int) int {
	if v == "" {
		return 0
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return 0
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}
