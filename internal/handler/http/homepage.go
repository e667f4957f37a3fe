package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwatson/storefront/internal/homepage"
	"github.com/dwatson/storefront/internal/service"
	"github.com/dwatson/storefront/internal/tmpl"
	"github.com/dwatson/storefront/pkg/httputil"
)

// HomepageHandler handles the public storefront endpoints: the rendered
// homepage, the public section list and data, and the raw section templates.
type HomepageHandler struct {
	renderer *homepage.Renderer
	sections *service.SectionService
	data     *service.SectionDataService
	loader   *tmpl.Loader
	logger   *slog.Logger
}

// NewHomepageHandler creates a new homepage HTTP handler.
func NewHomepageHandler(
	renderer *homepage.Renderer,
	sections *service.SectionService,
	data *service.SectionDataService,
	loader *tmpl.Loader,
	logger *slog.Logger,
) *HomepageHandler {
	return &HomepageHandler{
		renderer: renderer,
		sections: sections,
		data:     data,
		loader:   loader,
		logger:   logger,
	}
}

// RenderHomepage handles GET /api/v1/homepage
//
// The response body is the assembled homepage HTML, not JSON.
func (h *HomepageHandler) RenderHomepage(w http.ResponseWriter, r *http.Request) {
	html, err := h.renderer.Render(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// ListPublicSections handles GET /api/v1/homepage-sections/public
func (h *HomepageHandler) ListPublicSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sections.ListPublicSections(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sections})
}

// GetSectionData handles GET /api/v1/homepage-sections/{id}/data/public
//
// Only active+published sections are served here; drafts go through the admin
// variant.
func (h *HomepageHandler) GetSectionData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "section id is required"},
		})
		return
	}

	data, err := h.data.GetPublicSectionData(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: data})
}

// GetTemplate handles GET /home-sections/{templateName}
//
// Serves the raw section template so client-side renderers can fetch and fill
// it themselves.
func (h *HomepageHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "templateName")
	if name == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "template name is required"},
		})
		return
	}

	raw, err := h.loader.Raw(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(raw))
}
