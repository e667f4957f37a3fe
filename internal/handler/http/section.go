// Package http exposes the storefront HTTP API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/internal/service"
	"github.com/dwatson/storefront/pkg/httputil"
	"github.com/dwatson/storefront/pkg/validator"
)

// SectionHandler handles the admin HTTP endpoints for homepage sections.
type SectionHandler struct {
	sections *service.SectionService
	data     *service.SectionDataService
	logger   *slog.Logger
}

// NewSectionHandler creates a new section HTTP handler.
func NewSectionHandler(sections *service.SectionService, data *service.SectionDataService, logger *slog.Logger) *SectionHandler {
	return &SectionHandler{
		sections: sections,
		data:     data,
		logger:   logger,
	}
}

// --- Request DTOs ---

// ReorderRequest is the JSON request body for a bulk reorder.
type ReorderRequest struct {
	Sections []domain.ReorderEntry `json:"sections" validate:"required,min=1,dive"`
}

// --- Handlers ---

// ListSections handles GET /api/v1/homepage-sections
func (h *SectionHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	var filter domain.SectionFilter

	if v := r.URL.Query().Get("type"); v != "" {
		filter.Type = &v
	}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := strings.EqualFold(v, "true")
		filter.IsActive = &active
	}
	if v := r.URL.Query().Get("is_published"); v != "" {
		published := strings.EqualFold(v, "true")
		filter.IsPublished = &published
	}

	sections, err := h.sections.ListSections(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sections})
}

// GetSection handles GET /api/v1/homepage-sections/{id}
func (h *SectionHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "section id is required"},
		})
		return
	}

	section, err := h.sections.GetSection(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: section})
}

// CreateSection handles POST /api/v1/homepage-sections
func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req domain.CreateSectionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	section, err := h.sections.CreateSection(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: section})
}

// UpdateSection handles PUT /api/v1/homepage-sections/{id}
func (h *SectionHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "section id is required"},
		})
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req domain.UpdateSectionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	section, err := h.sections.UpdateSection(r.Context(), id, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: section})
}

// ReorderSections handles PATCH /api/v1/homepage-sections/reorder
func (h *SectionHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sections.ReorderSections(r.Context(), req.Sections); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"reordered": len(req.Sections)}})
}

// DeleteSection handles DELETE /api/v1/homepage-sections/{id}
func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "section id is required"},
		})
		return
	}

	if err := h.sections.DeleteSection(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// GetSectionData handles GET /api/v1/homepage-sections/{id}/data
//
// The admin variant serves drafts too; the editor previews a section before
// publishing it.
func (h *SectionHandler) GetSectionData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "section id is required"},
		})
		return
	}

	data, err := h.data.GetAdminSectionData(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: data})
}
