// Package service implements the business logic for homepage section
// management and section data resolution.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/internal/event"
	"github.com/dwatson/storefront/internal/homepage"
	apperrors "github.com/dwatson/storefront/pkg/errors"
)

// SectionService implements the business logic for section CRUD operations.
type SectionService struct {
	repo     domain.SectionRepository
	catalog  domain.CatalogRepository
	producer *event.Producer
	cache    *homepage.RenderCache
	logger   *slog.Logger
}

// NewSectionService creates a new section service. cache may be nil when no
// render cache is configured.
func NewSectionService(
	repo domain.SectionRepository,
	catalog domain.CatalogRepository,
	producer *event.Producer,
	cache *homepage.RenderCache,
	logger *slog.Logger,
) *SectionService {
	return &SectionService{
		repo:     repo,
		catalog:  catalog,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// CreateSection creates a new section. When no ordering is given the section
// goes to the end of the current order.
func (s *SectionService) CreateSection(ctx context.Context, input *domain.CreateSectionInput) (*domain.Section, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("section name is required")
	}
	if !domain.IsValidSectionType(input.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid section type %q, must be one of: %s",
			input.Type, strings.Join(domain.ValidSectionTypes(), ", ")))
	}

	ordering := 0
	if input.Ordering != nil {
		ordering = *input.Ordering
	} else {
		max, err := s.repo.MaxOrdering(ctx)
		if err != nil {
			return nil, fmt.Errorf("next section ordering: %w", err)
		}
		ordering = max + 1
	}

	now := time.Now().UTC()
	section := &domain.Section{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Type:        input.Type,
		Title:       input.Title,
		Subtitle:    input.Subtitle,
		Description: input.Description,
		Config:      input.Config,
		Ordering:    ordering,
		IsActive:    true,
		IsPublished: false,
		DisplayOn:   domain.DisplayOn{Desktop: true, Tablet: true, Mobile: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if section.Config == nil {
		section.Config = json.RawMessage(`{}`)
	}
	if input.IsActive != nil {
		section.IsActive = *input.IsActive
	}
	if input.IsPublished != nil {
		section.IsPublished = *input.IsPublished
	}
	if input.DisplayOn != nil {
		section.DisplayOn = *input.DisplayOn
	}

	if err := s.repo.Create(ctx, section); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}

	if err := s.producer.PublishSectionCreated(ctx, section); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish section.created event",
			slog.String("section_id", section.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.invalidateRenderCache(ctx)

	s.logger.InfoContext(ctx, "section created",
		slog.String("section_id", section.ID),
		slog.String("name", section.Name),
		slog.String("section_type", section.Type),
	)

	return section, nil
}

// GetSection retrieves a section by its ID.
func (s *SectionService) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get section by id: %w", err)
	}
	return section, nil
}

// GetSectionByName retrieves a section by its unique name.
func (s *SectionService) GetSectionByName(ctx context.Context, name string) (*domain.Section, error) {
	section, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get section by name: %w", err)
	}
	return section, nil
}

// ListSections returns sections matching the filter.
func (s *SectionService) ListSections(ctx context.Context, filter domain.SectionFilter) ([]*domain.Section, error) {
	sections, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// ListPublicSections returns active+published sections with brandSection
// configs enriched with store brand IDs.
func (s *SectionService) ListPublicSections(ctx context.Context) ([]*domain.Section, error) {
	sections, err := s.repo.ListRenderable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list renderable sections: %w", err)
	}

	s.enrichBrandSections(ctx, sections)

	return sections, nil
}

// UpdateSection applies partial updates to an existing section.
func (s *SectionService) UpdateSection(ctx context.Context, id string, input *domain.UpdateSectionInput) (*domain.Section, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get section for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("section name must not be empty")
		}
		section.Name = *input.Name
	}

	if input.Type != nil {
		if !domain.IsValidSectionType(*input.Type) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid section type %q, must be one of: %s",
				*input.Type, strings.Join(domain.ValidSectionTypes(), ", ")))
		}
		section.Type = *input.Type
	}

	if input.Title != nil {
		section.Title = *input.Title
	}
	if input.Subtitle != nil {
		section.Subtitle = *input.Subtitle
	}
	if input.Description != nil {
		section.Description = *input.Description
	}
	if input.Config != nil {
		section.Config = input.Config
	}
	if input.Ordering != nil {
		section.Ordering = *input.Ordering
	}
	if input.IsActive != nil {
		section.IsActive = *input.IsActive
	}
	if input.IsPublished != nil {
		section.IsPublished = *input.IsPublished
	}
	if input.DisplayOn != nil {
		section.DisplayOn = *input.DisplayOn
	}

	if err := s.repo.Update(ctx, section); err != nil {
		return nil, fmt.Errorf("update section: %w", err)
	}

	if err := s.producer.PublishSectionUpdated(ctx, section); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish section.updated event",
			slog.String("section_id", section.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateRenderCache(ctx)

	s.logger.InfoContext(ctx, "section updated",
		slog.String("section_id", section.ID),
		slog.String("name", section.Name),
	)

	return section, nil
}

// ReorderSections applies new ordering values to the given sections in one
// pass.
func (s *SectionService) ReorderSections(ctx context.Context, entries []domain.ReorderEntry) error {
	if len(entries) == 0 {
		return apperrors.InvalidInput("at least one reorder entry is required")
	}

	for _, entry := range entries {
		if entry.ID == "" {
			return apperrors.InvalidInput("reorder entry id is required")
		}
		if err := s.repo.UpdateOrdering(ctx, entry.ID, entry.Ordering); err != nil {
			return fmt.Errorf("reorder section %s: %w", entry.ID, err)
		}
	}

	s.invalidateRenderCache(ctx)

	s.logger.InfoContext(ctx, "sections reordered",
		slog.Int("count", len(entries)),
	)

	return nil
}

// DeleteSection removes a section by its ID.
func (s *SectionService) DeleteSection(ctx context.Context, id string) error {
	// Verify the section exists before deleting.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get section for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}

	if err := s.producer.PublishSectionDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish section.deleted event",
			slog.String("section_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateRenderCache(ctx)

	s.logger.InfoContext(ctx, "section deleted",
		slog.String("section_id", id),
	)

	return nil
}

// invalidateRenderCache drops the cached rendered homepage after a write.
// Invalidation failures are logged, not surfaced; the cache entry expires on
// its own TTL.
func (s *SectionService) invalidateRenderCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate render cache",
			slog.String("error", err.Error()),
		)
	}
}

// enrichBrandSections fills in the store brand ID on brandSection config
// entries whose name or alt spelling matches a store brand. The match is
// case-insensitive. Enrichment is best effort; a failed lookup leaves the
// config untouched.
func (s *SectionService) enrichBrandSections(ctx context.Context, sections []*domain.Section) {
	var brands []*domain.Brand

	for _, section := range sections {
		if section.Type != domain.SectionTypeBrandSection {
			continue
		}

		if brands == nil {
			var err error
			brands, err = s.catalog.ListBrands(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to load brands for section enrichment",
					slog.String("error", err.Error()),
				)
				return
			}
		}

		// Edit the raw config record so keys outside the brand list survive.
		var cfg map[string]any
		if err := json.Unmarshal(section.Config, &cfg); err != nil {
			continue
		}

		entries, ok := cfg["brands"].([]any)
		if !ok {
			continue
		}

		changed := false
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			if id, ok := matchBrand(brands, name); ok {
				entry["brandId"] = id
				changed = true
			}
		}

		if !changed {
			continue
		}

		enriched, err := json.Marshal(cfg)
		if err != nil {
			continue
		}
		section.Config = enriched
	}
}

// matchBrand finds a store brand whose name or alt spelling equals the given
// name, ignoring case.
func matchBrand(brands []*domain.Brand, name string) (string, bool) {
	for _, b := range brands {
		if strings.EqualFold(b.Name, name) || (b.Alt != "" && strings.EqualFold(b.Alt, name)) {
			return b.ID, true
		}
	}
	return "", false
}
