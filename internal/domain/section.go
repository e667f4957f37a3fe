package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Section type constants. The type determines which data resolver and which
// template apply when the section is rendered.
const (
	SectionTypeHeroSlider          = "heroSlider"
	SectionTypeScrollingText       = "scrollingText"
	SectionTypeCategoryFeatured    = "categoryFeatured"
	SectionTypeCategoryGrid        = "categoryGrid"
	SectionTypeCategoryCircles     = "categoryCircles"
	SectionTypeDepartmentGrid      = "departmentGrid"
	SectionTypeProductTabs         = "productTabs"
	SectionTypeProductCarousel     = "productCarousel"
	SectionTypeNewArrivals         = "newArrivals"
	SectionTypeTopSelling          = "topSelling"
	SectionTypeFeaturedCollections = "featuredCollections"
	SectionTypeSubcategoryGrid     = "subcategoryGrid"
	SectionTypeBannerFullWidth     = "bannerFullWidth"
	SectionTypeVideoBanner         = "videoBanner"
	SectionTypeCollectionLinks     = "collectionLinks"
	SectionTypeNewsletterSocial    = "newsletterSocial"
	SectionTypeBrandSection        = "brandSection"
	SectionTypeCustomHTML          = "customHTML"
)

// DisplayOn holds per-viewport visibility flags. Consumed by the presentation
// layer only; ordering and data resolution ignore it.
type DisplayOn struct {
	Desktop bool `json:"desktop"`
	Tablet  bool `json:"tablet"`
	Mobile  bool `json:"mobile"`
}

// Section represents one configurable homepage content block.
//
// Config is an open, type-dependent record kept raw here; the renderer decodes
// it through per-type variant structs with defensive defaults. A section is
// eligible for rendering iff IsActive and IsPublished are both true.
type Section struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Title       string          `json:"title,omitempty"`
	Subtitle    string          `json:"subtitle,omitempty"`
	Description string          `json:"description,omitempty"`
	Config      json.RawMessage `json:"config"`
	Ordering    int             `json:"ordering"`
	IsActive    bool            `json:"is_active"`
	IsPublished bool            `json:"is_published"`
	DisplayOn   DisplayOn       `json:"display_on"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Renderable reports whether the section is eligible for public rendering.
func (s *Section) Renderable() bool {
	return s.IsActive && s.IsPublished
}

// ValidSectionTypes returns the set of valid section types.
func ValidSectionTypes() []string {
	return []string{
		SectionTypeHeroSlider,
		SectionTypeScrollingText,
		SectionTypeCategoryFeatured,
		SectionTypeCategoryGrid,
		SectionTypeCategoryCircles,
		SectionTypeDepartmentGrid,
		SectionTypeProductTabs,
		SectionTypeProductCarousel,
		SectionTypeNewArrivals,
		SectionTypeTopSelling,
		SectionTypeFeaturedCollections,
		SectionTypeSubcategoryGrid,
		SectionTypeBannerFullWidth,
		SectionTypeVideoBanner,
		SectionTypeCollectionLinks,
		SectionTypeNewsletterSocial,
		SectionTypeBrandSection,
		SectionTypeCustomHTML,
	}
}

// IsValidSectionType checks whether the given type is one of the enumerated
// section types. Enforced on write only; a stored record with a stale type is
// skipped by the renderer rather than rejected on read.
func IsValidSectionType(t string) bool {
	for _, v := range ValidSectionTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// CreateSectionInput holds the parameters for creating a section.
type CreateSectionInput struct {
	Name        string          `json:"name" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle"`
	Description string          `json:"description"`
	Config      json.RawMessage `json:"config"`
	Ordering    *int            `json:"ordering"`
	IsActive    *bool           `json:"is_active"`
	IsPublished *bool           `json:"is_published"`
	DisplayOn   *DisplayOn      `json:"display_on"`
}

// UpdateSectionInput holds the parameters for a partial section update.
type UpdateSectionInput struct {
	Name        *string         `json:"name"`
	Type        *string         `json:"type"`
	Title       *string         `json:"title"`
	Subtitle    *string         `json:"subtitle"`
	Description *string         `json:"description"`
	Config      json.RawMessage `json:"config"`
	Ordering    *int            `json:"ordering"`
	IsActive    *bool           `json:"is_active"`
	IsPublished *bool           `json:"is_published"`
	DisplayOn   *DisplayOn      `json:"display_on"`
}

// ReorderEntry assigns a new ordering value to one section in a bulk reorder.
type ReorderEntry struct {
	ID       string `json:"id" validate:"required"`
	Ordering int    `json:"ordering"`
}

// SectionFilter defines filter criteria for listing sections.
type SectionFilter struct {
	Type        *string
	IsActive    *bool
	IsPublished *bool
}

// SectionRepository defines the interface for section persistence operations.
type SectionRepository interface {
	// Create inserts a new section into the store.
	Create(ctx context.Context, section *Section) error

	// GetByID retrieves a section by its unique identifier.
	GetByID(ctx context.Context, id string) (*Section, error)

	// GetByName retrieves a section by its unique name.
	GetByName(ctx context.Context, name string) (*Section, error)

	// List retrieves sections matching the filter, ordered by ordering then
	// creation time.
	List(ctx context.Context, filter SectionFilter) ([]*Section, error)

	// ListRenderable retrieves active+published sections ordered by ordering
	// ascending then creation time ascending.
	ListRenderable(ctx context.Context) ([]*Section, error)

	// MaxOrdering returns the highest ordering value across all sections,
	// or 0 when the store is empty.
	MaxOrdering(ctx context.Context) (int, error)

	// Update persists changes to an existing section.
	Update(ctx context.Context, section *Section) error

	// UpdateOrdering sets the ordering value of a single section.
	UpdateOrdering(ctx context.Context, id string, ordering int) error

	// Delete removes a section permanently.
	Delete(ctx context.Context, id string) error
}
