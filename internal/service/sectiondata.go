package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/internal/homepage"
	apperrors "github.com/dwatson/storefront/pkg/errors"
)

// Product list limits for the data endpoints. The public top-selling limit is
// fixed; admin previews fall back to defaultAdminLimit when the section
// config carries none. New arrivals span every category, so they carry their
// own larger cap.
const (
	publicTopSellingLimit   = 10
	defaultAdminLimit       = 20
	defaultNewArrivalLimit  = 100
	maxGridSubcategories    = 6
	defaultButtonStripCount = 20
)

// SectionData is the payload returned by the section data endpoints.
type SectionData struct {
	Section *domain.Section `json:"section"`
	Items   any             `json:"items"`
}

// SubcategoryGridData is the payload behind a subcategoryGrid section: the
// configured grid tiles (at most six) plus the button strip rendered below
// them.
type SubcategoryGridData struct {
	GridSubcategories   []*domain.Subcategory `json:"gridSubcategories"`
	ButtonSubcategories []*domain.Subcategory `json:"buttonSubcategories"`
}

// SectionDataService resolves the backing catalog data for a single section,
// serving both the public storefront and the admin preview.
type SectionDataService struct {
	repo    domain.SectionRepository
	catalog domain.CatalogRepository
	logger  *slog.Logger
}

// NewSectionDataService creates a new section data service.
func NewSectionDataService(repo domain.SectionRepository, catalog domain.CatalogRepository, logger *slog.Logger) *SectionDataService {
	return &SectionDataService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// GetPublicSectionData returns the catalog data behind a renderable section.
// Sections that are inactive or unpublished are not served publicly.
func (s *SectionDataService) GetPublicSectionData(ctx context.Context, id string) (*SectionData, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get section for data: %w", err)
	}

	if !section.Renderable() {
		return nil, apperrors.Forbidden("section is not published")
	}

	switch section.Type {
	case domain.SectionTypeNewArrivals:
		items, err := s.newArrivalProducts(ctx, section)
		if err != nil {
			return nil, err
		}
		return &SectionData{Section: section, Items: items}, nil

	case domain.SectionTypeTopSelling:
		items, err := s.topSellingProducts(ctx, section, publicTopSellingLimit)
		if err != nil {
			return nil, err
		}
		return &SectionData{Section: section, Items: items}, nil

	case domain.SectionTypeFeaturedCollections:
		items, err := s.catalog.ListSubcategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subcategories for section data: %w", err)
		}
		return &SectionData{Section: section, Items: items}, nil

	case domain.SectionTypeSubcategoryGrid:
		items, err := s.subcategoryGridData(ctx, section)
		if err != nil {
			return nil, err
		}
		return &SectionData{Section: section, Items: items}, nil

	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("section type %q has no public data endpoint", section.Type))
	}
}

// GetAdminSectionData returns the catalog data behind a section regardless of
// its publication state, for the admin preview.
func (s *SectionDataService) GetAdminSectionData(ctx context.Context, id string) (*SectionData, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get section for data: %w", err)
	}

	var items any

	switch section.Type {
	case domain.SectionTypeBannerFullWidth:
		// A banner has no backing table; its data is the decoded config.
		var cfg homepage.BannerConfig
		if len(section.Config) > 0 {
			if jsonErr := json.Unmarshal(section.Config, &cfg); jsonErr != nil {
				return nil, apperrors.InvalidInput("banner config is malformed")
			}
		}
		items = cfg

	case domain.SectionTypeHeroSlider:
		items, err = s.heroSliders(ctx, section)

	case domain.SectionTypeCategoryFeatured, domain.SectionTypeCategoryGrid, domain.SectionTypeCategoryCircles:
		items, err = s.catalog.ListCategories(ctx, 0)

	case domain.SectionTypeDepartmentGrid:
		items, err = s.catalog.ListDepartments(ctx)

	case domain.SectionTypeSubcategoryGrid:
		items, err = s.subcategoryGridData(ctx, section)

	case domain.SectionTypeNewArrivals:
		items, err = s.newArrivalProducts(ctx, section)

	case domain.SectionTypeTopSelling:
		items, err = s.topSellingProducts(ctx, section, 0)

	case domain.SectionTypeFeaturedCollections:
		items, err = s.catalog.ListSubcategories(ctx)

	case domain.SectionTypeProductTabs, domain.SectionTypeProductCarousel:
		items, err = s.configuredProducts(ctx, section)

	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("section type %q has no data endpoint", section.Type))
	}

	if err != nil {
		return nil, err
	}

	return &SectionData{Section: section, Items: items}, nil
}

// newArrivalProducts loads new-arrival products. The section's categoryId is
// ignored for new arrivals; the storefront always shows the latest additions
// across the whole catalog, capped at defaultNewArrivalLimit when the config
// carries no limit.
func (s *SectionDataService) newArrivalProducts(ctx context.Context, section *domain.Section) ([]*domain.Product, error) {
	cfg := decodeProductConfig(section.Config)

	isNew := true
	filter := domain.ProductFilter{
		IsNewArrival: &isNew,
		Limit:        cfg.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultNewArrivalLimit
	}

	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list new arrivals for section data: %w", err)
	}
	return products, nil
}

// topSellingProducts loads top-selling products, optionally scoped to the
// configured category. fixedLimit overrides any configured limit when
// positive.
func (s *SectionDataService) topSellingProducts(ctx context.Context, section *domain.Section, fixedLimit int) ([]*domain.Product, error) {
	cfg := decodeProductConfig(section.Config)

	isTop := true
	filter := domain.ProductFilter{
		IsTopSelling: &isTop,
		Limit:        fixedLimit,
	}
	if filter.Limit <= 0 {
		filter.Limit = cfg.Limit
		if filter.Limit <= 0 {
			filter.Limit = defaultAdminLimit
		}
	}
	if cfg.CategoryID != "" {
		filter.CategoryID = &cfg.CategoryID
	}

	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list top selling for section data: %w", err)
	}
	return products, nil
}

// subcategoryGridData assembles the two subcategory lists behind a
// subcategoryGrid section. The grid keeps the configured id order capped at
// six; the button strip keeps store name order and defaults to the first
// twenty active subcategories when no ids are configured.
func (s *SectionDataService) subcategoryGridData(ctx context.Context, section *domain.Section) (*SubcategoryGridData, error) {
	subcategories, err := s.catalog.ListSubcategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subcategories for section data: %w", err)
	}

	var cfg homepage.SubcategoryGridConfig
	if len(section.Config) > 0 {
		_ = json.Unmarshal(section.Config, &cfg)
	}

	byID := make(map[string]*domain.Subcategory, len(subcategories))
	for _, sc := range subcategories {
		byID[sc.ID] = sc
	}

	grid := []*domain.Subcategory{}
	for _, id := range cfg.SubcategoryIDs {
		if len(grid) == maxGridSubcategories {
			break
		}
		if sc, ok := byID[id]; ok {
			grid = append(grid, sc)
		}
	}

	buttons := []*domain.Subcategory{}
	if len(cfg.ButtonSubcategoryIDs) > 0 {
		wanted := make(map[string]struct{}, len(cfg.ButtonSubcategoryIDs))
		for _, id := range cfg.ButtonSubcategoryIDs {
			wanted[id] = struct{}{}
		}
		for _, sc := range subcategories {
			if _, ok := wanted[sc.ID]; ok {
				buttons = append(buttons, sc)
			}
		}
	} else {
		buttons = subcategories
		if len(buttons) > defaultButtonStripCount {
			buttons = buttons[:defaultButtonStripCount]
		}
	}

	return &SubcategoryGridData{GridSubcategories: grid, ButtonSubcategories: buttons}, nil
}

// configuredProducts loads products for the tab and carousel section types,
// where the config picks the product pool. A configured category wins over
// the flag filter.
func (s *SectionDataService) configuredProducts(ctx context.Context, section *domain.Section) ([]*domain.Product, error) {
	cfg := decodeProductConfig(section.Config)

	filter := domain.ProductFilter{Limit: cfg.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultAdminLimit
	}

	flag := true
	switch {
	case cfg.CategoryID != "":
		filter.CategoryID = &cfg.CategoryID
	case cfg.Filter == "featured":
		filter.IsFeatured = &flag
	case cfg.Filter == "newArrival":
		filter.IsNewArrival = &flag
	case cfg.Filter == "trending":
		filter.IsTrending = &flag
	case cfg.Filter == "topSelling":
		filter.IsTopSelling = &flag
	default:
		filter.IsFeatured = &flag
	}

	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products for section data: %w", err)
	}
	return products, nil
}

// heroSliders loads the sliders behind a heroSlider section. When the config
// names slider IDs only those are returned, in the configured order.
func (s *SectionDataService) heroSliders(ctx context.Context, section *domain.Section) ([]*domain.Slider, error) {
	sliders, err := s.catalog.ListSliders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sliders for section data: %w", err)
	}

	var cfg homepage.HeroSliderConfig
	if err := json.Unmarshal(section.Config, &cfg); err != nil || len(cfg.SliderIDs) == 0 {
		return sliders, nil
	}

	byID := make(map[string]*domain.Slider, len(sliders))
	for _, sl := range sliders {
		byID[sl.ID] = sl
	}

	ordered := []*domain.Slider{}
	for _, id := range cfg.SliderIDs {
		if sl, ok := byID[id]; ok {
			ordered = append(ordered, sl)
		}
	}

	return ordered, nil
}

// decodeProductConfig unmarshals a product list config, tolerating malformed
// records.
func decodeProductConfig(raw json.RawMessage) homepage.ProductListConfig {
	var cfg homepage.ProductListConfig
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &cfg)
	}
	return cfg
}
