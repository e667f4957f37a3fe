package homepage

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dwatson/storefront/internal/domain"
)

// templateNames maps renderable section types to their template asset name.
// Types absent here have no homepage template and are skipped by the renderer.
var templateNames = map[string]string{
	domain.SectionTypeScrollingText:       "announcement-bar",
	domain.SectionTypeBannerFullWidth:     "banner",
	domain.SectionTypeHeroSlider:          "hero-slider",
	domain.SectionTypeCategoryFeatured:    "popular-categories",
	domain.SectionTypeCategoryGrid:        "popular-categories",
	domain.SectionTypeCategoryCircles:     "popular-categories",
	domain.SectionTypeNewArrivals:         "new-arrivals",
	domain.SectionTypeTopSelling:          "top-selling-products",
	domain.SectionTypeFeaturedCollections: "featured-collections",
	domain.SectionTypeBrandSection:        "brand-section",
	domain.SectionTypeNewsletterSocial:    "newsletter-social",
}

// TemplateName returns the template asset name for a section type.
func TemplateName(sectionType string) (string, bool) {
	name, ok := templateNames[sectionType]
	return name, ok
}

const (
	topSellingRenderLimit = 10
	newArrivalRenderLimit = 100
)

// Resolver maps an eligible section record to the flat data record its
// template consumes. A nil record with a nil error means the section is
// legitimately skipped (for example a hero slider with no matching slides).
type Resolver struct {
	catalog domain.CatalogRepository
	logger  *slog.Logger
}

// NewResolver creates a section data resolver over the catalog store.
func NewResolver(catalog domain.CatalogRepository, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve dispatches on the section type. Unknown types yield nil data; all
// config access is defensive and never panics.
func (r *Resolver) Resolve(ctx context.Context, section *domain.Section) (map[string]any, error) {
	switch section.Type {
	case domain.SectionTypeScrollingText:
		return r.resolveScrollingText(section), nil
	case domain.SectionTypeBannerFullWidth:
		return r.resolveBanner(section), nil
	case domain.SectionTypeHeroSlider:
		return r.resolveHeroSlider(ctx, section)
	case domain.SectionTypeCategoryFeatured,
		domain.SectionTypeCategoryGrid,
		domain.SectionTypeCategoryCircles:
		return r.resolveCategories(ctx, section)
	case domain.SectionTypeNewArrivals:
		return r.resolveNewArrivals(ctx, section)
	case domain.SectionTypeTopSelling:
		return r.resolveTopSelling(ctx, section)
	case domain.SectionTypeFeaturedCollections:
		return r.resolveFeaturedCollections(ctx, section)
	case domain.SectionTypeBrandSection:
		return r.resolveBrandSection(section), nil
	case domain.SectionTypeNewsletterSocial:
		return r.resolveNewsletter(section), nil
	default:
		r.logger.WarnContext(ctx, "no data resolver for section type",
			slog.String("section_id", section.ID),
			slog.String("type", section.Type),
		)
		return nil, nil
	}
}

func (r *Resolver) resolveScrollingText(section *domain.Section) map[string]any {
	cfg := decodeConfig[ScrollingTextConfig](section.Config)

	items := make([]any, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, item)
	}

	return map[string]any{
		"items":           items,
		"backgroundColor": cfg.BackgroundColor,
		"textColor":       cfg.TextColor,
		"speed":           cfg.Speed,
	}
}

func (r *Resolver) resolveBanner(section *domain.Section) map[string]any {
	cfg := decodeConfig[BannerConfig](section.Config)

	return map[string]any{
		"title":      section.Title,
		"imageUrl":   cfg.ImageURL,
		"altText":    cfg.AltText,
		"link":       cfg.Link,
		"sizingMode": cfg.SizingMode,
	}
}

func (r *Resolver) resolveHeroSlider(ctx context.Context, section *domain.Section) (map[string]any, error) {
	cfg := decodeConfig[HeroSliderConfig](section.Config)

	all, err := r.catalog.ListSliders(ctx)
	if err != nil {
		return nil, err
	}

	var selected []*domain.Slider
	if len(cfg.SliderIDs) > 0 {
		// Filter to the configured slides, preserving the configured order.
		byID := make(map[string]*domain.Slider, len(all))
		for _, s := range all {
			byID[s.ID] = s
		}
		for _, id := range cfg.SliderIDs {
			if s, ok := byID[id]; ok {
				selected = append(selected, s)
			}
		}
	} else {
		selected = all
	}

	// No matching slides means no hero section at all.
	if len(selected) == 0 {
		return nil, nil
	}

	slides := make([]any, 0, len(selected))
	for _, s := range selected {
		slides = append(slides, map[string]any{
			"imageUrl":   s.ImageURL(),
			"altText":    s.Title,
			"title":      s.Title,
			"subtitle":   s.Description,
			"buttonText": s.ButtonText,
			"buttonLink": s.Link,
		})
	}

	return map[string]any{"slides": slides}, nil
}

func (r *Resolver) resolveCategories(ctx context.Context, section *domain.Section) (map[string]any, error) {
	cfg := decodeConfig[CategoryListConfig](section.Config)

	var selected []*domain.Category
	if len(cfg.CategoryIDs) > 0 {
		// Fetch everything, then filter and reorder to the configured id
		// order rather than query order.
		all, err := r.catalog.ListCategories(ctx, 0)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*domain.Category, len(all))
		for _, c := range all {
			byID[c.ID] = c
		}
		for _, id := range cfg.CategoryIDs {
			if c, ok := byID[id]; ok {
				selected = append(selected, c)
			}
		}
	} else {
		var err error
		selected, err = r.catalog.ListCategories(ctx, defaultCategoryTake)
		if err != nil {
			return nil, err
		}
	}

	categories := make([]any, 0, len(selected))
	for _, c := range selected {
		categories = append(categories, map[string]any{
			"id":       c.ID,
			"name":     c.Name,
			"imageUrl": c.ImageURL(),
			"link":     "/category.html?id=" + c.ID,
		})
	}

	return map[string]any{
		"title":      section.Title,
		"subtitle":   section.Subtitle,
		"categories": categories,
	}, nil
}

func (r *Resolver) resolveNewArrivals(ctx context.Context, section *domain.Section) (map[string]any, error) {
	// New arrivals always span all categories; config.categoryId is a
	// deliberate no-op here.
	cfg := decodeConfig[ProductListConfig](section.Config)

	filter := domain.ProductFilter{Limit: cfg.Limit}
	if filter.Limit <= 0 {
		filter.Limit = newArrivalRenderLimit
	}
	isNew := true
	filter.IsNewArrival = &isNew

	products, err := r.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"title":    section.Title,
		"subtitle": section.Subtitle,
		"products": productRecords(products),
	}, nil
}

func (r *Resolver) resolveTopSelling(ctx context.Context, section *domain.Section) (map[string]any, error) {
	cfg := decodeConfig[ProductListConfig](section.Config)

	filter := domain.ProductFilter{Limit: topSellingRenderLimit}
	isTop := true
	filter.IsTopSelling = &isTop
	if cfg.CategoryID != "" {
		filter.CategoryID = &cfg.CategoryID
	}

	products, err := r.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"title":    section.Title,
		"subtitle": section.Subtitle,
		"products": productRecords(products),
	}, nil
}

func (r *Resolver) resolveFeaturedCollections(ctx context.Context, section *domain.Section) (map[string]any, error) {
	subcategories, err := r.catalog.ListSubcategories(ctx)
	if err != nil {
		return nil, err
	}

	collections := make([]any, 0, len(subcategories))
	for _, sc := range subcategories {
		collections = append(collections, map[string]any{
			"id":       sc.ID,
			"name":     sc.Name,
			"imageUrl": sc.ImageURL(),
			"link":     "/category.html?subcategoryId=" + sc.ID,
		})
	}

	return map[string]any{
		"title":       section.Title,
		"subtitle":    section.Subtitle,
		"collections": collections,
	}, nil
}

func (r *Resolver) resolveBrandSection(section *domain.Section) map[string]any {
	cfg := decodeConfig[BrandSectionConfig](section.Config)

	entries := make([]BrandEntry, len(cfg.Brands))
	copy(entries, cfg.Brands)
	sortBrandEntries(entries)

	// Zero configured brands still renders an empty container.
	brands := make([]any, 0, len(entries))
	for _, b := range entries {
		link := b.Link
		if link == "" {
			link = "#"
		}
		brands = append(brands, map[string]any{
			"name":          b.Name,
			"imageUrl":      b.ImageURL,
			"link":          link,
			"discountLabel": b.DiscountLabel(),
		})
	}

	return map[string]any{
		"title":  section.Title,
		"brands": brands,
	}
}

func (r *Resolver) resolveNewsletter(section *domain.Section) map[string]any {
	cfg := decodeConfig[NewsletterConfig](section.Config)

	links := make([]any, 0)
	for _, l := range cfg.NormalizedSocialLinks() {
		links = append(links, map[string]any{
			"platform":  l.Platform,
			"url":       l.URL,
			"iconClass": l.IconClass,
		})
	}

	return map[string]any{
		"title":       section.Title,
		"subtitle":    section.Subtitle,
		"description": section.Description,
		"socialLinks": links,
	}
}

func productRecords(products []*domain.Product) []any {
	out := make([]any, 0, len(products))
	for _, p := range products {
		rec := map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"price":    p.Price,
			"imageUrl": p.ImageURL(),
			"link":     "/product.html?id=" + p.ID,
			"inStock":  p.Stock > 0,
		}
		// Numeric zero is truthy to the template engine; full-price
		// products carry no discount key so the badge stays hidden.
		if p.Discount > 0 {
			rec["discount"] = p.Discount
		}
		out = append(out, rec)
	}
	return out
}

// sortBrandEntries orders brand entries by their configured order ascending,
// keeping input order for ties.
func sortBrandEntries(entries []BrandEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
}
