// Package homepage implements the server-side homepage rendering pipeline:
// section ordering, per-type data resolution, template rendering, and HTML
// post-processing.
package homepage

import (
	"encoding/json"
	"strconv"

	"github.com/dwatson/storefront/internal/domain"
)

// Location directive values recognized by the order resolver. Any other value
// of the form "after-section-<id>" anchors the section to a sibling.
const (
	LocationTop         = "top"
	LocationBottom      = "bottom"
	afterSectionPrefix  = "after-section-"
	defaultCategoryTake = 8
)

// decodeConfig unmarshals a section's raw config into the given variant
// struct. Malformed config yields the zero value; field access downstream is
// defensive, never a hard failure.
func decodeConfig[T any](raw json.RawMessage) T {
	var cfg T
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &cfg)
	}
	return cfg
}

// locationConfig is the shared slice of config every section type carries.
type locationConfig struct {
	Location string `json:"location"`
}

// SectionLocation returns the section's location directive, or "" when unset.
func SectionLocation(s *domain.Section) string {
	return decodeConfig[locationConfig](s.Config).Location
}

// ScrollingTextConfig configures a scrollingText (announcement bar) section.
type ScrollingTextConfig struct {
	Items           []string `json:"items"`
	BackgroundColor string   `json:"backgroundColor"`
	TextColor       string   `json:"textColor"`
	Speed           float64  `json:"speed"`
}

// BannerConfig configures a bannerFullWidth section. Sizing fields apply only
// when SizingMode is "custom".
type BannerConfig struct {
	ImageURL      string `json:"imageUrl"`
	AltText       string `json:"altText"`
	Link          string `json:"link"`
	SizingMode    string `json:"sizingMode"`
	MaxWidth      string `json:"maxWidth"`
	DesktopHeight string `json:"desktopHeight"`
	TabletHeight  string `json:"tabletHeight"`
	MobileHeight  string `json:"mobileHeight"`
}

// HeroSliderConfig configures a heroSlider section. When SliderIDs is
// non-empty only those sliders render, preserving the configured order.
type HeroSliderConfig struct {
	SliderIDs        []string `json:"sliderIds"`
	Autoplay         *bool    `json:"autoplay"`
	AutoplayInterval int      `json:"autoplayInterval"`
}

// AutoplayEnabled reports whether autoplay is on (default true).
func (c HeroSliderConfig) AutoplayEnabled() bool {
	return c.Autoplay == nil || *c.Autoplay
}

// Interval returns the autoplay interval in milliseconds (default 3000).
func (c HeroSliderConfig) Interval() int {
	if c.AutoplayInterval > 0 {
		return c.AutoplayInterval
	}
	return 3000
}

// CategoryListConfig configures the category section family
// (categoryFeatured, categoryGrid, categoryCircles).
type CategoryListConfig struct {
	CategoryIDs []string `json:"categoryIds"`
}

// SubcategoryGridConfig configures a subcategoryGrid section. SubcategoryIDs
// pick the grid tiles; ButtonSubcategoryIDs pick the button strip below them.
type SubcategoryGridConfig struct {
	SubcategoryIDs       []string `json:"subcategoryIds"`
	ButtonSubcategoryIDs []string `json:"buttonSubcategoryIds"`
}

// ProductListConfig configures product-backed sections (newArrivals,
// topSelling, productTabs, productCarousel).
type ProductListConfig struct {
	CategoryID string `json:"categoryId"`
	Limit      int    `json:"limit"`
	Filter     string `json:"filter"`
}

// BrandEntry is one brand configured inline on a brandSection. BrandID is
// filled in when the entry matches a store brand by name or alt spelling.
type BrandEntry struct {
	BrandID      string  `json:"brandId,omitempty"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"imageUrl"`
	Link         string  `json:"link"`
	Discount     float64 `json:"discount"`
	DiscountText string  `json:"discountText"`
	Order        int     `json:"order"`
}

// BrandSectionConfig configures a brandSection. Brands live inside the
// section's own config rather than a separate store.
type BrandSectionConfig struct {
	Brands []BrandEntry `json:"brands"`
}

// SocialLink is one normalized social media link on a newsletterSocial
// section.
type SocialLink struct {
	Platform  string `json:"platform"`
	URL       string `json:"url"`
	IconClass string `json:"iconClass"`
}

// NewsletterConfig configures a newsletterSocial section. SocialLinks is kept
// raw because admin input arrives in two shapes; use NormalizedSocialLinks.
type NewsletterConfig struct {
	BackgroundColor string          `json:"backgroundColor"`
	TextColor       string          `json:"textColor"`
	SocialLinks     json.RawMessage `json:"socialLinks"`
}

var defaultSocialLinks = []SocialLink{
	{Platform: "facebook", URL: "#", IconClass: "fa-brands fa-facebook-f"},
	{Platform: "instagram", URL: "#", IconClass: "fa-brands fa-instagram"},
}

// NormalizedSocialLinks returns the section's social links in canonical form.
// Accepted input shapes: an array of link objects (passed through), an object
// keyed by platform name (entries synthesized), or absent (two hardcoded
// defaults).
func (c NewsletterConfig) NormalizedSocialLinks() []SocialLink {
	if len(c.SocialLinks) == 0 {
		return defaultSocialLinks
	}

	var asList []SocialLink
	if err := json.Unmarshal(c.SocialLinks, &asList); err == nil {
		if len(asList) == 0 {
			return defaultSocialLinks
		}
		return asList
	}

	var asMap map[string]string
	if err := json.Unmarshal(c.SocialLinks, &asMap); err == nil {
		var out []SocialLink
		for _, platform := range []string{"facebook", "instagram"} {
			if url, ok := asMap[platform]; ok && url != "" {
				out = append(out, SocialLink{
					Platform:  platform,
					URL:       url,
					IconClass: "fa-brands fa-" + platformIcon(platform),
				})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return defaultSocialLinks
}

func platformIcon(platform string) string {
	if platform == "facebook" {
		return "facebook-f"
	}
	return platform
}

// DiscountLabel derives the display label for a brand entry with priority:
// explicit discount text, then a computed percentage, then a generic offer.
func (b BrandEntry) DiscountLabel() string {
	if b.DiscountText != "" {
		return b.DiscountText
	}
	if b.Discount > 0 {
		return formatDiscount(b.Discount)
	}
	return "Special Offer"
}

func formatDiscount(discount float64) string {
	return "Flat " + strconv.FormatFloat(discount, 'f', -1, 64) + "% OFF"
}
