package domain

import (
	"context"
	"time"
)

// Upload is a stored media asset referenced by catalog entities.
type Upload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Product represents a catalog product as consumed by the homepage resolvers.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Discount     float64   `json:"discount"`
	Stock        int       `json:"stock"`
	Image        string    `json:"image"`
	ImageUpload  *Upload   `json:"image_upload,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	DepartmentID *string   `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsNewArrival bool      `json:"is_new_arrival"`
	IsTopSelling bool      `json:"is_top_selling"`
	IsTrending   bool      `json:"is_trending"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImageURL returns the product image, preferring the upload reference.
func (p *Product) ImageURL() string {
	if p.ImageUpload != nil && p.ImageUpload.URL != "" {
		return p.ImageUpload.URL
	}
	return p.Image
}

// Category represents a product category.
type Category struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	ImageUpload  *Upload `json:"image_upload,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	IsActive     bool    `json:"is_active"`
}

// ImageURL returns the category image, preferring the upload reference.
func (c *Category) ImageURL() string {
	if c.ImageUpload != nil && c.ImageUpload.URL != "" {
		return c.ImageUpload.URL
	}
	return c.Image
}

// Subcategory represents a category subdivision rendered as a collection link.
type Subcategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	ImageUpload *Upload `json:"image_upload,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// ImageURL returns the subcategory image, preferring the upload reference.
func (s *Subcategory) ImageURL() string {
	if s.ImageUpload != nil && s.ImageUpload.URL != "" {
		return s.ImageUpload.URL
	}
	return s.Image
}

// Department represents a top-level catalog department.
type Department struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	IsActive bool   `json:"is_active"`
}

// Brand represents a catalog brand. Alt holds an alternate spelling used for
// matching admin-entered brand names against the store.
type Brand struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Alt      string `json:"alt,omitempty"`
	ImageURL string `json:"image_url"`
	IsActive bool   `json:"is_active"`
}

// Slider represents a hero slider slide.
type Slider struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Image             string  `json:"image"`
	ImageUpload       *Upload `json:"image_upload,omitempty"`
	ImageMobileUpload *Upload `json:"image_mobile_upload,omitempty"`
	ButtonText        string  `json:"button_text"`
	Link              string  `json:"link"`
	IsActive          bool    `json:"is_active"`
	SortOrder         int     `json:"sort_order"`
}

// ImageURL returns the slide image through the fallback chain: desktop upload
// reference, then the direct field, then the mobile upload reference.
func (s *Slider) ImageURL() string {
	if s.ImageUpload != nil && s.ImageUpload.URL != "" {
		return s.ImageUpload.URL
	}
	if s.Image != "" {
		return s.Image
	}
	if s.ImageMobileUpload != nil && s.ImageMobileUpload.URL != "" {
		return s.ImageMobileUpload.URL
	}
	return ""
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	IsNewArrival *bool
	IsTopSelling *bool
	IsTrending   *bool
	IsFeatured   *bool
	CategoryID   *string
	Limit        int
	Offset       int
}

// CatalogRepository provides the read-only list queries homepage resolvers
// need. All methods return active records only unless the filter says
// otherwise.
type CatalogRepository interface {
	// ListProducts retrieves active products matching the filter.
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)

	// CountProducts returns the number of active products matching the
	// filter, ignoring limit and offset.
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)

	// ListCategories retrieves active categories in default query order.
	// limit <= 0 means no limit.
	ListCategories(ctx context.Context, limit int) ([]*Category, error)

	// ListSubcategories retrieves active subcategories.
	ListSubcategories(ctx context.Context) ([]*Subcategory, error)

	// ListDepartments retrieves active departments.
	ListDepartments(ctx context.Context) ([]*Department, error)

	// ListBrands retrieves active brands.
	ListBrands(ctx context.Context) ([]*Brand, error)

	// ListSliders retrieves active sliders ordered by sort order.
	ListSliders(ctx context.Context) ([]*Slider, error)
}
