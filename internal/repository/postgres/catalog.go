package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/pkg/database"
)

// CatalogRepository implements domain.CatalogRepository using PostgreSQL. It
// only exposes the read-side list queries the homepage needs; catalog writes
// belong to another system.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// productConditions builds the dynamic WHERE conditions shared by the list
// and count queries.
func productConditions(filter domain.ProductFilter) ([]string, []any) {
	conditions := []string{"p.is_active = TRUE"}
	var args []any
	argIndex := 1

	if filter.IsNewArrival != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_new_arrival = $%d", argIndex))
		args = append(args, *filter.IsNewArrival)
		argIndex++
	}
	if filter.IsTopSelling != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_top_selling = $%d", argIndex))
		args = append(args, *filter.IsTopSelling)
		argIndex++
	}
	if filter.IsTrending != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_trending = $%d", argIndex))
		args = append(args, *filter.IsTrending)
		argIndex++
	}
	if filter.IsFeatured != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", argIndex))
		args = append(args, *filter.IsFeatured)
		argIndex++
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
	}

	return conditions, args
}

// ListProducts returns active products matching the filter.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) (products []*domain.Product, err error) {
	conditions, args := productConditions(filter)
	argIndex := len(args) + 1

	limitClause := ""
	if filter.Limit > 0 {
		limitClause = fmt.Sprintf("LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		limitClause += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.price, p.discount, p.stock, p.image,
		       u.id, u.url,
		       p.category_id, p.department_id, p.is_active,
		       p.is_new_arrival, p.is_top_selling, p.is_trending, p.is_featured,
		       p.created_at
		FROM products p
		LEFT JOIN uploads u ON u.id = p.image_upload_id
		WHERE %s
		ORDER BY p.created_at DESC
		%s`,
		strings.Join(conditions, " AND "), limitClause,
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []*domain.Product{}
	for rows.Next() {
		var (
			p                   domain.Product
			uploadID, uploadURL *string
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Discount, &p.Stock, &p.Image,
			&uploadID, &uploadURL,
			&p.CategoryID, &p.DepartmentID, &p.IsActive,
			&p.IsNewArrival, &p.IsTopSelling, &p.IsTrending, &p.IsFeatured,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.ImageUpload = upload(uploadID, uploadURL)
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// CountProducts returns the number of active products matching the filter,
// ignoring limit and offset.
func (r *CatalogRepository) CountProducts(ctx context.Context, filter domain.ProductFilter) (int, error) {
	conditions, args := productConditions(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM products p WHERE %s`,
		strings.Join(conditions, " AND "))

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// ListCategories returns active categories in default query order. limit <= 0
// means no limit.
func (r *CatalogRepository) ListCategories(ctx context.Context, limit int) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.image, u.id, u.url, c.department_id, c.is_active
		FROM categories c
		LEFT JOIN uploads u ON u.id = c.image_upload_id
		WHERE c.is_active = TRUE
		ORDER BY c.sort_order ASC, c.name ASC`

	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		var (
			c                   domain.Category
			uploadID, uploadURL *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &uploadID, &uploadURL, &c.DepartmentID, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		c.ImageUpload = upload(uploadID, uploadURL)
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// ListSubcategories returns active subcategories.
func (r *CatalogRepository) ListSubcategories(ctx context.Context) ([]*domain.Subcategory, error) {
	query := `
		SELECT s.id, s.name, s.image, u.id, u.url, s.category_id, s.is_active
		FROM subcategories s
		LEFT JOIN uploads u ON u.id = s.image_upload_id
		WHERE s.is_active = TRUE
		ORDER BY s.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	subcategories := []*domain.Subcategory{}
	for rows.Next() {
		var (
			s                   domain.Subcategory
			uploadID, uploadURL *string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &uploadID, &uploadURL, &s.CategoryID, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan subcategory row: %w", err)
		}
		s.ImageUpload = upload(uploadID, uploadURL)
		subcategories = append(subcategories, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategory rows: %w", err)
	}

	return subcategories, nil
}

// ListDepartments returns active departments.
func (r *CatalogRepository) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	query := `
		SELECT id, name, image, is_active
		FROM departments
		WHERE is_active = TRUE
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	departments := []*domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Image, &d.IsActive); err != nil {
			return nil, fmt.Errorf("scan department row: %w", err)
		}
		departments = append(departments, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate department rows: %w", err)
	}

	return departments, nil
}

// ListBrands returns active brands.
func (r *CatalogRepository) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	query := `
		SELECT id, name, alt, image_url, is_active
		FROM brands
		WHERE is_active = TRUE
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Alt, &b.ImageURL, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan brand row: %w", err)
		}
		brands = append(brands, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand rows: %w", err)
	}

	return brands, nil
}

// ListSliders returns active sliders ordered by sort order.
func (r *CatalogRepository) ListSliders(ctx context.Context) ([]*domain.Slider, error) {
	query := `
		SELECT s.id, s.title, s.description, s.image,
		       du.id, du.url, mu.id, mu.url,
		       s.button_text, s.link, s.is_active, s.sort_order
		FROM sliders s
		LEFT JOIN uploads du ON du.id = s.image_upload_id
		LEFT JOIN uploads mu ON mu.id = s.image_mobile_upload_id
		WHERE s.is_active = TRUE
		ORDER BY s.sort_order ASC, s.title ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sliders: %w", err)
	}
	defer rows.Close()

	sliders := []*domain.Slider{}
	for rows.Next() {
		var (
			s                     domain.Slider
			desktopID, desktopURL *string
			mobileID, mobileURL   *string
		)
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Image,
			&desktopID, &desktopURL, &mobileID, &mobileURL,
			&s.ButtonText, &s.Link, &s.IsActive, &s.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("scan slider row: %w", err)
		}
		s.ImageUpload = upload(desktopID, desktopURL)
		s.ImageMobileUpload = upload(mobileID, mobileURL)
		sliders = append(sliders, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slider rows: %w", err)
	}

	return sliders, nil
}

// upload builds an Upload from nullable join columns.
func upload(id, url *string) *domain.Upload {
	if id == nil && url == nil {
		return nil
	}
	u := &domain.Upload{}
	if id != nil {
		u.ID = *id
	}
	if url != nil {
		u.URL = *url
	}
	return u
}
