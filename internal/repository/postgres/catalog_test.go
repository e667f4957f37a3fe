package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwatson/storefront/internal/domain"
)

// ─── Catalog column definitions ─────────────────────────────────────────────

var productCols = []string{
	"id", "name", "price", "discount", "stock", "image",
	"upload_id", "upload_url",
	"category_id", "department_id", "is_active",
	"is_new_arrival", "is_top_selling", "is_trending", "is_featured",
	"created_at",
}

func sampleCatalogProduct() domain.Product {
	return domain.Product{
		ID:           "prod-1",
		Name:         "Vitamin C Serum",
		Price:        24.99,
		Discount:     10,
		Stock:        42,
		Image:        "/uploads/serum.jpg",
		CategoryID:   strPtr("cat-1"),
		DepartmentID: strPtr("dep-1"),
		IsActive:     true,
		IsNewArrival: true,
		CreatedAt:    now,
	}
}

func catalogProductRow(p domain.Product) []any {
	var uploadID, uploadURL *string
	if p.ImageUpload != nil {
		uploadID = strPtr(p.ImageUpload.ID)
		uploadURL = strPtr(p.ImageUpload.URL)
	}
	return []any{
		p.ID, p.Name, p.Price, p.Discount, p.Stock, p.Image,
		uploadID, uploadURL,
		p.CategoryID, p.DepartmentID, p.IsActive,
		p.IsNewArrival, p.IsTopSelling, p.IsTrending, p.IsFeatured,
		p.CreatedAt,
	}
}

var categoryCols = []string{
	"id", "name", "image", "upload_id", "upload_url", "department_id", "is_active",
}

func categoryRow(c domain.Category) []any {
	var uploadID, uploadURL *string
	if c.ImageUpload != nil {
		uploadID = strPtr(c.ImageUpload.ID)
		uploadURL = strPtr(c.ImageUpload.URL)
	}
	return []any{c.ID, c.Name, c.Image, uploadID, uploadURL, c.DepartmentID, c.IsActive}
}

var sliderCols = []string{
	"id", "title", "description", "image",
	"desktop_upload_id", "desktop_upload_url", "mobile_upload_id", "mobile_upload_url",
	"button_text", "link", "is_active", "sort_order",
}

// ─────────────────────────────────────────────────────────────────────────────
// CatalogRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestCatalogRepository_ListProducts_NoFilter(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	p := sampleCatalogProduct()
	mock.ExpectQuery("SELECT .+ FROM products p").
		WillReturnRows(
			pgxmock.NewRows(productCols).AddRow(catalogProductRow(p)...),
		)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)
	assert.Nil(t, products[0].ImageUpload)
	assert.Equal(t, "/uploads/serum.jpg", products[0].ImageURL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListProducts_WithFilters(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	p := sampleCatalogProduct()
	filter := domain.ProductFilter{
		IsTopSelling: boolPtr(true),
		CategoryID:   strPtr("cat-1"),
		Limit:        10,
	}

	// is_top_selling=$1, category_id=$2, LIMIT $3
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(true, "cat-1", 10).
		WillReturnRows(
			pgxmock.NewRows(productCols).AddRow(catalogProductRow(p)...),
		)

	products, err := repo.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListProducts_Paged(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	p := sampleCatalogProduct()
	filter := domain.ProductFilter{Limit: 20, Offset: 40}

	// LIMIT $1 OFFSET $2
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(20, 40).
		WillReturnRows(
			pgxmock.NewRows(productCols).AddRow(catalogProductRow(p)...),
		)

	products, err := repo.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_CountProducts(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	filter := domain.ProductFilter{IsFeatured: boolPtr(true), Limit: 20, Offset: 40}

	// Limit and offset must not leak into the count query.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p`).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(57))

	total, err := repo.CountProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 57, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListProducts_UploadPreferred(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	p := sampleCatalogProduct()
	p.ImageUpload = &domain.Upload{ID: "up-1", URL: "https://cdn.example.com/serum.jpg"}

	mock.ExpectQuery("SELECT .+ FROM products p").
		WillReturnRows(
			pgxmock.NewRows(productCols).AddRow(catalogProductRow(p)...),
		)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].ImageUpload)
	assert.Equal(t, "https://cdn.example.com/serum.jpg", products[0].ImageURL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListProducts_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products p").
		WillReturnError(errors.New("connection refused"))

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{})
	assert.Nil(t, products)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListCategories_WithLimit(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	c1 := domain.Category{ID: "cat-1", Name: "Skincare", Image: "/uploads/skin.jpg", IsActive: true}
	c2 := domain.Category{ID: "cat-2", Name: "Vitamins", Image: "/uploads/vit.jpg", IsActive: true}

	mock.ExpectQuery("SELECT .+ FROM categories c").
		WithArgs(8).
		WillReturnRows(
			pgxmock.NewRows(categoryCols).
				AddRow(categoryRow(c1)...).
				AddRow(categoryRow(c2)...),
		)

	categories, err := repo.ListCategories(context.Background(), 8)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, c1.ID, categories[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListCategories_NoLimit(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories c").
		WillReturnRows(pgxmock.NewRows(categoryCols))

	categories, err := repo.ListCategories(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Category{}, categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListSubcategories_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	subCols := []string{"id", "name", "image", "upload_id", "upload_url", "category_id", "is_active"}
	mock.ExpectQuery("SELECT .+ FROM subcategories s").
		WillReturnRows(
			pgxmock.NewRows(subCols).
				AddRow("sub-1", "Face Wash", "/uploads/wash.jpg", nil, nil, strPtr("cat-1"), true),
		)

	subcategories, err := repo.ListSubcategories(context.Background())
	require.NoError(t, err)
	require.Len(t, subcategories, 1)
	assert.Equal(t, "sub-1", subcategories[0].ID)
	assert.Equal(t, "/uploads/wash.jpg", subcategories[0].ImageURL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListDepartments_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	depCols := []string{"id", "name", "image", "is_active"}
	mock.ExpectQuery("SELECT .+ FROM departments").
		WillReturnRows(
			pgxmock.NewRows(depCols).
				AddRow("dep-1", "Pharmacy", "/uploads/pharmacy.jpg", true).
				AddRow("dep-2", "Wellness", "/uploads/wellness.jpg", true),
		)

	departments, err := repo.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Len(t, departments, 2)
	assert.Equal(t, "dep-1", departments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListBrands_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	brCols := []string{"id", "name", "alt", "image_url", "is_active"}
	mock.ExpectQuery("SELECT .+ FROM brands").
		WillReturnRows(
			pgxmock.NewRows(brCols).
				AddRow("br-1", "Acme Health", "acme", "https://cdn.example.com/acme.png", true),
		)

	brands, err := repo.ListBrands(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme Health", brands[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListSliders_UploadFallback(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM sliders s").
		WillReturnRows(
			pgxmock.NewRows(sliderCols).
				AddRow("sl-1", "Summer Sale", "Big savings", "",
					strPtr("up-1"), strPtr("https://cdn.example.com/hero.jpg"), nil, nil,
					"Shop Now", "/sale", true, 1).
				AddRow("sl-2", "New Season", "", "/uploads/season.jpg",
					nil, nil, nil, nil,
					"", "", true, 2).
				AddRow("sl-3", "Mobile Only", "", "",
					nil, nil, strPtr("up-2"), strPtr("https://cdn.example.com/mobile.jpg"),
					"", "", true, 3),
		)

	sliders, err := repo.ListSliders(context.Background())
	require.NoError(t, err)
	require.Len(t, sliders, 3)
	assert.Equal(t, "https://cdn.example.com/hero.jpg", sliders[0].ImageURL())
	assert.Equal(t, "/uploads/season.jpg", sliders[1].ImageURL())
	assert.Equal(t, "https://cdn.example.com/mobile.jpg", sliders[2].ImageURL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListSliders_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM sliders s").
		WillReturnRows(pgxmock.NewRows(sliderCols))

	sliders, err := repo.ListSliders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*domain.Slider{}, sliders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
