package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/internal/homepage"
	apperrors "github.com/dwatson/storefront/pkg/errors"
)

func newTestDataService(repo *mockSectionRepository, catalog *mockCatalogRepository) *SectionDataService {
	return NewSectionDataService(repo, catalog, newTestLogger())
}

func publishedSection(typ string, config string) *domain.Section {
	return &domain.Section{
		ID:          "sec-1",
		Name:        "section",
		Type:        typ,
		IsActive:    true,
		IsPublished: true,
		Config:      json.RawMessage(config),
	}
}

// --- Public data ---

func TestGetPublicSectionData_UnpublishedForbidden(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeTopSelling, `{}`)
	section.IsPublished = false
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestGetPublicSectionData_InactiveForbidden(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeNewArrivals, `{}`)
	section.IsActive = false
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGetPublicSectionData_TopSellingLimitAndCategory(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeTopSelling, `{"categoryId":"cat-1","limit":50}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IsTopSelling != nil && *f.IsTopSelling &&
			f.Limit == 10 && // the public limit beats the configured one
			f.CategoryID != nil && *f.CategoryID == "cat-1"
	})).Return([]*domain.Product{{ID: "prod-1"}}, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, section, data.Section)
	assert.Len(t, data.Items.([]*domain.Product), 1)
	catalog.AssertExpectations(t)
}

func TestGetPublicSectionData_NewArrivalsIgnoresCategory(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeNewArrivals, `{"categoryId":"cat-1"}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IsNewArrival != nil && *f.IsNewArrival && f.CategoryID == nil &&
			f.Limit == defaultNewArrivalLimit
	})).Return([]*domain.Product{}, nil)

	_, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestGetPublicSectionData_FeaturedCollectionsServesSubcategories(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeFeaturedCollections, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSubcategories", mock.Anything).Return([]*domain.Subcategory{
		{ID: "sub-1", Name: "Vitamins"},
	}, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Len(t, data.Items.([]*domain.Subcategory), 1)
	catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestGetPublicSectionData_SubcategoryGridConfiguredIDs(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeSubcategoryGrid, `{
		"subcategoryIds":["sub-3","sub-9","sub-1"],
		"buttonSubcategoryIds":["sub-2","sub-1"]
	}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSubcategories", mock.Anything).Return([]*domain.Subcategory{
		{ID: "sub-1", Name: "Baby"},
		{ID: "sub-2", Name: "Vitamins"},
		{ID: "sub-3", Name: "Wellness"},
	}, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)

	grid := data.Items.(*SubcategoryGridData)
	// Grid keeps configured order, skipping unknown ids.
	require.Len(t, grid.GridSubcategories, 2)
	assert.Equal(t, "sub-3", grid.GridSubcategories[0].ID)
	assert.Equal(t, "sub-1", grid.GridSubcategories[1].ID)
	// Button strip keeps store name order, not configured order.
	require.Len(t, grid.ButtonSubcategories, 2)
	assert.Equal(t, "sub-1", grid.ButtonSubcategories[0].ID)
	assert.Equal(t, "sub-2", grid.ButtonSubcategories[1].ID)
}

func TestGetPublicSectionData_SubcategoryGridDefaults(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	all := make([]*domain.Subcategory, 0, defaultButtonStripCount+5)
	for i := 0; i < defaultButtonStripCount+5; i++ {
		all = append(all, &domain.Subcategory{ID: fmt.Sprintf("sub-%02d", i)})
	}

	section := publishedSection(domain.SectionTypeSubcategoryGrid, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSubcategories", mock.Anything).Return(all, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)

	grid := data.Items.(*SubcategoryGridData)
	assert.Empty(t, grid.GridSubcategories)
	assert.Len(t, grid.ButtonSubcategories, defaultButtonStripCount)
}

func TestGetPublicSectionData_SubcategoryGridCapsSix(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	var all []*domain.Subcategory
	ids := ""
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("sub-%d", i)
		all = append(all, &domain.Subcategory{ID: id})
		if i > 0 {
			ids += ","
		}
		ids += fmt.Sprintf("%q", id)
	}

	section := publishedSection(domain.SectionTypeSubcategoryGrid, `{"subcategoryIds":[`+ids+`]}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSubcategories", mock.Anything).Return(all, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Len(t, data.Items.(*SubcategoryGridData).GridSubcategories, maxGridSubcategories)
}

func TestGetPublicSectionData_UnsupportedType(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeScrollingText, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	data, err := svc.GetPublicSectionData(context.Background(), "sec-1")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetPublicSectionData_NotFound(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	repo.On("GetByID", mock.Anything, "missing-id").Return(nil, apperrors.ErrNotFound)

	data, err := svc.GetPublicSectionData(context.Background(), "missing-id")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Admin data ---

func TestGetAdminSectionData_ServesUnpublished(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeDepartmentGrid, `{}`)
	section.IsPublished = false
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListDepartments", mock.Anything).Return([]*domain.Department{{ID: "dep-1"}}, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Len(t, data.Items.([]*domain.Department), 1)
}

func TestGetAdminSectionData_BannerReturnsConfig(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeBannerFullWidth, `{"imageUrl":"b.jpg","link":"/sale","sizingMode":"custom"}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)

	cfg := data.Items.(homepage.BannerConfig)
	assert.Equal(t, "b.jpg", cfg.ImageURL)
	assert.Equal(t, "/sale", cfg.Link)
	catalog.AssertExpectations(t)
}

func TestGetAdminSectionData_BannerMalformedConfig(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeBannerFullWidth, `{`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	_, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetAdminSectionData_HeroSliderConfiguredOrder(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeHeroSlider, `{"sliderIds":["sl-3","sl-1","sl-9"]}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSliders", mock.Anything).Return([]*domain.Slider{
		{ID: "sl-1", SortOrder: 1},
		{ID: "sl-2", SortOrder: 2},
		{ID: "sl-3", SortOrder: 3},
	}, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)

	sliders := data.Items.([]*domain.Slider)
	require.Len(t, sliders, 2)
	assert.Equal(t, "sl-3", sliders[0].ID)
	assert.Equal(t, "sl-1", sliders[1].ID)
}

func TestGetAdminSectionData_HeroSliderNoConfig(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeHeroSlider, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSliders", mock.Anything).Return([]*domain.Slider{
		{ID: "sl-1"}, {ID: "sl-2"},
	}, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Len(t, data.Items.([]*domain.Slider), 2)
}

func TestGetAdminSectionData_ProductTabsCategoryBeatsFilter(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeProductTabs, `{"categoryId":"cat-1","filter":"trending"}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.CategoryID != nil && *f.CategoryID == "cat-1" &&
			f.IsTrending == nil && f.Limit == 20
	})).Return([]*domain.Product{}, nil)

	_, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestGetAdminSectionData_ProductCarouselFlagFilter(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeProductCarousel, `{"filter":"newArrival","limit":6}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IsNewArrival != nil && *f.IsNewArrival && f.Limit == 6
	})).Return([]*domain.Product{}, nil)

	_, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestGetAdminSectionData_TopSellingConfigLimit(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeTopSelling, `{"limit":5}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IsTopSelling != nil && *f.IsTopSelling && f.Limit == 5
	})).Return([]*domain.Product{}, nil)

	_, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
}

func TestGetAdminSectionData_TopSellingDefaultLimit(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeTopSelling, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IsTopSelling != nil && *f.IsTopSelling && f.Limit == 20
	})).Return([]*domain.Product{}, nil)

	_, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
}

func TestGetAdminSectionData_FeaturedCollectionsServesSubcategories(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeFeaturedCollections, `{}`)
	section.IsPublished = false
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
	catalog.On("ListSubcategories", mock.Anything).Return([]*domain.Subcategory{
		{ID: "sub-1"}, {ID: "sub-2"},
	}, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Len(t, data.Items.([]*domain.Subcategory), 2)
	catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestGetAdminSectionData_CategoryTypes(t *testing.T) {
	for _, typ := range []string{
		domain.SectionTypeCategoryFeatured,
		domain.SectionTypeCategoryGrid,
		domain.SectionTypeCategoryCircles,
	} {
		t.Run(typ, func(t *testing.T) {
			repo := new(mockSectionRepository)
			catalog := new(mockCatalogRepository)
			svc := newTestDataService(repo, catalog)

			section := publishedSection(typ, `{}`)
			repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)
			catalog.On("ListCategories", mock.Anything, 0).Return([]*domain.Category{{ID: "cat-1"}}, nil)

			data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
			require.NoError(t, err)
			assert.Len(t, data.Items.([]*domain.Category), 1)
		})
	}
}

func TestGetAdminSectionData_UnsupportedType(t *testing.T) {
	repo := new(mockSectionRepository)
	catalog := new(mockCatalogRepository)
	svc := newTestDataService(repo, catalog)

	section := publishedSection(domain.SectionTypeCustomHTML, `{}`)
	repo.On("GetByID", mock.Anything, "sec-1").Return(section, nil)

	data, err := svc.GetAdminSectionData(context.Background(), "sec-1")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
