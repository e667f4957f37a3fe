package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/pkg/database"
	apperrors "github.com/dwatson/storefront/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var sectionCols = []string{
	"id", "name", "type", "title", "subtitle", "description", "config", "ordering",
	"is_active", "is_published", "display_desktop", "display_tablet", "display_mobile",
	"created_at", "updated_at",
}

func sampleSection() domain.Section {
	return domain.Section{
		ID:          "sec-1",
		Name:        "hero-main",
		Type:        domain.SectionTypeHeroSlider,
		Title:       "Hero",
		Subtitle:    "",
		Description: "",
		Config:      json.RawMessage(`{"sliderIds":["sl-1"]}`),
		Ordering:    1,
		IsActive:    true,
		IsPublished: true,
		DisplayOn:   domain.DisplayOn{Desktop: true, Tablet: true, Mobile: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sectionRow(s domain.Section) []any {
	return []any{
		s.ID, s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
		s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
		s.CreatedAt, s.UpdatedAt,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SectionRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestSectionRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectExec("INSERT INTO homepage_sections").
		WithArgs(
			s.ID, s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
			s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
			s.CreatedAt, s.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Create_DuplicateName(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectExec("INSERT INTO homepage_sections").
		WithArgs(
			s.ID, s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
			s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
			s.CreatedAt, s.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectQuery("SELECT .+ FROM homepage_sections WHERE id").
		WithArgs(s.ID).
		WillReturnRows(
			pgxmock.NewRows(sectionCols).AddRow(sectionRow(s)...),
		)

	result, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, result.ID)
	assert.Equal(t, s.Name, result.Name)
	assert.Equal(t, s.Type, result.Type)
	assert.Equal(t, s.Config, result.Config)
	assert.True(t, result.DisplayOn.Mobile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM homepage_sections WHERE id").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_GetByName_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectQuery("SELECT .+ FROM homepage_sections WHERE name").
		WithArgs(s.Name).
		WillReturnRows(
			pgxmock.NewRows(sectionCols).AddRow(sectionRow(s)...),
		)

	result, err := repo.GetByName(context.Background(), s.Name)
	require.NoError(t, err)
	assert.Equal(t, s.ID, result.ID)
	assert.Equal(t, s.Name, result.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_List_NoFilter(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s1 := sampleSection()
	s2 := sampleSection()
	s2.ID = "sec-2"
	s2.Name = "announcement"
	s2.Type = domain.SectionTypeScrollingText
	s2.Ordering = 2

	mock.ExpectQuery("SELECT .+ FROM homepage_sections").
		WillReturnRows(
			pgxmock.NewRows(sectionCols).
				AddRow(sectionRow(s1)...).
				AddRow(sectionRow(s2)...),
		)

	sections, err := repo.List(context.Background(), domain.SectionFilter{})
	require.NoError(t, err)
	assert.Len(t, sections, 2)
	assert.Equal(t, s1.ID, sections[0].ID)
	assert.Equal(t, s2.ID, sections[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_List_WithFilters(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	filter := domain.SectionFilter{
		Type:     strPtr(domain.SectionTypeHeroSlider),
		IsActive: boolPtr(true),
	}

	// type=$1, is_active=$2
	mock.ExpectQuery("SELECT .+ FROM homepage_sections").
		WithArgs(domain.SectionTypeHeroSlider, true).
		WillReturnRows(
			pgxmock.NewRows(sectionCols).AddRow(sectionRow(s)...),
		)

	sections, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM homepage_sections").
		WillReturnRows(pgxmock.NewRows(sectionCols))

	sections, err := repo.List(context.Background(), domain.SectionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []*domain.Section{}, sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_ListRenderable_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectQuery("SELECT .+ FROM homepage_sections\\s+WHERE is_active = TRUE AND is_published = TRUE").
		WillReturnRows(
			pgxmock.NewRows(sectionCols).AddRow(sectionRow(s)...),
		)

	sections, err := repo.ListRenderable(context.Background())
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.True(t, sections[0].Renderable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_MaxOrdering_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(7))

	max, err := repo.MaxOrdering(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_MaxOrdering_EmptyStore(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0))

	max, err := repo.MaxOrdering(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectExec("UPDATE homepage_sections").
		WithArgs(
			s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
			s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
			pgxmock.AnyArg(), // updated_at is set inside Update
			s.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	s.ID = "nonexistent-id"
	mock.ExpectExec("UPDATE homepage_sections").
		WithArgs(
			s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
			s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
			pgxmock.AnyArg(),
			s.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Update_DuplicateName(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	s := sampleSection()
	mock.ExpectExec("UPDATE homepage_sections").
		WithArgs(
			s.Name, s.Type, s.Title, s.Subtitle, s.Description, s.Config, s.Ordering,
			s.IsActive, s.IsPublished, s.DisplayOn.Desktop, s.DisplayOn.Tablet, s.DisplayOn.Mobile,
			pgxmock.AnyArg(),
			s.ID,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Update(context.Background(), &s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_UpdateOrdering_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectExec("UPDATE homepage_sections SET ordering").
		WithArgs(5, pgxmock.AnyArg(), "sec-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateOrdering(context.Background(), "sec-1", 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_UpdateOrdering_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectExec("UPDATE homepage_sections SET ordering").
		WithArgs(5, pgxmock.AnyArg(), "missing-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateOrdering(context.Background(), "missing-id", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Delete_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectExec("DELETE FROM homepage_sections WHERE").
		WithArgs("sec-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "sec-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSectionRepository(mock)

	mock.ExpectExec("DELETE FROM homepage_sections WHERE").
		WithArgs("missing-id").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
