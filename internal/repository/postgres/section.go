// Package postgres provides PostgreSQL-backed implementations of the domain
// repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/pkg/database"
	apperrors "github.com/dwatson/storefront/pkg/errors"
)

const sectionColumns = `id, name, type, title, subtitle, description, config, ordering,
	is_active, is_published, display_desktop, display_tablet, display_mobile,
	created_at, updated_at`

// SectionRepository implements domain.SectionRepository using PostgreSQL.
type SectionRepository struct {
	pool database.DBTX
}

// NewSectionRepository creates a new PostgreSQL-backed section repository.
func NewSectionRepository(pool database.DBTX) *SectionRepository {
	return &SectionRepository{pool: pool}
}

// Create inserts a new section. A duplicate name maps to an already-exists
// error.
func (r *SectionRepository) Create(ctx context.Context, s *domain.Section) error {
	query := `
		INSERT INTO homepage_sections (id, name, type, title, subtitle, description, config, ordering,
			is_active, is_published, display_desktop, display_tablet, display_mobile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Type,
		s.Title,
		s.Subtitle,
		s.Description,
		s.Config,
		s.Ordering,
		s.IsActive,
		s.IsPublished,
		s.DisplayOn.Desktop,
		s.DisplayOn.Tablet,
		s.DisplayOn.Mobile,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("section", "name", s.Name)
		}
		return fmt.Errorf("insert section: %w", err)
	}

	return nil
}

// GetByID retrieves a section by its ID.
func (r *SectionRepository) GetByID(ctx context.Context, id string) (*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM homepage_sections WHERE id = $1`
	return r.scanSection(ctx, query, id)
}

// GetByName retrieves a section by its unique name.
func (r *SectionRepository) GetByName(ctx context.Context, name string) (*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM homepage_sections WHERE name = $1`
	return r.scanSection(ctx, query, name)
}

// List returns sections matching the filter, ordered by ordering then
// creation time.
func (r *SectionRepository) List(ctx context.Context, filter domain.SectionFilter) ([]*domain.Section, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.IsPublished != nil {
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", argIndex))
		args = append(args, *filter.IsPublished)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM homepage_sections
		%s
		ORDER BY ordering ASC, created_at ASC`,
		sectionColumns, whereClause,
	)

	return r.querySections(ctx, query, args...)
}

// ListRenderable returns active+published sections ordered by ordering
// ascending then creation time ascending.
func (r *SectionRepository) ListRenderable(ctx context.Context) (sections []*domain.Section, err error) {
	query := `
		SELECT ` + sectionColumns + `
		FROM homepage_sections
		WHERE is_active = TRUE AND is_published = TRUE
		ORDER BY ordering ASC, created_at ASC`

	ctx, end := database.TraceQuery(ctx, "ListRenderable", query)
	defer func() { end(err) }()

	return r.querySections(ctx, query)
}

// MaxOrdering returns the highest ordering value, or 0 for an empty store.
func (r *SectionRepository) MaxOrdering(ctx context.Context) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(ordering), 0) FROM homepage_sections`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max section ordering: %w", err)
	}
	return max, nil
}

// Update modifies an existing section.
func (r *SectionRepository) Update(ctx context.Context, s *domain.Section) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE homepage_sections
		SET name = $1, type = $2, title = $3, subtitle = $4, description = $5, config = $6,
		    ordering = $7, is_active = $8, is_published = $9,
		    display_desktop = $10, display_tablet = $11, display_mobile = $12, updated_at = $13
		WHERE id = $14`

	ct, err := r.pool.Exec(ctx, query,
		s.Name,
		s.Type,
		s.Title,
		s.Subtitle,
		s.Description,
		s.Config,
		s.Ordering,
		s.IsActive,
		s.IsPublished,
		s.DisplayOn.Desktop,
		s.DisplayOn.Tablet,
		s.DisplayOn.Mobile,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("section", "name", s.Name)
		}
		return fmt.Errorf("update section: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("section", s.ID)
	}

	return nil
}

// UpdateOrdering sets the ordering value of a single section.
func (r *SectionRepository) UpdateOrdering(ctx context.Context, id string, ordering int) error {
	query := `UPDATE homepage_sections SET ordering = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, ordering, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update section ordering: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("section", id)
	}

	return nil
}

// Delete removes a section permanently.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM homepage_sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("section", id)
	}

	return nil
}

func (r *SectionRepository) querySections(ctx context.Context, query string, args ...any) ([]*domain.Section, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := []*domain.Section{}
	for rows.Next() {
		s, err := scanSectionRow(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate section rows: %w", err)
	}

	return sections, nil
}

func (r *SectionRepository) scanSection(ctx context.Context, query string, args ...any) (*domain.Section, error) {
	var s domain.Section

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.Name,
		&s.Type,
		&s.Title,
		&s.Subtitle,
		&s.Description,
		&s.Config,
		&s.Ordering,
		&s.IsActive,
		&s.IsPublished,
		&s.DisplayOn.Desktop,
		&s.DisplayOn.Tablet,
		&s.DisplayOn.Mobile,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan section: %w", err)
	}

	return &s, nil
}

func scanSectionRow(rows pgx.Rows) (*domain.Section, error) {
	var s domain.Section

	if err := rows.Scan(
		&s.ID,
		&s.Name,
		&s.Type,
		&s.Title,
		&s.Subtitle,
		&s.Description,
		&s.Config,
		&s.Ordering,
		&s.IsActive,
		&s.IsPublished,
		&s.DisplayOn.Desktop,
		&s.DisplayOn.Tablet,
		&s.DisplayOn.Mobile,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan section row: %w", err)
	}

	return &s, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
