package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// PostgresAgencyRepository implements AgencyRepository using PostgreSQL
type PostgresAgencyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAgencyRepository creates a new PostgresAgencyRepository
func NewPostgresAgencyRepository(pool *pgxpool.Pool) *PostgresAgencyRepository {
	return &PostgresAgencyRepository{pool: pool}
}

const agencyColumns = `id, name, slug, owner_id, COALESCE(logo_url, '') as logo_url,
	       COALESCE(primary_color, '') as primary_color, COALESCE(settings, '{}'::jsonb) as settings,
	       is_active, has_immo_module, has_locative_module, created_at, updated_at, deleted_at`

// Create creates a new agency
func (r *PostgresAgencyRepository) Create(ctx context.Context, agency *domain.Agency) error {
	query := `
		INSERT INTO agencies (id, name, slug, owner_id, logo_url, primary_color, settings,
		                      is_active, has_immo_module, has_locative_module, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		agency.ID,
		agency.Name,
		agency.Slug,
		agency.OwnerID,
		nullStringOrValue(agency.LogoURL),
		nullStringOrValue(agency.PrimaryColor),
		agency.Settings,
		agency.IsActive,
		agency.HasImmoModule,
		agency.HasLocativeModule,
		agency.CreatedAt,
		agency.UpdatedAt,
	)
	return err
}

// GetByID retrieves an agency by ID
func (r *PostgresAgencyRepository) GetByID(ctx context.Context, id string) (*domain.Agency, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM agencies
		WHERE id = $1 AND deleted_at IS NULL
	`, agencyColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves an agency by slug
func (r *PostgresAgencyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Agency, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM agencies
		WHERE slug = $1 AND deleted_at IS NULL
	`, agencyColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, slug))
}

func (r *PostgresAgencyRepository) scanOne(row pgx.Row) (*domain.Agency, error) {
	agency := &domain.Agency{}
	err := row.Scan(
		&agency.ID,
		&agency.Name,
		&agency.Slug,
		&agency.OwnerID,
		&agency.LogoURL,
		&agency.PrimaryColor,
		&agency.Settings,
		&agency.IsActive,
		&agency.HasImmoModule,
		&agency.HasLocativeModule,
		&agency.CreatedAt,
		&agency.UpdatedAt,
		&agency.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agency, nil
}

// List retrieves agencies with pagination and filters
func (r *PostgresAgencyRepository) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Agency, int, error) {
	// Build WHERE clause
	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if isActive != nil {
		whereClause += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *isActive)
		argIndex++
	}

	if search != "" {
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	// Count total records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM agencies %s", whereClause)
	var totalCount int
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	// Get paginated records
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM agencies
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, agencyColumns, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	agencies := make([]*domain.Agency, 0)
	for rows.Next() {
		agency := &domain.Agency{}
		err := rows.Scan(
			&agency.ID,
			&agency.Name,
			&agency.Slug,
			&agency.OwnerID,
			&agency.LogoURL,
			&agency.PrimaryColor,
			&agency.Settings,
			&agency.IsActive,
			&agency.HasImmoModule,
			&agency.HasLocativeModule,
			&agency.CreatedAt,
			&agency.UpdatedAt,
			&agency.DeletedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		agencies = append(agencies, agency)
	}

	return agencies, totalCount, nil
}

// Update updates an agency. The slug is immutable and never written.
func (r *PostgresAgencyRepository) Update(ctx context.Context, agency *domain.Agency) error {
	query := `
		UPDATE agencies
		SET name = $2, logo_url = $3, primary_color = $4, settings = $5, is_active = $6,
		    has_immo_module = $7, has_locative_module = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`
	agency.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		agency.ID,
		agency.Name,
		nullStringOrValue(agency.LogoURL),
		nullStringOrValue(agency.PrimaryColor),
		agency.Settings,
		agency.IsActive,
		agency.HasImmoModule,
		agency.HasLocativeModule,
		agency.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("agency not found or already deleted")
	}

	return nil
}

// SoftDelete soft deletes an agency by setting deleted_at timestamp
func (r *PostgresAgencyRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE agencies
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("agency not found or already deleted")
	}

	return nil
}

// ExistsBySlug checks if an agency exists with the given slug
func (r *PostgresAgencyRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM agencies WHERE slug = $1 AND deleted_at IS NULL)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, slug).Scan(&exists)
	return exists, err
}

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
