package repository

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const subcategoryColumns = `id, category_id, name, description, active, created_at, updated_at`

type subcategoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubcategoryRepository creates a new PostgreSQL-backed subcategory repository.
func NewSubcategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubcategoryRepository {
	return &subcategoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "subcategory").Logger(),
	}
}

func scanSubcategory(row pgx.Row) (*model.Subcategory, error) {
	var s model.Subcategory
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subcategoryRepository) Create(ctx context.Context, tx pgx.Tx, subcategory *model.Subcategory) error {
	query := `
		INSERT INTO subcategories (id, category_id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		subcategory.ID, subcategory.CategoryID, subcategory.Name, subcategory.Description,
		subcategory.Active, subcategory.CreatedAt, subcategory.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("subcategory_id", subcategory.ID.String()).
			Str("category_id", subcategory.CategoryID.String()).
			Msg("failed to create subcategory")
		return StoreError(err, "failed to create subcategory")
	}

	return nil
}

func (r *subcategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subcategory, error) {
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id = $1`

	subcategory, err := scanSubcategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("subcategory_id", id.String()).Msg("failed to query subcategory")
		return nil, StoreError(err, "failed to query subcategory")
	}

	return subcategory, nil
}

func (r *subcategoryRepository) GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode LockMode) (*model.Subcategory, error) {
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id = $1 ` + mode.clause()

	subcategory, err := scanSubcategory(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("subcategory_id", id.String()).Msg("failed to lock subcategory")
		return nil, StoreError(err, "failed to lock subcategory")
	}

	return subcategory, nil
}

func (r *subcategoryRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	query := `
		UPDATE subcategories
		SET active = $2, updated_at = NOW()
		WHERE id = $1 AND active <> $2
	`

	tag, err := tx.Exec(ctx, query, id, active)
	if err != nil {
		r.logger.Error().Err(err).Str("subcategory_id", id.String()).Msg("failed to update subcategory")
		return false, StoreError(err, "failed to update subcategory")
	}

	return tag.RowsAffected() > 0, nil
}

// DeactivateByCategory deactivates every active subcategory of a category.
func (r *subcategoryRepository) DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error) {
	query := `
		UPDATE subcategories
		SET active = FALSE, updated_at = NOW()
		WHERE category_id = $1 AND active
	`

	tag, err := tx.Exec(ctx, query, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to deactivate subcategories")
		return 0, StoreError(err, "failed to deactivate subcategories")
	}

	r.logger.Debug().
		Str("category_id", categoryID.String()).
		Int64("affected", tag.RowsAffected()).
		Msg("subcategories deactivated")

	return int(tag.RowsAffected()), nil
}

func (r *subcategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE subcategory_id = $1`, id).Scan(&n)
	if err != nil {
		r.logger.Error().Err(err).Str("subcategory_id", id.String()).Msg("failed to count products")
		return 0, StoreError(err, "failed to count products")
	}
	return n, nil
}
