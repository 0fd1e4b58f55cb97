package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, name, description, active, created_at, updated_at`

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a category within the provided transaction.
func (r *categoryRepository) Create(ctx context.Context, tx pgx.Tx, category *model.Category) error {
	query := `
		INSERT INTO categories (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		category.ID, category.Name, category.Description,
		category.Active, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, model.ErrDuplicateName)
		}
		r.logger.Error().
			Err(err).
			Str("category_id", category.ID.String()).
			Msg("failed to create category")
		return StoreError(err, "failed to create category")
	}

	r.logger.Debug().
		Str("category_id", category.ID.String()).
		Msg("category created successfully")

	return nil
}

// GetByID retrieves a category by its ID.
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("category_id", id.String()).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to query category")
		return nil, StoreError(err, "failed to query category")
	}

	return category, nil
}

// GetLocked retrieves a category and takes a row lock of the given mode.
func (r *categoryRepository) GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode LockMode) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 ` + mode.clause()

	category, err := scanCategory(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to lock category")
		return nil, StoreError(err, "failed to lock category")
	}

	return category, nil
}

// List retrieves categories ordered by name.
func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ($1 = FALSE OR active)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, StoreError(err, "failed to query categories")
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, StoreError(err, "error iterating categories")
	}

	return categories, nil
}

// Update writes the name and description of a category.
func (r *categoryRepository) Update(ctx context.Context, tx pgx.Tx, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, category.ID, category.Name, category.Description, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, model.ErrDuplicateName)
		}
		r.logger.Error().Err(err).Str("category_id", category.ID.String()).Msg("failed to update category")
		return StoreError(err, "failed to update category")
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("category", category.ID)
	}

	return nil
}

// SetActive sets the active flag of a category.
func (r *categoryRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	query := `
		UPDATE categories
		SET active = $2, updated_at = NOW()
		WHERE id = $1 AND active <> $2
	`

	tag, err := tx.Exec(ctx, query, id, active)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to update category")
		return false, StoreError(err, "failed to update category")
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a category together with its subcategories and products.
func (r *categoryRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("category %s: %w", id, model.ErrProductInUse)
		}
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return false, StoreError(err, "failed to delete category")
	}

	return tag.RowsAffected() > 0, nil
}

// CountSubcategories counts the subcategories of a category.
func (r *categoryRepository) CountSubcategories(ctx context.Context, id uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subcategories WHERE category_id = $1`, id)
}

// CountProducts counts the products of a category.
func (r *categoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id)
}

func (r *categoryRepository) count(ctx context.Context, query string, id uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to count")
		return 0, StoreError(err, "failed to count")
	}
	return n, nil
}
