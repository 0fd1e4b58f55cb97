package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const productColumns = `id, subcategory_id, category_id, name, description, image, price, stock, active, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.SubcategoryID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.Image,
		&p.Price,
		&p.Stock,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product within the provided transaction.
func (r *productRepository) Create(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		product.ID,
		product.SubcategoryID,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Image,
		product.Price,
		product.Stock,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to create product")
		return StoreError(err, "failed to create product")
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Msg("product created successfully")

	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, StoreError(err, "failed to query product")
	}

	return product, nil
}

// GetForUpdate retrieves a product and holds an exclusive lock on its row
// until the transaction ends.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	product, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product")
		return nil, StoreError(err, "failed to lock product")
	}

	return product, nil
}

// LockByIDs locks the given products in ascending id order. Missing ids are
// ignored.
func (r *productRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	rows, err := tx.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return StoreError(err, "failed to lock products")
	}
	if _, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID]); err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return StoreError(err, "failed to lock products")
	}

	return nil
}

// HierarchyState reads the active flags along a product's catalog path.
// The category row and then the subcategory row are share-locked, one
// statement each, so they cannot be deactivated before the transaction
// commits and the lock order matches the deactivation cascade.
func (r *productRepository) HierarchyState(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*HierarchyState, error) {
	categoryQuery := `
		SELECT c.active
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
		FOR SHARE OF c
	`
	subcategoryQuery := `
		SELECT p.active, s.active
		FROM products p
		JOIN subcategories s ON s.id = p.subcategory_id
		WHERE p.id = $1
		FOR SHARE OF s
	`

	var state HierarchyState
	err := tx.QueryRow(ctx, categoryQuery, id).Scan(&state.CategoryActive)
	if err == nil {
		err = tx.QueryRow(ctx, subcategoryQuery, id).Scan(&state.ProductActive, &state.SubcategoryActive)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to read product hierarchy")
		return nil, StoreError(err, "failed to read product hierarchy")
	}

	return &state, nil
}

// UpdateStock overwrites the stock counter of a product.
func (r *productRepository) UpdateStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, stock int) error {
	query := `
		UPDATE products
		SET stock = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, stock)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Int("stock", stock).
			Msg("failed to update stock")
		return StoreError(err, "failed to update stock")
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("product", id)
	}

	return nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, tx pgx.Tx, id uuid.UUID, price decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `UPDATE products SET price = $2, updated_at = NOW() WHERE id = $1`, id, price)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update price")
		return StoreError(err, "failed to update price")
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("product", id)
	}

	return nil
}

func (r *productRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	query := `
		UPDATE products
		SET active = $2, updated_at = NOW()
		WHERE id = $1 AND active <> $2
	`

	tag, err := tx.Exec(ctx, query, id, active)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return false, StoreError(err, "failed to update product")
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) DeactivateBySubcategory(ctx context.Context, tx pgx.Tx, subcategoryID uuid.UUID) (int, error) {
	return r.deactivate(ctx, tx, "subcategory_id", subcategoryID)
}

func (r *productRepository) DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error) {
	return r.deactivate(ctx, tx, "category_id", categoryID)
}

func (r *productRepository) deactivate(ctx context.Context, tx pgx.Tx, column string, parentID uuid.UUID) (int, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET active = FALSE, updated_at = NOW()
		WHERE %s = $1 AND active
	`, column)

	tag, err := tx.Exec(ctx, query, parentID)
	if err != nil {
		r.logger.Error().Err(err).Str(column, parentID.String()).Msg("failed to deactivate products")
		return 0, StoreError(err, "failed to deactivate products")
	}

	r.logger.Debug().
		Str(column, parentID.String()).
		Int64("affected", tag.RowsAffected()).
		Msg("products deactivated")

	return int(tag.RowsAffected()), nil
}

// ImagesByCategory lists the image names of all products of a category.
func (r *productRepository) ImagesByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT image FROM products WHERE category_id = $1 AND image IS NOT NULL`, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to query product images")
		return nil, StoreError(err, "failed to query product images")
	}

	images, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to scan product images")
		return nil, StoreError(err, "failed to scan product images")
	}

	return images, nil
}

// Delete removes a product. Its cart lines go with it; order lines block it.
func (r *productRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("product %s: %w", id, model.ErrProductInUse)
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, StoreError(err, "failed to delete product")
	}

	return tag.RowsAffected() > 0, nil
}
