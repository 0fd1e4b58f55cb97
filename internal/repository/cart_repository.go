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

const cartLineColumns = `user_id, product_id, quantity, unit_price, created_at, updated_at`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func scanCartLine(row pgx.Row) (*model.CartLine, error) {
	var l model.CartLine
	err := row.Scan(&l.UserID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *cartRepository) collect(rows pgx.Rows, userID uuid.UUID) ([]model.CartLine, error) {
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to scan cart line row")
			return nil, StoreError(err, "failed to scan cart line")
		}
		lines = append(lines, *line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("error iterating cart line rows")
		return nil, StoreError(err, "error iterating cart lines")
	}

	return lines, nil
}

// GetLineForUpdate retrieves and locks one cart line.
func (r *cartRepository) GetLineForUpdate(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (*model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE user_id = $1 AND product_id = $2
		FOR UPDATE
	`

	line, err := scanCartLine(tx.QueryRow(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to lock cart line")
		return nil, StoreError(err, "failed to lock cart line")
	}

	return line, nil
}

// ListForUpdate retrieves and locks all lines of a user.
func (r *cartRepository) ListForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY product_id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart lines")
		return nil, StoreError(err, "failed to lock cart lines")
	}

	return r.collect(rows, userID)
}

// ProductIDs lists the products in a user's cart.
func (r *cartRepository) ProductIDs(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT product_id FROM cart_lines WHERE user_id = $1 ORDER BY product_id`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart products")
		return nil, StoreError(err, "failed to query cart products")
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to scan cart products")
		return nil, StoreError(err, "failed to scan cart products")
	}

	return ids, nil
}

// List retrieves all lines of a user, newest first.
func (r *cartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY created_at DESC, product_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart lines")
		return nil, StoreError(err, "failed to query cart lines")
	}

	return r.collect(rows, userID)
}

func (r *cartRepository) Insert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error {
	query := `
		INSERT INTO cart_lines (` + cartLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		line.UserID, line.ProductID, line.Quantity, line.UnitPrice, line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", line.UserID.String()).
			Str("product_id", line.ProductID.String()).
			Msg("failed to insert cart line")
		return StoreError(err, "failed to insert cart line")
	}

	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_lines
		SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2
	`

	if _, err := tx.Exec(ctx, query, userID, productID, quantity); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to update cart line")
		return StoreError(err, "failed to update cart line")
	}

	return nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to delete cart line")
		return false, StoreError(err, "failed to delete cart line")
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteLines removes the given lines of a user and returns how many went.
func (r *cartRepository) DeleteLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) (int, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND product_id = ANY($2)`, userID, productIDs)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to delete cart lines")
		return 0, StoreError(err, "failed to delete cart lines")
	}

	return int(tag.RowsAffected()), nil
}
