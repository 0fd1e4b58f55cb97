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

const orderColumns = `id, user_id, shipping_address, contact_phone, notes, total, state,
	paid_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ShippingAddress,
		&o.ContactPhone,
		&o.Notes,
		&o.Total,
		&o.State,
		&o.PaidAt,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, shipping_address, contact_phone, notes, total, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.ShippingAddress,
		order.ContactPhone,
		order.Notes,
		order.Total,
		order.State,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return StoreError(err, "failed to create order")
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts multiple order lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("product_id", lines[i].ProductID.String()).
				Msg("failed to create order line")
			return StoreError(err, "failed to create order line")
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, StoreError(err, "failed to query order")
	}

	lines, err := r.queryLines(ctx, r.pool, id)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// GetForUpdate retrieves an order and locks its row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, StoreError(err, "failed to lock order")
	}

	return order, nil
}

// GetLines retrieves the lines of an order within the provided transaction.
func (r *orderRepository) GetLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderLine, error) {
	return r.queryLines(ctx, tx, orderID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryLines(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order lines")
		return nil, StoreError(err, "failed to query order lines")
	}
	defer rows.Close()

	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, StoreError(err, "error iterating order lines")
	}

	return lines, nil
}

// UpdateState moves an order to state. The lifecycle timestamp matching the
// new state is set only if it is still NULL.
func (r *orderRepository) UpdateState(ctx context.Context, tx pgx.Tx, id uuid.UUID, state model.OrderState) (*model.Order, error) {
	query := `
		UPDATE orders
		SET state = $2,
			paid_at = CASE WHEN $2 = 'paid' THEN COALESCE(paid_at, NOW()) ELSE paid_at END,
			shipped_at = CASE WHEN $2 = 'shipped' THEN COALESCE(shipped_at, NOW()) ELSE shipped_at END,
			delivered_at = CASE WHEN $2 = 'delivered' THEN COALESCE(delivered_at, NOW()) ELSE delivered_at END,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN COALESCE(cancelled_at, NOW()) ELSE cancelled_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, query, id, string(state)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFound("order", id)
		}
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("state", string(state)).
			Msg("failed to update order state")
		return nil, StoreError(err, "failed to update order state")
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("state", string(state)).
		Msg("order state updated")

	return order, nil
}

// ListByState retrieves orders in a state, newest first.
func (r *orderRepository) ListByState(ctx context.Context, state model.OrderState, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE state = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	return r.list(ctx, query, string(state), limit, offset)
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	return r.list(ctx, query, userID, limit, offset)
}

func (r *orderRepository) list(ctx context.Context, query string, key any, limit, offset int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, key, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to query orders")
		return nil, StoreError(err, "failed to query orders")
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, StoreError(err, "error iterating orders")
	}

	return orders, nil
}
