package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxContactPhoneLength = 20

// orderService implements OrderService.
type orderService struct {
	store     repository.Store
	orderRepo repository.OrderRepository
	cart      CartCheckout
	ledger    StockLedger
	now       func() time.Time
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	store repository.Store,
	orderRepo repository.OrderRepository,
	cart CartCheckout,
	ledger StockLedger,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		store:     store,
		orderRepo: orderRepo,
		cart:      cart,
		ledger:    ledger,
		now:       time.Now,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// CreateFromCart converts the user's cart into a pending order. The cart's
// reservations move to the order; stock is not touched.
func (s *orderService) CreateFromCart(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		ContactPhone:    strings.TrimSpace(req.ContactPhone),
		Notes:           req.Notes,
		State:           model.OrderStatePending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	var orderLines []model.OrderLine

	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		cartLines, err := s.cart.LinesForCheckout(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(cartLines) == 0 {
			return model.ErrEmptyCart
		}

		total := decimal.Zero
		productIDs := make([]uuid.UUID, len(cartLines))
		orderLines = make([]model.OrderLine, len(cartLines))
		for i, line := range cartLines {
			orderLines[i] = model.OrderLine{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			productIDs[i] = line.ProductID
			total = total.Add(line.Subtotal())
		}
		order.Total = total

		if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := s.orderRepo.CreateOrderLines(ctx, tx, orderLines); err != nil {
			return err
		}
		return s.cart.DetachLines(ctx, tx, userID, productIDs)
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID.String()).Msg("order creation rejected")
		return nil, err
	}

	s.cart.Forget(ctx, userID)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("line_count", len(orderLines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	return &model.OrderResponse{Order: *order, Lines: orderLines}, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.ErrInvalidOrderDetails
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return fmt.Errorf("shipping address is required: %w", model.ErrInvalidOrderDetails)
	}
	phone := strings.TrimSpace(req.ContactPhone)
	if phone == "" {
		return fmt.Errorf("contact phone is required: %w", model.ErrInvalidOrderDetails)
	}
	if len(phone) > maxContactPhoneLength {
		return fmt.Errorf("contact phone exceeds %d characters: %w", maxContactPhoneLength, model.ErrInvalidOrderDetails)
	}
	return nil
}

// Transition moves an order to state. Requesting the current state again is
// a no-op; cancellation is delegated to Cancel.
func (s *orderService) Transition(ctx context.Context, id uuid.UUID, state model.OrderState) (*model.Order, error) {
	if !state.Valid() || state == model.OrderStatePending {
		return nil, fmt.Errorf("target state %q: %w", state, model.ErrInvalidTransition)
	}
	if state == model.OrderStateCancelled {
		return s.Cancel(ctx, id)
	}

	var updated *model.Order
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return model.NotFound("order", id)
		}

		if order.State == state {
			updated = order
			return nil
		}
		if !order.State.CanTransitionTo(state) {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", string(order.State)).
				Str("to", string(state)).
				Msg("invalid order transition")
			return fmt.Errorf("%s -> %s: %w", order.State, state, model.ErrInvalidTransition)
		}

		updated, err = s.orderRepo.UpdateState(ctx, tx, id, state)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("state", string(updated.State)).
		Msg("order transitioned")

	return updated, nil
}

// Cancel cancels a pending or paid order and releases every line back to
// stock in the same transaction.
func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var cancelled *model.Order
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return model.NotFound("order", id)
		}
		if !order.State.Cancellable() {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("state", string(order.State)).
				Msg("order cannot be cancelled")
			return fmt.Errorf("order %s is %s: %w", id, order.State, model.ErrCannotCancel)
		}

		lines, err := s.orderRepo.GetLines(ctx, tx, id)
		if err != nil {
			return err
		}
		slices.SortFunc(lines, func(a, b model.OrderLine) int {
			return bytes.Compare(a.ProductID[:], b.ProductID[:])
		})
		for _, line := range lines {
			if err := s.ledger.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		cancelled, err = s.orderRepo.UpdateState(ctx, tx, id, model.OrderStateCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order cancelled")

	return cancelled, nil
}

// Delete refuses to remove orders.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Warn().Str("order_id", id.String()).Msg("order deletion refused")
	return model.ErrOrderDeletionForbidden
}

// GetByID retrieves an order by its ID with all lines.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, lines, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.NotFound("order", id)
	}

	return &model.OrderResponse{Order: *order, Lines: lines}, nil
}

func (s *orderService) GetOrdersByState(ctx context.Context, state model.OrderState, limit, offset int) ([]model.Order, error) {
	if !state.Valid() {
		return nil, model.InvalidField(fmt.Sprintf("unknown order state %q", state))
	}
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.ListByState(ctx, state, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("state", string(state)).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list orders by state")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *orderService) GetUserOrderHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}
