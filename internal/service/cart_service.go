package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"storefront/internal/cartexpiry"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService and CartCheckout.
type cartService struct {
	store       repository.Store
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	ledger      StockLedger
	tracker     cartexpiry.Tracker
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	store repository.Store,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	ledger StockLedger,
	tracker cartexpiry.Tracker,
	logger zerolog.Logger,
) CartAggregate {
	if tracker == nil {
		tracker = cartexpiry.NopTracker{}
	}
	return &cartService{
		store:       store,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		ledger:      ledger,
		tracker:     tracker,
		now:         time.Now,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddOrUpdate sets the quantity of a cart line, reserving or releasing the
// difference against stock.
func (s *cartService) AddOrUpdate(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartLine, error) {
	if qty < 1 {
		return nil, model.ErrInvalidQuantity
	}

	var line *model.CartLine
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		hierarchy, err := s.productRepo.HierarchyState(ctx, tx, productID)
		if err != nil {
			return err
		}
		if hierarchy == nil {
			return model.NotFound("product", productID)
		}

		product, err := s.productRepo.GetForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return model.NotFound("product", productID)
		}

		existing, err := s.cartRepo.GetLineForUpdate(ctx, tx, userID, productID)
		if err != nil {
			return err
		}

		if existing == nil {
			if !product.Active {
				return fmt.Errorf("product %s: %w", productID, model.ErrProductInactive)
			}
			if !hierarchy.ParentsActive() {
				return fmt.Errorf("product %s: %w", productID, model.ErrInactiveParent)
			}
			if err := s.ledger.Reserve(ctx, tx, productID, qty); err != nil {
				return err
			}

			now := s.now()
			line = &model.CartLine{
				UserID:    userID,
				ProductID: productID,
				Quantity:  qty,
				UnitPrice: product.Price,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return s.cartRepo.Insert(ctx, tx, line)
		}

		line = existing
		delta := qty - existing.Quantity
		switch {
		case delta > 0:
			if err := s.ledger.Reserve(ctx, tx, productID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := s.ledger.Release(ctx, tx, productID, -delta); err != nil {
				return err
			}
		default:
			return nil
		}

		line.Quantity = qty
		line.UpdatedAt = s.now()
		return s.cartRepo.UpdateQuantity(ctx, tx, userID, productID, qty)
	})
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("cart update rejected")
		return nil, err
	}

	s.touch(ctx, userID)

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Int("quantity", qty).
		Msg("cart line updated")

	return line, nil
}

// Remove deletes a cart line and releases its reservation.
func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		if _, err := s.productRepo.GetForUpdate(ctx, tx, productID); err != nil {
			return err
		}

		line, err := s.cartRepo.GetLineForUpdate(ctx, tx, userID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			return fmt.Errorf("cart line for product %s: %w", productID, model.ErrNotFound)
		}

		if err := s.ledger.Release(ctx, tx, productID, line.Quantity); err != nil {
			return err
		}

		_, err = s.cartRepo.DeleteLine(ctx, tx, userID, productID)
		return err
	})
	if err != nil {
		return err
	}

	s.touch(ctx, userID)

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Msg("cart line removed")

	return nil
}

// Clear releases every line of a user's cart and deletes them.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	var released int
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		lines, err := s.lockLines(ctx, tx, userID)
		if err != nil || len(lines) == 0 {
			return err
		}

		cleared := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			if err := s.ledger.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			cleared = append(cleared, line.ProductID)
		}

		released, err = s.cartRepo.DeleteLines(ctx, tx, userID, cleared)
		return err
	})
	if err != nil {
		return err
	}

	s.Forget(ctx, userID)

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("lines", released).
		Msg("cart cleared")

	return nil
}

// Total sums quantity * snapshot price over the cart.
func (s *cartService) Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	lines, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return decimal.Zero, fmt.Errorf("failed to get cart: %w", err)
	}
	return model.CartTotal(lines), nil
}

func (s *cartService) Lines(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	lines, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return lines, nil
}

// LinesForCheckout locks and returns all lines of a user's cart, taking the
// product locks first like every other cart path.
func (s *cartService) LinesForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	return s.lockLines(ctx, tx, userID)
}

// lockLines locks the products of a user's cart in id order, then the cart
// lines. Lines added after the product locks were taken are left out.
func (s *cartService) lockLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	productIDs, err := s.cartRepo.ProductIDs(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, nil
	}

	if err := s.productRepo.LockByIDs(ctx, tx, productIDs); err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.ListForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	locked := lines[:0]
	for _, line := range lines {
		if slices.Contains(productIDs, line.ProductID) {
			locked = append(locked, line)
		}
	}
	return locked, nil
}

// DetachLines deletes lines whose reservations now belong to an order.
func (s *cartService) DetachLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) error {
	n, err := s.cartRepo.DeleteLines(ctx, tx, userID, productIDs)
	if err != nil {
		return err
	}
	if n != len(productIDs) {
		return fmt.Errorf("detached %d of %d cart lines for user %s", n, len(productIDs), userID)
	}
	return nil
}

// Forget stops expiry tracking for a user's cart. Tracker failures are logged.
func (s *cartService) Forget(ctx context.Context, userID uuid.UUID) {
	if err := s.tracker.Forget(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to forget cart activity")
	}
}

func (s *cartService) touch(ctx context.Context, userID uuid.UUID) {
	if err := s.tracker.Touch(ctx, userID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record cart activity")
	}
}
