package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// stockLedger implements StockLedger on top of the product repository.
type stockLedger struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewStockLedger creates a new stock ledger.
func NewStockLedger(productRepo repository.ProductRepository, logger zerolog.Logger) StockLedger {
	return &stockLedger{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "stock").Logger(),
	}
}

// Reserve decrements stock by qty if the product is active and has enough.
func (l *stockLedger) Reserve(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	product, err := l.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if product == nil {
		return model.NotFound("product", productID)
	}

	if !product.Active {
		l.logger.Warn().Str("product_id", productID.String()).Msg("reservation on inactive product")
		return fmt.Errorf("product %s: %w", productID, model.ErrProductInactive)
	}

	if product.Stock < qty {
		l.logger.Debug().
			Str("product_id", productID.String()).
			Int("available", product.Stock).
			Int("requested", qty).
			Msg("insufficient stock")
		return &model.InsufficientStockError{
			ProductID: productID,
			Available: product.Stock,
			Requested: qty,
		}
	}

	if err := l.productRepo.UpdateStock(ctx, tx, productID, product.Stock-qty); err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	l.logger.Debug().
		Str("product_id", productID.String()).
		Int("quantity", qty).
		Int("remaining", product.Stock-qty).
		Msg("stock reserved")

	return nil
}

// Release returns qty units to stock. Inactive products still take stock back.
func (l *stockLedger) Release(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	product, err := l.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if product == nil {
		return model.NotFound("product", productID)
	}

	if err := l.productRepo.UpdateStock(ctx, tx, productID, product.Stock+qty); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}

	l.logger.Debug().
		Str("product_id", productID.String()).
		Int("quantity", qty).
		Int("remaining", product.Stock+qty).
		Msg("stock released")

	return nil
}

func (l *stockLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	if product == nil {
		return 0, model.NotFound("product", productID)
	}
	return product.Stock, nil
}
