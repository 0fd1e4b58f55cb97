package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogService manages the category → subcategory → product hierarchy.
type CatalogService interface {
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)

	// UpdateCategory applies a partial rename/description update. A taken
	// name yields model.ErrDuplicateName.
	UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error)

	CreateSubcategory(ctx context.Context, req *model.CreateSubcategoryRequest) (*model.Subcategory, error)

	// CreateProduct validates the parents and inserts the product in one transaction.
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// ValidateCreateProduct share-locks both parents and checks that they
	// exist, are active, and belong together.
	ValidateCreateProduct(ctx context.Context, tx pgx.Tx, subcategoryID, categoryID uuid.UUID) error

	// SetCategoryActive toggles a category. Deactivation cascades to its
	// subcategories and products; activation does not.
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (*model.ActivationResult, error)

	// SetSubcategoryActive toggles a subcategory. Deactivation cascades to its products.
	SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) (*model.ActivationResult, error)

	// SetProductActive toggles one product. Activation under an inactive
	// parent yields model.ErrInactiveParent.
	SetProductActive(ctx context.Context, id uuid.UUID, active bool) (*model.Product, error)

	UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetSubcategory(ctx context.Context, id uuid.UUID) (*model.Subcategory, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)

	CountSubcategories(ctx context.Context, categoryID uuid.UUID) (int, error)
	CountCategoryProducts(ctx context.Context, categoryID uuid.UUID) (int, error)
	CountSubcategoryProducts(ctx context.Context, subcategoryID uuid.UUID) (int, error)
}

// StockLedger is the only writer of product stock. Mutations run inside the
// caller's transaction.
type StockLedger interface {
	// Reserve locks the product and decrements its stock by qty.
	Reserve(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error

	// Release locks the product and increments its stock by qty.
	Release(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error

	// Available returns the current stock without locking.
	Available(ctx context.Context, productID uuid.UUID) (int, error)
}

// CartService manages per-user carts. Every line holds a stock reservation.
type CartService interface {
	AddOrUpdate(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartLine, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	Lines(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

// CartCheckout hands a cart's lines and their reservations over to an order.
type CartCheckout interface {
	// LinesForCheckout locks and returns all lines of a user's cart.
	LinesForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error)

	// DetachLines deletes converted lines without releasing their stock.
	DetachLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) error

	// Forget drops expiry tracking for a cart that is now empty.
	Forget(ctx context.Context, userID uuid.UUID)
}

// CartAggregate is the cart as seen by both the HTTP surface and the order engine.
type CartAggregate interface {
	CartService
	CartCheckout
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateFromCart converts the user's cart into a pending order.
	CreateFromCart(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error)

	// Transition moves an order along its lifecycle.
	Transition(ctx context.Context, id uuid.UUID, state model.OrderState) (*model.Order, error)

	// Cancel cancels a pending or paid order and returns its stock.
	Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// Delete always fails; orders are cancelled, never removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves an order by its ID with all lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	GetOrdersByState(ctx context.Context, state model.OrderState, limit, offset int) ([]model.Order, error)
	GetUserOrderHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)
}
