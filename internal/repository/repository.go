package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LockMode selects the row lock taken by a locked read.
type LockMode int

const (
	// LockShare blocks concurrent writers but not other sharers.
	LockShare LockMode = iota
	// LockUpdate takes an exclusive row lock.
	LockUpdate
)

func (m LockMode) clause() string {
	if m == LockUpdate {
		return "FOR UPDATE"
	}
	return "FOR SHARE"
}

// Store is the transactional unit of work shared by all services.
type Store interface {
	// BeginTx starts a new READ COMMITTED transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// Create inserts a category. A taken name yields model.ErrDuplicateName.
	Create(ctx context.Context, tx pgx.Tx, category *model.Category) error

	// GetByID retrieves a category, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// GetLocked retrieves and row-locks a category, or nil if it does not exist.
	GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode LockMode) (*model.Category, error)

	// List retrieves categories ordered by name.
	List(ctx context.Context, activeOnly bool) ([]model.Category, error)

	// Update writes the name and description of a locked category.
	// A taken name yields model.ErrDuplicateName.
	Update(ctx context.Context, tx pgx.Tx, category *model.Category) error

	// SetActive sets the active flag and reports whether it changed.
	SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error)

	// Delete removes a category; the schema cascades to its subcategories and products.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// CountSubcategories counts the subcategories of a category.
	CountSubcategories(ctx context.Context, id uuid.UUID) (int, error)

	// CountProducts counts the products of a category.
	CountProducts(ctx context.Context, id uuid.UUID) (int, error)
}

// SubcategoryRepository defines data access for subcategories.
type SubcategoryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, subcategory *model.Subcategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subcategory, error)
	GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode LockMode) (*model.Subcategory, error)
	SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error)

	// DeactivateByCategory deactivates every active subcategory of a category
	// and returns how many changed.
	DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error)

	CountProducts(ctx context.Context, id uuid.UUID) (int, error)
}

// ProductRepository defines data access for products. Stock writes belong to
// the stock ledger alone.
type ProductRepository interface {
	Create(ctx context.Context, tx pgx.Tx, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetForUpdate retrieves and exclusively locks a product, or nil if it does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// LockByIDs exclusively locks the given products in ascending id order.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error

	// HierarchyState reads the active flags of a product and its parents,
	// share-locking the parent rows. Returns nil if the product does not exist.
	HierarchyState(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*HierarchyState, error)

	// UpdateStock overwrites the stock counter of a locked product.
	UpdateStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, stock int) error

	UpdatePrice(ctx context.Context, tx pgx.Tx, id uuid.UUID, price decimal.Decimal) error

	// SetActive sets the active flag of one product and reports whether it changed.
	SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error)

	DeactivateBySubcategory(ctx context.Context, tx pgx.Tx, subcategoryID uuid.UUID) (int, error)
	DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error)

	// ImagesByCategory lists the image names of all products of a category.
	ImagesByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) ([]string, error)

	// Delete removes a product. Products referenced by orders yield model.ErrProductInUse.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

// HierarchyState holds the active flags along a product's catalog path.
type HierarchyState struct {
	ProductActive     bool
	SubcategoryActive bool
	CategoryActive    bool
}

// ParentsActive reports whether both the subcategory and category are active.
func (h HierarchyState) ParentsActive() bool {
	return h.SubcategoryActive && h.CategoryActive
}

// CartRepository defines data access for cart lines.
type CartRepository interface {
	// GetLineForUpdate retrieves and locks one line, or nil if it does not exist.
	GetLineForUpdate(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (*model.CartLine, error)

	// ListForUpdate retrieves and locks all lines of a user ordered by product id.
	ListForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error)

	// ProductIDs lists the products in a user's cart without locking.
	ProductIDs(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]uuid.UUID, error)

	// List retrieves all lines of a user, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)

	Insert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error
	UpdateQuantity(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error)
	DeleteLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) (int, error)
}

// OrderRepository defines the interface for order data access operations.
// There is deliberately no delete operation.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts multiple order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error)

	// GetForUpdate retrieves and exclusively locks an order, or nil if it does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetLines retrieves the lines of an order ordered by product id.
	GetLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderLine, error)

	// UpdateState moves a locked order to state, stamping the matching
	// lifecycle timestamp only if it is still unset.
	UpdateState(ctx context.Context, tx pgx.Tx, id uuid.UUID, state model.OrderState) (*model.Order, error)

	ListByState(ctx context.Context, state model.OrderState, limit, offset int) ([]model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)
}
