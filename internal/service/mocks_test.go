package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of repository.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, tx pgx.Tx, category *model.Category) error {
	args := m.Called(ctx, tx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode repository.LockMode) (*model.Category, error) {
	args := m.Called(ctx, tx, id, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, tx pgx.Tx, category *model.Category) error {
	args := m.Called(ctx, tx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	args := m.Called(ctx, tx, id, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) CountSubcategories(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockSubcategoryRepository is a mock implementation of SubcategoryRepository.
type MockSubcategoryRepository struct {
	mock.Mock
}

func (m *MockSubcategoryRepository) Create(ctx context.Context, tx pgx.Tx, subcategory *model.Subcategory) error {
	args := m.Called(ctx, tx, subcategory)
	return args.Error(0)
}

func (m *MockSubcategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subcategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subcategory), args.Error(1)
}

func (m *MockSubcategoryRepository) GetLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID, mode repository.LockMode) (*model.Subcategory, error) {
	args := m.Called(ctx, tx, id, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subcategory), args.Error(1)
}

func (m *MockSubcategoryRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	args := m.Called(ctx, tx, id, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubcategoryRepository) DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubcategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	args := m.Called(ctx, tx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	args := m.Called(ctx, tx, ids)
	return args.Error(0)
}

func (m *MockProductRepository) HierarchyState(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*repository.HierarchyState, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.HierarchyState), args.Error(1)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, stock int) error {
	args := m.Called(ctx, tx, id, stock)
	return args.Error(0)
}

func (m *MockProductRepository) UpdatePrice(ctx context.Context, tx pgx.Tx, id uuid.UUID, price decimal.Decimal) error {
	args := m.Called(ctx, tx, id, price)
	return args.Error(0)
}

func (m *MockProductRepository) SetActive(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool) (bool, error) {
	args := m.Called(ctx, tx, id, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeactivateBySubcategory(ctx context.Context, tx pgx.Tx, subcategoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, subcategoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) DeactivateByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) ImagesByCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetLineForUpdate(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (*model.CartLine, error) {
	args := m.Called(ctx, tx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartRepository) ListForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) ProductIDs(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteLine(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeleteLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, userID, productIDs)
	return args.Int(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderLine), args.Error(2)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderLine, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderLine), args.Error(1)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, tx pgx.Tx, id uuid.UUID, state model.OrderState) (*model.Order, error) {
	args := m.Called(ctx, tx, id, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByState(ctx context.Context, state model.OrderState, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, state, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockStockLedger is a mock implementation of StockLedger.
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) Reserve(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	args := m.Called(ctx, tx, productID, qty)
	return args.Error(0)
}

func (m *MockStockLedger) Release(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	args := m.Called(ctx, tx, productID, qty)
	return args.Error(0)
}

func (m *MockStockLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

// MockCartCheckout is a mock implementation of CartCheckout.
type MockCartCheckout struct {
	mock.Mock
}

func (m *MockCartCheckout) LinesForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartCheckout) DetachLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productIDs []uuid.UUID) error {
	args := m.Called(ctx, tx, userID, productIDs)
	return args.Error(0)
}

func (m *MockCartCheckout) Forget(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

// MockTracker is a mock implementation of cartexpiry.Tracker.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockTracker) Forget(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTracker) IdleSince(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockRemover is a mock implementation of media.Remover.
type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) DeleteFile(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// beginTx wires a store to hand out tx and expects it to commit.
func beginTx(ctx context.Context, store *MockStore, commit bool) *MockTx {
	tx := new(MockTx)
	store.On("BeginTx", ctx).Return(tx, nil)
	if commit {
		tx.On("Commit", ctx).Return(nil)
	} else {
		tx.On("Rollback", ctx).Return(nil)
	}
	return tx
}
