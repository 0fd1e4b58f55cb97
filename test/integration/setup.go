package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/cartexpiry"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:     10,
		MinConnections:     2,
		MaxConnLifetime:    300,
		LockTimeoutMS:      5000,
		StatementTimeoutMS: 15000,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestRedis starts a Redis container and returns a connected client.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client, err := cartexpiry.NewRedisClient(ctx, "redis://"+endpoint+"/0")
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// Stack is the full service graph wired against a test database.
type Stack struct {
	Store    repository.Store
	Products repository.ProductRepository
	Ledger   service.StockLedger
	Catalog  service.CatalogService
	Cart     service.CartAggregate
	Orders   service.OrderService
}

// NewStack wires repositories and services the way cmd/api does.
func NewStack(pool *pgxpool.Pool, tracker cartexpiry.Tracker) *Stack {
	logger := zerolog.Nop()

	store := repository.NewStore(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	ledger := service.NewStockLedger(productRepo, logger)
	cart := service.NewCartService(store, repository.NewCartRepository(pool, logger), productRepo, ledger, tracker, logger)

	return &Stack{
		Store:    store,
		Products: productRepo,
		Ledger:   ledger,
		Catalog: service.NewCatalogService(store,
			repository.NewCategoryRepository(pool, logger),
			repository.NewSubcategoryRepository(pool, logger),
			productRepo, nil, logger),
		Cart:   cart,
		Orders: service.NewOrderService(store, repository.NewOrderRepository(pool, logger), cart, ledger, logger),
	}
}

// Fixture is a seeded category with one subcategory.
type Fixture struct {
	Category    *model.Category
	Subcategory *model.Subcategory
}

// SeedHierarchy creates an active category and subcategory.
func SeedHierarchy(t *testing.T, s *Stack) *Fixture {
	t.Helper()

	ctx := context.Background()

	category, err := s.Catalog.CreateCategory(ctx, &model.CreateCategoryRequest{Name: "Category " + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	subcategory, err := s.Catalog.CreateSubcategory(ctx, &model.CreateSubcategoryRequest{CategoryID: category.ID, Name: "Subcategory"})
	if err != nil {
		t.Fatalf("failed to seed subcategory: %v", err)
	}

	return &Fixture{Category: category, Subcategory: subcategory}
}

// SeedProduct creates an active product under f.
func SeedProduct(t *testing.T, s *Stack, f *Fixture, price string, stock int) *model.Product {
	t.Helper()

	product, err := s.Catalog.CreateProduct(context.Background(), &model.CreateProductRequest{
		CategoryID:    f.Category.ID,
		SubcategoryID: f.Subcategory.ID,
		Name:          "Product " + uuid.NewString()[:8],
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
	})
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

// Stock returns the current stock of a product.
func Stock(t *testing.T, s *Stack, productID uuid.UUID) int {
	t.Helper()

	stock, err := s.Ledger.Available(context.Background(), productID)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_lines", "orders", "cart_lines", "products", "subcategories", "categories"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
