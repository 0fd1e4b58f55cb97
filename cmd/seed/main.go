// Command seed loads a small demo catalog into the configured database.
// With -check it only verifies connectivity and reports the database name.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name  string
	price string
	stock int
	image string
}

type seedSubcategory struct {
	name     string
	products []seedProduct
}

type seedCategory struct {
	name          string
	subcategories []seedSubcategory
}

var demoCatalog = []seedCategory{
	{
		name: "Footwear",
		subcategories: []seedSubcategory{
			{name: "Running", products: []seedProduct{
				{name: "Trail Runner", price: "89.00", stock: 25, image: "trail-runner.jpg"},
				{name: "Road Racer", price: "120.50", stock: 10, image: "road-racer.png"},
			}},
			{name: "Boots", products: []seedProduct{
				{name: "Hiking Boot", price: "149.99", stock: 8},
			}},
		},
	},
	{
		name: "Accessories",
		subcategories: []seedSubcategory{
			{name: "Socks", products: []seedProduct{
				{name: "Wool Socks", price: "10.00", stock: 100},
				{name: "Ankle Socks", price: "5.00", stock: 1},
			}},
		},
	},
}

func main() {
	check := flag.Bool("check", false, "only verify database connectivity")
	flag.Parse()

	if err := run(*check); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(check bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if check {
		var name string
		if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&name); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("Successfully connected to database: %s\n", name)
		return nil
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	catalog := service.NewCatalogService(
		repository.NewStore(pool, logger),
		repository.NewCategoryRepository(pool, logger),
		repository.NewSubcategoryRepository(pool, logger),
		repository.NewProductRepository(pool, logger),
		nil,
		logger,
	)

	created, err := seed(ctx, catalog, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d products\n", created)
	return nil
}

func seed(ctx context.Context, catalog service.CatalogService, logger zerolog.Logger) (int, error) {
	var created int
	for _, c := range demoCatalog {
		category, err := catalog.CreateCategory(ctx, &model.CreateCategoryRequest{Name: c.name})
		if errors.Is(err, model.ErrDuplicateName) {
			logger.Info().Str("category", c.name).Msg("category already seeded, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create category %s: %w", c.name, err)
		}

		for _, s := range c.subcategories {
			subcategory, err := catalog.CreateSubcategory(ctx, &model.CreateSubcategoryRequest{
				CategoryID: category.ID,
				Name:       s.name,
			})
			if err != nil {
				return created, fmt.Errorf("failed to create subcategory %s: %w", s.name, err)
			}

			for _, p := range s.products {
				req := &model.CreateProductRequest{
					CategoryID:    category.ID,
					SubcategoryID: subcategory.ID,
					Name:          p.name,
					Price:         decimal.RequireFromString(p.price),
					Stock:         p.stock,
				}
				if p.image != "" {
					image := p.image
					req.Image = &image
				}
				if _, err := catalog.CreateProduct(ctx, req); err != nil {
					return created, fmt.Errorf("failed to create product %s: %w", p.name, err)
				}
				created++
			}
		}
	}
	return created, nil
}
