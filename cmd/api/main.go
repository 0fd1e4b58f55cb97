package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cartexpiry"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/media"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	store := repository.NewStore(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	subcategoryRepo := repository.NewSubcategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	remover := newImageRemover(ctx, cfg.Media, logger)

	// Cart expiry is optional; without it carts hold their reservations until
	// the user clears them or checks out.
	var tracker cartexpiry.Tracker = cartexpiry.NopTracker{}
	if cfg.CartExpiry.Enabled {
		redisClient, err := cartexpiry.NewRedisClient(ctx, cfg.CartExpiry.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize cart expiry: %w", err)
		}
		defer redisClient.Close()
		tracker = cartexpiry.NewRedisTracker(redisClient, logger)
	}

	// Initialize services
	ledger := service.NewStockLedger(productRepo, logger)
	cartService := service.NewCartService(store, cartRepo, productRepo, ledger, tracker, logger)
	catalogService := service.NewCatalogService(store, categoryRepo, subcategoryRepo, productRepo, remover, logger)
	orderService := service.NewOrderService(store, orderRepo, cartService, ledger, logger)

	if cfg.CartExpiry.Enabled {
		sweeper := cartexpiry.NewSweeper(tracker, cartService, cartexpiry.SweeperConfig{
			TTL:         cfg.CartExpiry.TTL,
			Interval:    cfg.CartExpiry.SweepInterval,
			BatchSize:   cfg.CartExpiry.BatchSize,
			Concurrency: cfg.CartExpiry.Concurrency,
		}, logger)
		go sweeper.Run(ctx)
	}

	// Initialize HTTP handlers
	mux := router.New(router.Handlers{
		Catalog: handler.NewCatalogHandler(catalogService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the sweeper before draining requests
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newImageRemover deletes from local disk, and from S3 as well when enabled.
// An S3 setup failure degrades to local-only deletes.
func newImageRemover(ctx context.Context, cfg config.MediaConfig, logger zerolog.Logger) media.Remover {
	fileRemover := media.NewFileRemover(cfg.UploadDir, logger)
	if !cfg.S3Enabled {
		logger.Info().Msg("using local file system for product images (S3 disabled)")
		return fileRemover
	}

	s3Remover, err := media.NewS3Remover(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 remover, falling back to local file system only")
		return fileRemover
	}

	return media.NewFallbackRemover(s3Remover, fileRemover, cfg.Prefix, true, logger)
}
