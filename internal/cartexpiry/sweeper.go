package cartexpiry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CartClearer empties a cart and returns its reservations to stock.
type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// SweeperConfig controls a Sweeper.
type SweeperConfig struct {
	TTL         time.Duration
	Interval    time.Duration
	BatchSize   int
	Concurrency int
}

// Sweeper periodically clears carts that have been idle longer than the TTL.
//
// A cart touched between IdleSince and Clear is still cleared; the user's
// next add simply reserves again.
type Sweeper struct {
	tracker Tracker
	carts   CartClearer
	cfg     SweeperConfig
	now     func() time.Time
	logger  zerolog.Logger
}

// NewSweeper creates a new sweeper.
func NewSweeper(tracker Tracker, carts CartClearer, cfg SweeperConfig, logger zerolog.Logger) *Sweeper {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Sweeper{
		tracker: tracker,
		carts:   carts,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With().Str("component", "cart_sweeper").Logger(),
	}
}

// Run sweeps every Interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("ttl", s.cfg.TTL).
		Dur("interval", s.cfg.Interval).
		Msg("cart expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cart expiry sweeper stopped")
			return
		case <-ticker.C:
			cleared, err := s.SweepOnce(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("cart sweep failed")
				continue
			}
			if cleared > 0 {
				s.logger.Info().Int("cleared", cleared).Msg("expired carts cleared")
			}
		}
	}
}

// SweepOnce clears one batch of idle carts and returns how many were cleared.
// Retryable failures on a single cart are logged and left for the next sweep.
// A cart that fails for any other reason is dropped from tracking so it
// cannot hold up later sweeps; its error is reported with the rest.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.TTL)

	users, err := s.tracker.IdleSince(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, nil
	}

	var (
		cleared atomic.Int64
		mu      sync.Mutex
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, userID := range users {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.carts.Clear(ctx, userID); err != nil {
				if model.IsRetryable(err) || ctx.Err() != nil {
					s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cart clear deferred")
					return nil
				}

				s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear expired cart")
				if forgetErr := s.tracker.Forget(ctx, userID); forgetErr != nil {
					s.logger.Warn().Err(forgetErr).Str("user_id", userID.String()).Msg("failed to drop cart from expiry tracking")
				}

				mu.Lock()
				errs = append(errs, fmt.Errorf("clear cart %s: %w", userID, err))
				mu.Unlock()
				return nil
			}
			cleared.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return int(cleared.Load()), errors.Join(errs...)
}
