package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation            = "23505"
	pgForeignKeyViolation        = "23503"
	pgSerializationFailure       = "40001"
	pgDeadlockDetected           = "40P01"
	pgLockNotAvailable           = "55P03"
	pgQueryCanceled              = "57014"
	pgIdleInTransactionTimeout   = "25P03"
	pgAdminShutdown              = "57P01"
	pgTooManyConnections         = "53300"
	pgConnectionExceptionClass   = "08"
	pgInsufficientResourcesClass = "53"
)

// pgStore implements Store using a pgx connection pool.
type pgStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStore creates a new PostgreSQL-backed unit of work.
func NewStore(pool *pgxpool.Pool, logger zerolog.Logger) Store {
	return &pgStore{
		pool:   pool,
		logger: logger.With().Str("repository", "store").Logger(),
	}
}

// BeginTx starts a new READ COMMITTED transaction.
func (s *pgStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, StoreError(err, "failed to begin transaction")
	}
	return tx, nil
}

// StoreError wraps err with msg. Transient failures (lost connections, lock
// and statement timeouts, deadlocks, serialization failures) become a
// retryable model.ErrStoreUnavailable; anything else is returned wrapped as is.
func StoreError(err error, msg string) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)
	if IsTransient(err) {
		return model.StoreUnavailable(wrapped)
	}
	return wrapped
}

// IsTransient reports whether err is a store failure that may succeed on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable,
			pgQueryCanceled, pgIdleInTransactionTimeout, pgAdminShutdown, pgTooManyConnections:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgConnectionExceptionClass) ||
			strings.HasPrefix(pgErr.Code, pgInsufficientResourcesClass)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return pgconn.SafeToRetry(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
