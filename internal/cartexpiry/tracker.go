// Package cartexpiry releases the stock held by carts that have been idle
// for longer than a configured TTL.
package cartexpiry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// activityKey is the sorted set holding the last activity time of every
// non-empty cart, scored in unix milliseconds.
const activityKey = "storefront:cart:activity"

// Tracker records cart activity.
type Tracker interface {
	// Touch records activity on a user's cart at the given time.
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error

	// Forget stops tracking a user's cart.
	Forget(ctx context.Context, userID uuid.UUID) error

	// IdleSince returns up to limit users whose last activity is at or before cutoff,
	// oldest first.
	IdleSince(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

// RedisTracker implements Tracker with a Redis sorted set.
type RedisTracker struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewRedisClient parses redisURL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisTracker creates a tracker backed by client.
func NewRedisTracker(client redis.UniversalClient, logger zerolog.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		logger: logger.With().Str("component", "cart_tracker").Logger(),
	}
}

func (t *RedisTracker) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	err := t.client.ZAdd(ctx, activityKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to record cart activity: %w", err)
	}
	return nil
}

func (t *RedisTracker) Forget(ctx context.Context, userID uuid.UUID) error {
	if err := t.client.ZRem(ctx, activityKey, userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to forget cart activity: %w", err)
	}
	return nil
}

func (t *RedisTracker) IdleSince(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	members, err := t.client.ZRangeByScore(ctx, activityKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(cutoff.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query idle carts: %w", err)
	}

	users := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			t.logger.Warn().Str("member", member).Msg("dropping malformed cart activity entry")
			_ = t.client.ZRem(ctx, activityKey, member).Err()
			continue
		}
		users = append(users, id)
	}

	return users, nil
}

// NopTracker is used when cart expiry is disabled.
type NopTracker struct{}

func (NopTracker) Touch(context.Context, uuid.UUID, time.Time) error { return nil }
func (NopTracker) Forget(context.Context, uuid.UUID) error           { return nil }
func (NopTracker) IdleSince(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}
