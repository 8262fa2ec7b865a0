package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
)

// SafetyStore is the shared cache contract used by SharedLookup.
type SafetyStore interface {
	GetSafety(ctx context.Context, identifier string) (*domain.SafetyInfo, error)
	SetSafety(ctx context.Context, identifier string, info *domain.SafetyInfo) error
}

var _ SafetyStore = (*Client)(nil)

func (c *Client) safetyKey(identifier string) string {
	return c.prefix + domain.CacheKey(identifier)
}

// GetSafety returns the stored info, or nil when absent or expired.
func (c *Client) GetSafety(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
	data, err := c.rdb.Get(ctx, c.safetyKey(identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get safety info: %w", err)
	}

	var info domain.SafetyInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Drop entries written by an incompatible version.
		c.rdb.Del(ctx, c.safetyKey(identifier))
		return nil, nil
	}
	return &info, nil
}

// SetSafety stores info with the configured TTL.
func (c *Client) SetSafety(ctx context.Context, identifier string, info *domain.SafetyInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal safety info: %w", err)
	}
	if err := c.rdb.Set(ctx, c.safetyKey(identifier), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set safety info: %w", err)
	}
	return nil
}

// ClearSafety deletes every key under the prefix and returns the count.
func (c *Client) ClearSafety(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+"*", 500).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan failed: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("del failed: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// SharedLookup consults store before inner and writes found results back.
// Store failures are logged and never fail the lookup.
func SharedLookup(inner hazard.Lookup, store SafetyStore) hazard.Lookup {
	logger := slog.Default().With("component", "redis-cache")

	return hazard.LookupFunc(func(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
		info, err := store.GetSafety(ctx, identifier)
		if err != nil {
			logger.Warn("Shared cache read failed", "identifier", identifier, "error", err)
		}
		if info != nil {
			metrics.CacheRequests.WithLabelValues("redis", "hit").Inc()
			return info, nil
		}
		metrics.CacheRequests.WithLabelValues("redis", "miss").Inc()

		info, err = inner.Lookup(ctx, identifier)
		if err != nil || info == nil {
			return info, err
		}
		if err := store.SetSafety(ctx, identifier, info); err != nil {
			logger.Warn("Shared cache write failed", "identifier", identifier, "error", err)
		}
		return info, nil
	})
}
