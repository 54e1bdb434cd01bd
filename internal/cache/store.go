// Package cache stores encoded aggregate results under a string key with a per-entry expiry.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"financegateway/internal/config"
)

// DefaultTTL is used when neither the store nor the caller supplies one.
const DefaultTTL = 300 * time.Second

// Store is a key -> bytes store with expiry. Get never returns an expired entry.
type Store interface {
	// Get returns the value for key. The boolean reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any existing entry. A non-positive
	// ttl means the store's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key if present.
	Delete(ctx context.Context, key string) error

	// Close releases background resources.
	Close() error
}

// NewStore builds the backend selected by cfg.Cache.Backend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return NewMemoryStore(
			WithDefaultTTL(cfg.Cache.TTL),
			WithSweepInterval(cfg.Cache.SweepInterval),
		), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
