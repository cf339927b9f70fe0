// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository defines the interface for cache operations. The costing
// engine uses it for valuation summaries and consumption dedup markers.
type CacheRepository interface {
	// Basic operations
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// SetNX stores value only if key is absent; used for dedup markers.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// GetOrSet fetches through the cache with a loader.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	// Utility operations
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}
