package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable is returned by implementations that have no backend.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache is the contract for the cache layer.
// Implementations: Redis (internal/infrastructure/cache), Noop.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found=false on a cache miss, dest untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON encoded) with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// Noop is a Cache that never stores anything. Used when Redis is down.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error { return nil }
func (Noop) Exists(context.Context, string) (bool, error) { return false, nil }
func (Noop) Ping(context.Context) error { return ErrCacheUnavailable }
