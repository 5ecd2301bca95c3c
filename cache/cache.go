package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss signals a cache miss, as opposed to a transport or server error
var ErrMiss = errors.New("cache: miss")

// Cache is the key-value cache used to keep hot user documents off the
// database on the message send path. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Close() error
}
