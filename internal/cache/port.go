package cache

import (
	"context"
	"time"
)

// KV is the minimal key-value contract backing the read caches.
// Implementations must be safe for concurrent use. Misses are reported as
// ("", ErrMiss) so callers can tell them apart from transport errors.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss in a typed way.
var ErrMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache: miss" }
