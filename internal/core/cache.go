package core

import (
	"context"
	"time"
)

// Cache[T] is a TTL key-value cache. It backs the per-consumer nonce replay
// cache (Cache[bool]) and the shared gauge counts (Cache[int64]).
type Cache[T any] interface {
	// Get returns ErrCacheMiss for absent and expired keys.
	Get(ctx context.Context, key string) (T, error)

	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// SetNX stores value only when key is absent or expired and reports
	// whether it did. Two concurrent callers with the same key never both
	// get true, which is what makes nonce checks replay-safe.
	SetNX(ctx context.Context, key string, value T, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error

	Close() error

	Health(ctx context.Context) error

	// GetWithFetch returns the cached value or calls fetch on a miss and
	// stores its result for ttl.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetch func(ctx context.Context, key string) (T, error),
	) (T, error)
}
