package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-authgate/applink/internal/core"

	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ core.Cache[struct{}] = (*RueidisCache[struct{}])(nil)

// RueidisCache is a Redis-backed Cache shared by every instance. Values are
// stored as JSON under keyPrefix.
type RueidisCache[T any] struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisCache connects to addr and pings it before returning.
func NewRueidisCache[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisCache[T], error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true, // nonces must never be served from a client-side copy
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRueidisCacheWithClient[T](client, keyPrefix), nil
}

// NewRueidisCacheWithClient wraps an existing client. The cache takes
// ownership and closes it on Close.
func NewRueidisCacheWithClient[T any](client rueidis.Client, keyPrefix string) *RueidisCache[T] {
	return &RueidisCache[T]{client: client, keyPrefix: keyPrefix}
}

func (r *RueidisCache[T]) key(k string) string { return r.keyPrefix + k }

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

func encode[T any](value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return string(b), nil
}

// ttlMillis rounds ttl up to Redis' 1ms minimum.
func ttlMillis(ttl time.Duration) int64 {
	return max(ttl.Milliseconds(), 1)
}

func (r *RueidisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var value T

	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(key)).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return value, ErrCacheMiss
	case err != nil:
		return value, unavailable(err)
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return value, nil
}

func (r *RueidisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	encoded, err := encode(value)
	if err != nil {
		return err
	}

	cmd := r.client.B().Set().Key(r.key(key)).Value(encoded).PxMilliseconds(ttlMillis(ttl)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SetNX issues SET NX PX, so the existence check and the write are one
// atomic command on the server.
func (r *RueidisCache[T]) SetNX(
	ctx context.Context,
	key string,
	value T,
	ttl time.Duration,
) (bool, error) {
	encoded, err := encode(value)
	if err != nil {
		return false, err
	}

	cmd := r.client.B().Set().Key(r.key(key)).Value(encoded).Nx().PxMilliseconds(ttlMillis(ttl)).Build()
	err = r.client.Do(ctx, cmd).Error()
	switch {
	case rueidis.IsRedisNil(err):
		// NX not satisfied: the key already exists
		return false, nil
	case err != nil:
		return false, unavailable(err)
	}
	return true, nil
}

func (r *RueidisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(r.key(key)).Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RueidisCache[T]) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisCache[T]) Health(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

// GetWithFetch falls back to fetch on a miss or an unreachable backend. The
// fetched value is stored best effort.
func (r *RueidisCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := r.Get(ctx, key); err == nil {
		return value, nil
	}
	value, err := fetch(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = r.Set(ctx, key, value, ttl)
	return value, nil
}
