package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-authgate/applink/internal/core"
)

// Compile-time interface check.
var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) liveAt(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// MemoryCache is a process-local Cache. Expired entries read as misses and
// stay in memory until PurgeExpired or an overwrite removes them, so a
// long-running process needs the periodic purge job.
type MemoryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	now     func() time.Time
}

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !e.liveAt(m.now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry[T]{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// SetNX checks and writes under one lock.
func (m *MemoryCache[T]) SetNX(
	_ context.Context,
	key string,
	value T,
	ttl time.Duration,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && e.liveAt(now) {
		return false, nil
	}
	m.entries[key] = entry[T]{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}

func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// PurgeExpired drops expired entries and reports how many were removed.
func (m *MemoryCache[T]) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if !e.liveAt(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len counts stored entries, expired ones included.
func (m *MemoryCache[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close forgets every entry.
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Health(context.Context) error {
	return nil
}

// GetWithFetch calls fetch on a miss and caches its result. Concurrent
// misses may each call fetch.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := m.Get(ctx, key); err == nil {
		return value, nil
	}
	value, err := fetch(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = m.Set(ctx, key, value, ttl)
	return value, nil
}
