package metrics

import (
	"context"
	"time"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
)

// activeTokensKey is the cache key for the count of live tokens of a kind.
func activeTokensKey(kind models.TokenKind) string {
	return "active_tokens:" + string(kind)
}

// CacheWrapper counts active tokens through a shared cache, so replicas
// pointing at the same Redis run one count query per TTL between them.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
}

func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{store: store, cache: cache}
}

// GetActiveTokensCount returns the number of unexpired tokens of kind.
func (w *CacheWrapper) GetActiveTokensCount(
	ctx context.Context,
	kind models.TokenKind,
	ttl time.Duration,
) (int64, error) {
	return w.cache.GetWithFetch(ctx, activeTokensKey(kind), ttl,
		func(ctx context.Context, _ string) (int64, error) {
			return w.store.CountActiveTokens(ctx, kind)
		},
	)
}
