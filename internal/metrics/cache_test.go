package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/mocks"
	"github.com/go-authgate/applink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCacheWrapper_GetActiveTokensCount(t *testing.T) {
	dbDown := errors.New("database unavailable")

	tests := []struct {
		name      string
		kind      models.TokenKind
		cached    *int64
		storeHits int
		count     int64
		storeErr  error
		want      int64
		wantErr   error
	}{
		{name: "cache hit skips the store", kind: models.TokenKindAccess, cached: ptr(int64(42)), want: 42},
		{name: "miss counts request tokens", kind: models.TokenKindRequest, storeHits: 1, count: 3, want: 3},
		{name: "store error is returned", kind: models.TokenKindAccess, storeHits: 1, storeErr: dbDown, wantErr: dbDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			store := mocks.NewMockMetricsStore(ctrl)
			counts := cache.NewMemoryCache[int64]()

			if tt.cached != nil {
				require.NoError(t, counts.Set(ctx, activeTokensKey(tt.kind), *tt.cached, time.Minute))
			}
			store.EXPECT().
				CountActiveTokens(gomock.Any(), tt.kind).
				Return(tt.count, tt.storeErr).
				Times(tt.storeHits)

			got, err := NewCacheWrapper(store, counts).GetActiveTokensCount(ctx, tt.kind, time.Minute)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCacheWrapper_SharedCacheKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	shared := mocks.NewMockCache[int64](ctrl)

	// Replicas must agree on the key to share one count
	shared.EXPECT().
		GetWithFetch(gomock.Any(), "active_tokens:access", 30*time.Second, gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			key string,
			_ time.Duration,
			fetch func(context.Context, string) (int64, error),
		) (int64, error) {
			return fetch(ctx, key)
		})
	store.EXPECT().CountActiveTokens(gomock.Any(), models.TokenKindAccess).Return(int64(9), nil)

	got, err := NewCacheWrapper(store, shared).
		GetActiveTokensCount(context.Background(), models.TokenKindAccess, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)
}

func ptr[T any](v T) *T { return &v }
