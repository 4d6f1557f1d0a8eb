package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/mocks"
	"github.com/go-authgate/applink/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fixedImpersonations int64

func (f fixedImpersonations) Active() int64 { return int64(f) }

func TestUpdateGaugeMetricsWithCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	tokens := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	wrapper := metrics.NewCacheWrapper(tokens, cache.NewMemoryCache[int64]())

	// First update queries the store
	tokens.EXPECT().CountActiveTokens(gomock.Any(), models.TokenKindAccess).Return(int64(7), nil)
	tokens.EXPECT().CountActiveTokens(gomock.Any(), models.TokenKindRequest).Return(int64(2), nil)
	recorder.EXPECT().SetActiveTokensCount("access", 7).Times(2)
	recorder.EXPECT().SetActiveTokensCount("request", 2).Times(2)
	recorder.EXPECT().SetActiveImpersonations(int64(3)).Times(2)

	updateGaugeMetricsWithCache(ctx, wrapper, recorder, fixedImpersonations(3), time.Minute)

	// Second update within the TTL is served from the cache
	updateGaugeMetricsWithCache(ctx, wrapper, recorder, fixedImpersonations(3), time.Minute)
}

func TestUpdateGaugeMetricsWithCache_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)

	tokens := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	wrapper := metrics.NewCacheWrapper(tokens, cache.NewMemoryCache[int64]())

	tokens.EXPECT().CountActiveTokens(gomock.Any(), models.TokenKindAccess).Return(int64(0), errors.New("db down"))
	tokens.EXPECT().CountActiveTokens(gomock.Any(), models.TokenKindRequest).Return(int64(1), nil)
	recorder.EXPECT().RecordDatabaseQueryError("count_access_tokens")
	recorder.EXPECT().SetActiveTokensCount("request", 1)

	updateGaugeMetricsWithCache(context.Background(), wrapper, recorder, nil, time.Minute)
}

func TestRunPeriodically(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 10)

	done := make(chan struct{})
	go func() {
		runPeriodically(ctx, 10*time.Millisecond, func(context.Context) {
			calls <- struct{}{}
		})
		close(done)
	}()

	for range 2 {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancellation")
	}
}

func TestErrorLogger_SuppressesRepeats(t *testing.T) {
	l := newErrorLogger()
	l.logIfNeeded("count_access_tokens", errors.New("boom"))
	first := l.lastErrorTimes["count_access_tokens"]

	l.logIfNeeded("count_access_tokens", errors.New("boom"))

	assert.Equal(t, first, l.lastErrorTimes["count_access_tokens"])
	assert.Len(t, l.lastErrorTimes, 1)
}
