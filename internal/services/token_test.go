package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/mocks"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTokenService_FullDance(t *testing.T) {
	random := &scriptedRandom{values: []string{"T1", "TS1", "V1", "A1", "AS1", "H1"}}
	env := newTestEnv(t, random)
	ctx := context.Background()
	consumer, err := env.consumers.GetConsumer(ctx, testConsumerKey)
	require.NoError(t, err)

	rt, err := env.tokenService.IssueRequestToken(ctx, consumer, "https://jenkins.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "T1", rt.Value)
	assert.Equal(t, "TS1", rt.Secret)
	assert.Equal(t, models.TokenKindRequest, rt.Kind)
	assert.False(t, rt.IsAuthorized())
	assert.Equal(t, testEpoch.Add(10*time.Minute), rt.ExpiresAt)

	authorized, err := env.authzService.Approve(ctx, "T1", &models.User{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "V1", authorized.Verifier)
	assert.Equal(t, "alice", authorized.AuthorizedBy)

	at, err := env.tokenService.ExchangeRequestToken(ctx, testConsumerKey, "T1", "V1")
	require.NoError(t, err)
	assert.Equal(t, "A1", at.Value)
	assert.Equal(t, "AS1", at.Secret)
	assert.Equal(t, "H1", at.SessionHandle)
	assert.Equal(t, models.TokenKindAccess, at.Kind)
	assert.Equal(t, "alice", at.AuthorizedBy)
	assert.Equal(t, testConsumerKey, at.ConsumerKey)
	assert.Empty(t, at.Verifier)
	assert.Empty(t, at.CallbackURL)
	assert.Equal(t, testEpoch.Add(env.cfg.AccessTokenTTL), at.ExpiresAt)
	assert.Equal(t, testEpoch.Add(env.cfg.SessionTTL), at.SessionExpiresAt)

	_, err = env.tokens.GetToken(ctx, "T1")
	assert.ErrorIs(t, err, store.ErrRecordNotFound, "request token must be consumed")

	stored, err := env.tokens.GetToken(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.AuthorizedBy)
}

func TestTokenService_IssueRequestToken_Callback(t *testing.T) {
	tests := []struct {
		name     string
		callback string
		want     string
		wantErr  error
	}{
		{name: "absent is out of band", callback: "", want: ""},
		{name: "oob", callback: "oob", want: ""},
		{name: "https", callback: "https://jenkins.example.com/cb?x=1", want: "https://jenkins.example.com/cb?x=1"},
		{name: "relative", callback: "/cb", wantErr: ErrInvalidCallback},
		{name: "javascript", callback: "javascript:alert(1)", wantErr: ErrInvalidCallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			consumer, err := env.consumers.GetConsumer(context.Background(), testConsumerKey)
			require.NoError(t, err)

			token, err := env.tokenService.IssueRequestToken(context.Background(), consumer, tt.callback)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token.CallbackURL)
			assert.Len(t, token.Value, tokenValueLength)
			assert.NotEqual(t, token.Value, token.Secret)
		})
	}
}

func TestTokenService_Exchange_Failures(t *testing.T) {
	t.Run("before authorization", func(t *testing.T) {
		env := newTestEnv(t, nil)
		consumer, _ := env.consumers.GetConsumer(context.Background(), testConsumerKey)
		rt, err := env.tokenService.IssueRequestToken(context.Background(), consumer, "")
		require.NoError(t, err)

		_, err = env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, "")
		assert.ErrorIs(t, err, ErrTokenNotAuthorized)
		assert.Equal(t, "token not authorized", err.Error())
	})

	t.Run("wrong verifier keeps the token", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rt := env.authorizedRequestToken(t)

		_, err := env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, "nope")
		assert.ErrorIs(t, err, ErrInvalidVerifier)
		assert.Equal(t, "invalid verifier", err.Error())

		_, err = env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, rt.Verifier)
		assert.NoError(t, err)
	})

	t.Run("one shot", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rt := env.authorizedRequestToken(t)

		_, err := env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, rt.Verifier)
		require.NoError(t, err)
		_, err = env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, rt.Verifier)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, "invalid or expired token", err.Error())
	})

	t.Run("expired", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rt := env.authorizedRequestToken(t)
		env.clock.Advance(env.cfg.RequestTokenTTL)

		_, err := env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, rt.Value, rt.Verifier)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other consumer", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rt := env.authorizedRequestToken(t)

		_, err := env.tokenService.ExchangeRequestToken(context.Background(), "bamboo", rt.Value, rt.Verifier)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("access token is not exchangeable", func(t *testing.T) {
		env := newTestEnv(t, nil)
		at := env.accessToken(t)

		_, err := env.tokenService.ExchangeRequestToken(context.Background(), testConsumerKey, at.Value, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_Exchange_ConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t, nil)
	rt := env.authorizedRequestToken(t)

	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			_, err := env.tokenService.ExchangeRequestToken(
				context.Background(), testConsumerKey, rt.Value, rt.Verifier,
			)
			if err == nil {
				wins.Add(1)
			} else if errors.Is(err, ErrInvalidToken) {
				losses.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), losses.Load())
}

func TestTokenService_Exchange_StoreFailureIsNotAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockTokenStore(ctrl)
	tokens.EXPECT().GetToken(gomock.Any(), "T1").Return(nil, errors.New("connection refused"))

	env := newTestEnv(t, nil)
	svc := NewTokenService(tokens, env.consumers, nil, env.clock, env.cfg, env.audit, metrics.NewNoopMetrics())

	_, err := svc.ExchangeRequestToken(context.Background(), testConsumerKey, "T1", "V1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTokenService_RenewAccessToken(t *testing.T) {
	t.Run("inside session window", func(t *testing.T) {
		env := newTestEnv(t, nil)
		at := env.accessToken(t)
		env.clock.Advance(env.cfg.AccessTokenTTL + time.Hour)

		_, err := env.tokens.GetToken(context.Background(), at.Value)
		require.ErrorIs(t, err, store.ErrRecordNotFound, "access token should read as expired")

		renewed, err := env.tokenService.RenewAccessToken(
			context.Background(), testConsumerKey, at.Value, at.SessionHandle,
		)
		require.NoError(t, err)
		assert.NotEqual(t, at.Value, renewed.Value)
		assert.NotEqual(t, at.SessionHandle, renewed.SessionHandle)
		assert.Equal(t, "alice", renewed.AuthorizedBy)
		assert.Equal(t, env.clock.Now().Add(env.cfg.AccessTokenTTL), renewed.ExpiresAt)
		assert.Equal(t, env.clock.Now().Add(env.cfg.SessionTTL), renewed.SessionExpiresAt)

		_, err = env.tokenService.RenewAccessToken(
			context.Background(), testConsumerKey, at.Value, at.SessionHandle,
		)
		assert.ErrorIs(t, err, ErrInvalidToken, "old token is consumed")
	})

	t.Run("past session window", func(t *testing.T) {
		env := newTestEnv(t, nil)
		at := env.accessToken(t)
		env.clock.Advance(env.cfg.SessionTTL)

		_, err := env.tokenService.RenewAccessToken(
			context.Background(), testConsumerKey, at.Value, at.SessionHandle,
		)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong session handle", func(t *testing.T) {
		env := newTestEnv(t, nil)
		at := env.accessToken(t)

		_, err := env.tokenService.RenewAccessToken(context.Background(), testConsumerKey, at.Value, "guess")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = env.tokenService.RenewAccessToken(context.Background(), testConsumerKey, at.Value, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_ListAccessTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for i := range 7 {
		env.clock.Advance(time.Minute)
		require.NoError(t, env.tokens.PutToken(ctx, &models.Token{
			Value:            fmt.Sprintf("A%d", i),
			Secret:           "s",
			ConsumerKey:      testConsumerKey,
			Kind:             models.TokenKindAccess,
			AuthorizedBy:     "alice",
			Timestamp:        env.clock.Now(),
			ExpiresAt:        env.clock.Now().Add(time.Hour),
			SessionExpiresAt: env.clock.Now().Add(2 * time.Hour),
		}))
	}

	tokens, page, err := env.tokenService.ListAccessTokens(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "A6", tokens[0].Value, "newest first")
	assert.Equal(t, "Jenkins", tokens[0].ConsumerName)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 3, page.TotalPages, "capped at MaxPages")
	assert.True(t, page.HasNext)

	tokens, page, err = env.tokenService.ListAccessTokens(ctx, "alice", 99)
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.False(t, page.HasNext)
	require.Len(t, tokens, 2)
	assert.Equal(t, "A2", tokens[0].Value)

	tokens, _, err = env.tokenService.ListAccessTokens(ctx, "bob", 1)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenService_RevokeAccessToken(t *testing.T) {
	env := newTestEnv(t, nil)
	at := env.accessToken(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.tokenService.RevokeAccessToken(ctx, "mallory", at.Value), ErrNotTokenOwner)
	require.NoError(t, env.tokenService.RevokeAccessToken(ctx, "alice", at.Value))
	assert.ErrorIs(t, env.tokenService.RevokeAccessToken(ctx, "alice", at.Value), ErrInvalidToken)

	_, err := env.tokens.GetToken(ctx, at.Value)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestTokenService_RevokeConsumerTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	env.accessToken(t)
	env.authorizedRequestToken(t)

	n, err := env.tokenService.RevokeConsumerTokens(context.Background(), testConsumerKey)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := env.tokens.CountActiveTokens(context.Background(), models.TokenKindAccess)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTokenService_SweepExpiredTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	env.accessToken(t)
	env.authorizedRequestToken(t)

	env.clock.Advance(env.cfg.RequestTokenTTL + time.Second)
	n, err := env.tokenService.SweepExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the request token is past its window")

	env.clock.Advance(env.cfg.SessionTTL)
	n, err = env.tokenService.SweepExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTokenService_AccessTokenResponseTTLs(t *testing.T) {
	env := newTestEnv(t, nil)
	at := env.accessToken(t)

	expiresIn, authExpiresIn := env.tokenService.AccessTokenResponseTTLs(at)
	assert.Equal(t, int64(env.cfg.AccessTokenTTL.Seconds()), expiresIn)
	assert.Equal(t, int64(env.cfg.SessionTTL.Seconds()), authExpiresIn)
}
