package services

import (
	"context"
	"errors"
	"testing"

	"github.com/go-authgate/applink/internal/mocks"
	"github.com/go-authgate/applink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ctxKey struct{}

func TestTrustedAuthorizer_Run(t *testing.T) {
	identity := &models.Identity{Username: "alice", ConsumerKey: testConsumerKey}

	t.Run("releases after success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		impersonator := mocks.NewMockImpersonator(ctrl)
		ictx := context.WithValue(context.Background(), ctxKey{}, "impersonated")

		gomock.InOrder(
			impersonator.EXPECT().Impersonate(gomock.Any(), identity).Return(ictx, nil),
			impersonator.EXPECT().Release(ictx).Times(1),
		)

		var seen any
		err := NewTrustedAuthorizer(impersonator).Run(context.Background(), identity,
			func(ctx context.Context) error {
				seen = ctx.Value(ctxKey{})
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, "impersonated", seen)
	})

	t.Run("releases after failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		impersonator := mocks.NewMockImpersonator(ctrl)
		impersonator.EXPECT().Impersonate(gomock.Any(), identity).Return(context.Background(), nil)
		impersonator.EXPECT().Release(gomock.Any()).Times(1)

		boom := errors.New("build failed")
		err := NewTrustedAuthorizer(impersonator).Run(context.Background(), identity,
			func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("releases after panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		impersonator := mocks.NewMockImpersonator(ctrl)
		impersonator.EXPECT().Impersonate(gomock.Any(), identity).Return(context.Background(), nil)
		impersonator.EXPECT().Release(gomock.Any()).Times(1)

		assert.PanicsWithValue(t, "handler exploded", func() {
			_ = NewTrustedAuthorizer(impersonator).Run(context.Background(), identity,
				func(context.Context) error { panic("handler exploded") })
		})
	})

	t.Run("impersonation failure skips work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		impersonator := mocks.NewMockImpersonator(ctrl)
		impersonator.EXPECT().Impersonate(gomock.Any(), identity).
			Return(nil, ErrUserNotFound)

		called := false
		err := NewTrustedAuthorizer(impersonator).Run(context.Background(), identity,
			func(context.Context) error {
				called = true
				return nil
			})
		assert.ErrorIs(t, err, ErrImpersonationFailed)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.False(t, called)
	})
}
