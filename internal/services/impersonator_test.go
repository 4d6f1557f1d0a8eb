package services

import (
	"context"
	"testing"

	"github.com/go-authgate/applink/internal/mocks"
	"github.com/go-authgate/applink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func TestSessionImpersonator(t *testing.T) {
	alice := &models.User{ID: "u-1", Username: "alice"}
	users := fakeUsers{"alice": alice}

	t.Run("user identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recorder := mocks.NewMockRecorder(ctrl)
		gomock.InOrder(
			recorder.EXPECT().SetActiveImpersonations(int64(1)),
			recorder.EXPECT().SetActiveImpersonations(int64(0)),
		)

		imp := NewSessionImpersonator(users, recorder)
		identity := &models.Identity{Username: "alice", ConsumerKey: testConsumerKey}

		ctx, err := imp.Impersonate(context.Background(), identity)
		require.NoError(t, err)
		assert.Equal(t, alice, models.GetUserFromContext(ctx))
		assert.Equal(t, identity, models.GetIdentityFromContext(ctx))
		assert.Equal(t, int64(1), imp.Active())

		imp.Release(ctx)
		assert.Equal(t, int64(0), imp.Active())
	})

	t.Run("consumer-only identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recorder := mocks.NewMockRecorder(ctrl)
		recorder.EXPECT().SetActiveImpersonations(gomock.Any()).Times(2)

		imp := NewSessionImpersonator(users, recorder)
		identity := &models.Identity{ConsumerKey: testConsumerKey, TwoLegged: true}

		ctx, err := imp.Impersonate(context.Background(), identity)
		require.NoError(t, err)
		assert.Nil(t, models.GetUserFromContext(ctx))
		assert.Equal(t, identity, models.GetIdentityFromContext(ctx))
		imp.Release(ctx)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recorder := mocks.NewMockRecorder(ctrl)

		imp := NewSessionImpersonator(users, recorder)
		_, err := imp.Impersonate(context.Background(), &models.Identity{Username: "mallory"})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, int64(0), imp.Active())
	})
}
