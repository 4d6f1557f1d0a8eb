package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
)

var _ core.Impersonator = (*SessionImpersonator)(nil)

// UserResolver loads the user an identity refers to.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionImpersonator makes an OAuth identity the acting user of a request
// by placing it, and its user record, on the request context.
type SessionImpersonator struct {
	users   UserResolver
	metrics core.Recorder
	active  atomic.Int64
}

func NewSessionImpersonator(users UserResolver, m core.Recorder) *SessionImpersonator {
	return &SessionImpersonator{users: users, metrics: m}
}

// Impersonate returns a context acting as identity. A consumer-level 2LO
// identity carries no user.
func (i *SessionImpersonator) Impersonate(
	ctx context.Context,
	identity *models.Identity,
) (context.Context, error) {
	if identity == nil {
		return nil, errors.New("impersonate: nil identity")
	}

	if !identity.IsConsumerOnly() {
		user, err := i.users.GetUserByUsername(ctx, identity.Username)
		if err != nil {
			return nil, fmt.Errorf("impersonate %q: %w", identity.Username, err)
		}
		ctx = models.SetUserContext(ctx, user)
	}
	ctx = models.SetIdentityContext(ctx, identity)

	i.metrics.SetActiveImpersonations(i.active.Add(1))
	return ctx, nil
}

// Release ends an impersonation started by Impersonate.
func (i *SessionImpersonator) Release(context.Context) {
	i.metrics.SetActiveImpersonations(i.active.Add(-1))
}

// Active returns the number of impersonations in flight.
func (i *SessionImpersonator) Active() int64 {
	return i.active.Load()
}
