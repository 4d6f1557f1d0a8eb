package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
)

// ErrImpersonationFailed is returned when the identity cannot be assumed.
var ErrImpersonationFailed = errors.New("failed to act as the authenticated identity")

// TrustedAuthorizer runs a unit of work as an authenticated identity.
type TrustedAuthorizer struct {
	impersonator core.Impersonator
}

func NewTrustedAuthorizer(impersonator core.Impersonator) *TrustedAuthorizer {
	return &TrustedAuthorizer{impersonator: impersonator}
}

// Run calls fn with a context acting as identity. The impersonation is
// released exactly once when fn returns or panics.
func (a *TrustedAuthorizer) Run(
	ctx context.Context,
	identity *models.Identity,
	fn func(ctx context.Context) error,
) error {
	ictx, err := a.impersonator.Impersonate(ctx, identity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImpersonationFailed, err)
	}
	defer a.impersonator.Release(ictx)

	return fn(ictx)
}
