package services

import (
	"errors"
	"fmt"

	"github.com/go-authgate/applink/internal/store"
)

var (
	// Token exchange failures, reported to consumers as oauth_problem values.
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidVerifier    = errors.New("invalid verifier")
	ErrTokenNotAuthorized = errors.New("token not authorized")
	ErrInvalidCallback    = errors.New("invalid callback URL")

	// ErrAuthenticationFailed is the only error a rejected signed request
	// produces. The cause is logged, never returned.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrParameterAbsent means a required oauth_* parameter was not sent.
	ErrParameterAbsent = errors.New("required OAuth parameter absent")

	// Consent failures, shown as form errors.
	ErrAnonymousUser          = errors.New("you must be logged in to authorize a token")
	ErrTokenAlreadyAuthorized = errors.New("token has already been authorized")

	ErrNotTokenOwner      = errors.New("token does not belong to this user")
	ErrConsumerNotFound   = errors.New("consumer not found")
	ErrInvalidConsumer    = errors.New("invalid consumer registration")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// storeError maps a store miss to notFoundErr and wraps anything else, so
// an unreachable store never reads as an absent record.
func storeError(err, notFoundErr error, op string) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return notFoundErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
