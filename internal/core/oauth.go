package core

import (
	"context"
	"time"

	"github.com/go-authgate/applink/internal/models"
)

// TokenStore persists request and access tokens keyed by token value.
// Implementations must be safe for concurrent use and give read-your-writes
// consistency. A token past its expiry reads as absent.
type TokenStore interface {
	// GetToken returns store.ErrRecordNotFound when the token is absent or expired.
	GetToken(ctx context.Context, value string) (*models.Token, error)

	// GetRenewableToken returns an access token whose session window is still
	// open, even if the token itself has expired.
	GetRenewableToken(ctx context.Context, value string) (*models.Token, error)

	// PutToken inserts or replaces the token.
	PutToken(ctx context.Context, token *models.Token) error

	// AuthorizeRequestToken binds a live, not yet authorized request token to
	// authorizedBy and verifier in one conditional step and returns the
	// result. It returns store.ErrAlreadyAuthorized when another approval got
	// there first, and store.ErrRecordNotFound when the token is absent,
	// expired or not a request token.
	AuthorizeRequestToken(
		ctx context.Context,
		value, authorizedBy, verifier string,
		at time.Time,
	) (*models.Token, error)

	// RemovePendingRequestToken deletes a live request token nobody has
	// approved yet and returns it, with the errors of AuthorizeRequestToken.
	RemovePendingRequestToken(ctx context.Context, value string) (*models.Token, error)

	// RemoveToken deletes the token. Returns store.ErrRecordNotFound when no
	// token was deleted, so only one of several concurrent removers wins.
	RemoveToken(ctx context.Context, value string) error

	RemoveTokensByConsumer(ctx context.Context, consumerKey string) (int64, error)
	RemoveExpiredTokens(ctx context.Context) (int64, error)

	// ListAccessTokensByUser returns one page of a user's live access tokens
	// and the total count.
	ListAccessTokensByUser(
		ctx context.Context,
		username string,
		offset, limit int,
	) ([]models.Token, int64, error)

	CountActiveTokens(ctx context.Context, kind models.TokenKind) (int64, error)
}

// ConsumerRegistry resolves a consumer key to its registration.
type ConsumerRegistry interface {
	// GetConsumer returns store.ErrRecordNotFound for unknown keys.
	GetConsumer(ctx context.Context, key string) (*models.Consumer, error)
}

// Randomizer produces unguessable token values, secrets and verifiers.
type Randomizer interface {
	RandomAlphanumeric(length int) (string, error)
}

// Clock abstracts the current time.
type Clock interface {
	Now() time.Time
}

// Impersonator switches the effective identity for the remainder of a request.
// Every successful Impersonate must be paired with exactly one Release.
type Impersonator interface {
	Impersonate(ctx context.Context, identity *models.Identity) (context.Context, error)
	Release(ctx context.Context)
}
