package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"
)

const verifierLength = 20

// ProblemUserRefused is the oauth_problem sent to the consumer on denial.
const ProblemUserRefused = "user_refused"

// ConsentRequest is a request token presented to the user for approval.
type ConsentRequest struct {
	Token    *models.Token
	Consumer *models.Consumer
}

// AuthorizationService runs the consent step that binds a request token to
// a user. A token moves from pending to authorized (verifier issued) or is
// removed on denial. Expired tokens behave exactly like absent ones.
type AuthorizationService struct {
	tokens    core.TokenStore
	consumers core.ConsumerRegistry
	random    core.Randomizer
	clock     core.Clock
	audit     *AuditService
	metrics   core.Recorder
}

func NewAuthorizationService(
	tokens core.TokenStore,
	consumers core.ConsumerRegistry,
	random core.Randomizer,
	clock core.Clock,
	auditService *AuditService,
	m core.Recorder,
) *AuthorizationService {
	return &AuthorizationService{
		tokens:    tokens,
		consumers: consumers,
		random:    random,
		clock:     clock,
		audit:     auditService,
		metrics:   m,
	}
}

// PrepareConsent loads a pending request token and its consumer for display.
func (s *AuthorizationService) PrepareConsent(
	ctx context.Context,
	value string,
) (*ConsentRequest, error) {
	token, err := s.pendingToken(ctx, value)
	if err != nil {
		return nil, err
	}

	consumer, err := s.consumers.GetConsumer(ctx, token.ConsumerKey)
	if err != nil {
		// A token whose consumer is gone cannot be exchanged anyway
		return nil, storeError(err, ErrInvalidToken, "failed to load consumer")
	}

	return &ConsentRequest{Token: token, Consumer: consumer}, nil
}

// Approve authorizes the request token for user and issues its verifier.
// The store applies the approval only while the token is still pending, so
// of two racing approvals exactly one wins and a token already exchanged
// can never be brought back.
func (s *AuthorizationService) Approve(
	ctx context.Context,
	value string,
	user *models.User,
) (*models.Token, error) {
	if user == nil || user.Username == "" {
		return nil, ErrAnonymousUser
	}

	token, err := s.pendingToken(ctx, value)
	if err != nil {
		return nil, err
	}

	verifier, err := s.random.RandomAlphanumeric(verifierLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verifier: %w", err)
	}

	now := s.clock.Now()
	token, err = s.tokens.AuthorizeRequestToken(ctx, token.Value, user.Username, verifier, now)
	if err != nil {
		return nil, s.decisionError(err, "authorize_request_token")
	}
	s.metrics.RecordTokenAuthorized(now.Sub(token.Timestamp))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventRequestTokenAuthorized,
		ActorUserID:   user.ID,
		ActorUsername: user.Username,
		ResourceType:  models.ResourceRequestToken,
		ResourceID:    util.Fingerprint(token.Value),
		ConsumerKey:   token.ConsumerKey,
		Action:        "Request token authorized",
		Success:       true,
	})

	return token, nil
}

// Deny removes the request token. The returned token carries the callback
// the consumer should be sent back to.
func (s *AuthorizationService) Deny(
	ctx context.Context,
	value string,
	user *models.User,
) (*models.Token, error) {
	if user == nil || user.Username == "" {
		return nil, ErrAnonymousUser
	}

	if _, err := s.pendingToken(ctx, value); err != nil {
		return nil, err
	}
	token, err := s.tokens.RemovePendingRequestToken(ctx, value)
	if err != nil {
		return nil, s.decisionError(err, "remove_request_token")
	}
	s.metrics.RecordTokenDenied()

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventRequestTokenDenied,
		ActorUserID:   user.ID,
		ActorUsername: user.Username,
		ResourceType:  models.ResourceRequestToken,
		ResourceID:    util.Fingerprint(token.Value),
		ConsumerKey:   token.ConsumerKey,
		Action:        "Request token denied",
		Success:       true,
	})

	return token, nil
}

// decisionError maps a failed conditional write on a request token.
func (s *AuthorizationService) decisionError(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrAlreadyAuthorized):
		return ErrTokenAlreadyAuthorized
	case errors.Is(err, store.ErrRecordNotFound):
		return ErrInvalidToken
	}
	s.metrics.RecordDatabaseQueryError(op)
	return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), err)
}

// pendingToken returns a live, not yet authorized request token.
func (s *AuthorizationService) pendingToken(
	ctx context.Context,
	value string,
) (*models.Token, error) {
	if value == "" {
		return nil, ErrInvalidToken
	}
	token, err := s.tokens.GetToken(ctx, value)
	if err != nil {
		return nil, storeError(err, ErrInvalidToken, "failed to load request token")
	}
	if !token.IsRequestToken() {
		return nil, ErrInvalidToken
	}
	if token.IsAuthorized() {
		return nil, ErrTokenAlreadyAuthorized
	}
	return token, nil
}

// CallbackRedirect builds the URL the user agent is sent to after the
// consent decision. ok is false for out-of-band tokens.
func CallbackRedirect(token *models.Token, denied bool) (redirect string, ok bool) {
	if token.IsOutOfBand() {
		return "", false
	}

	u, err := url.Parse(token.CallbackURL)
	if err != nil {
		return "", false
	}

	q := u.Query()
	q.Set("oauth_token", token.Value)
	if denied {
		q.Set("oauth_problem", ProblemUserRefused)
	} else {
		q.Set("oauth_verifier", token.Verifier)
	}
	u.RawQuery = q.Encode()

	return u.String(), true
}
