package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"
)

const (
	tokenValueLength    = 32
	tokenSecretLength   = 32
	sessionHandleLength = 32

	// OutOfBandCallback is the oauth_callback value for manual verifier entry.
	OutOfBandCallback = "oob"
)

// Token exchange results used as metric labels.
const (
	exchangeSuccess       = "success"
	exchangeInvalidToken  = "invalid_token"
	exchangeBadVerifier   = "invalid_verifier"
	exchangeNotAuthorized = "not_authorized"
	exchangeError         = "error"
)

// TokenWithConsumer combines token and consumer information for display
type TokenWithConsumer struct {
	models.Token
	ConsumerName string
}

// TokenService issues, exchanges, renews and revokes tokens.
type TokenService struct {
	tokens    core.TokenStore
	consumers core.ConsumerRegistry
	random    core.Randomizer
	clock     core.Clock
	config    *config.Config
	audit     *AuditService
	metrics   core.Recorder
}

func NewTokenService(
	tokens core.TokenStore,
	consumers core.ConsumerRegistry,
	random core.Randomizer,
	clock core.Clock,
	cfg *config.Config,
	auditService *AuditService,
	m core.Recorder,
) *TokenService {
	return &TokenService{
		tokens:    tokens,
		consumers: consumers,
		random:    random,
		clock:     clock,
		config:    cfg,
		audit:     auditService,
		metrics:   m,
	}
}

// IssueRequestToken creates an unauthorized request token for consumer.
// An empty or "oob" callback selects the out-of-band flow.
func (s *TokenService) IssueRequestToken(
	ctx context.Context,
	consumer *models.Consumer,
	callback string,
) (*models.Token, error) {
	if callback == OutOfBandCallback {
		callback = ""
	}
	if callback != "" && !util.IsValidCallbackURL(callback) {
		s.metrics.RecordTokenIssued(string(models.TokenKindRequest), false)
		return nil, ErrInvalidCallback
	}

	now := s.clock.Now()
	token, err := s.newToken(consumer.Key, models.TokenKindRequest)
	if err != nil {
		s.metrics.RecordTokenIssued(string(models.TokenKindRequest), false)
		return nil, err
	}
	token.CallbackURL = callback
	token.Timestamp = now
	token.ExpiresAt = now.Add(s.config.RequestTokenTTL)
	token.SessionExpiresAt = token.ExpiresAt

	if err := s.tokens.PutToken(ctx, token); err != nil {
		s.metrics.RecordTokenIssued(string(models.TokenKindRequest), false)
		s.metrics.RecordDatabaseQueryError("put_token")
		return nil, fmt.Errorf("failed to store request token: %w", err)
	}
	s.metrics.RecordTokenIssued(string(models.TokenKindRequest), true)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventRequestTokenIssued,
		ActorUsername: "consumer:" + consumer.Key,
		ResourceType:  models.ResourceRequestToken,
		ResourceID:    util.Fingerprint(token.Value),
		ResourceName:  consumer.Name,
		ConsumerKey:   consumer.Key,
		Action:        "Request token issued",
		Details:       models.AuditDetails{"out_of_band": token.IsOutOfBand()},
		Success:       true,
	})

	return token, nil
}

// GetRequestToken returns a live request token. Absent, expired and access
// tokens all yield ErrInvalidToken.
func (s *TokenService) GetRequestToken(ctx context.Context, value string) (*models.Token, error) {
	token, err := s.lookup(ctx, value)
	if err != nil {
		return nil, err
	}
	if !token.IsRequestToken() {
		return nil, ErrInvalidToken
	}
	return token, nil
}

// ExchangeRequestToken swaps an authorized request token and its verifier for
// an access token. The request token is consumed: of several concurrent
// exchanges at most one succeeds.
func (s *TokenService) ExchangeRequestToken(
	ctx context.Context,
	consumerKey, value, verifier string,
) (*models.Token, error) {
	start := time.Now()

	requestToken, err := s.GetRequestToken(ctx, value)
	if err == nil && requestToken.ConsumerKey != consumerKey {
		err = ErrInvalidToken
	}
	if err == nil && !requestToken.IsAuthorized() {
		err = ErrTokenNotAuthorized
	}
	if err == nil &&
		subtle.ConstantTimeCompare([]byte(requestToken.Verifier), []byte(verifier)) != 1 {
		err = ErrInvalidVerifier
	}
	if err == nil {
		err = s.consume(ctx, value)
	}
	if err != nil {
		s.metrics.RecordTokenExchange(exchangeResult(err), time.Since(start))
		return nil, err
	}

	accessToken, err := s.issueAccessToken(
		ctx,
		requestToken.ConsumerKey,
		requestToken.AuthorizedBy,
		requestToken.AuthorizedAt,
	)
	if err != nil {
		s.metrics.RecordTokenExchange(exchangeError, time.Since(start))
		return nil, err
	}
	s.metrics.RecordTokenExchange(exchangeSuccess, time.Since(start))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventAccessTokenIssued,
		ActorUsername: requestToken.AuthorizedBy,
		ResourceType:  models.ResourceAccessToken,
		ResourceID:    util.Fingerprint(accessToken.Value),
		ConsumerKey:   consumerKey,
		Action:        "Request token exchanged for access token",
		Details:       models.AuditDetails{"request_token": util.Fingerprint(requestToken.Value)},
		Success:       true,
	})

	return accessToken, nil
}

// RenewAccessToken reissues an access token whose session window is still
// open, without asking the user again. The old token is consumed and the new
// one starts fresh access and session windows.
func (s *TokenService) RenewAccessToken(
	ctx context.Context,
	consumerKey, value, sessionHandle string,
) (*models.Token, error) {
	old, err := s.tokens.GetRenewableToken(ctx, value)
	if err != nil {
		err = storeError(err, ErrInvalidToken, "failed to load access token")
	} else if old.ConsumerKey != consumerKey ||
		sessionHandle == "" ||
		subtle.ConstantTimeCompare([]byte(old.SessionHandle), []byte(sessionHandle)) != 1 {
		err = ErrInvalidToken
	}
	if err == nil {
		err = s.consume(ctx, value)
	}
	if err != nil {
		s.metrics.RecordTokenRenewal(false)
		return nil, err
	}

	renewed, err := s.issueAccessToken(ctx, old.ConsumerKey, old.AuthorizedBy, old.AuthorizedAt)
	if err != nil {
		s.metrics.RecordTokenRenewal(false)
		return nil, err
	}
	s.metrics.RecordTokenRenewal(true)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventAccessTokenRenewed,
		ActorUsername: old.AuthorizedBy,
		ResourceType:  models.ResourceAccessToken,
		ResourceID:    util.Fingerprint(renewed.Value),
		ConsumerKey:   consumerKey,
		Action:        "Access token renewed",
		Details:       models.AuditDetails{"previous_token": util.Fingerprint(old.Value)},
		Success:       true,
	})

	return renewed, nil
}

// ListAccessTokens returns one page of the user's live access tokens. page is
// clamped to [1, MaxPages].
func (s *TokenService) ListAccessTokens(
	ctx context.Context,
	username string,
	page int,
) ([]TokenWithConsumer, store.PaginationResult, error) {
	req := store.NewPageRequest(page, s.config.PageSize, s.config.MaxPages)

	tokens, total, err := s.tokens.ListAccessTokensByUser(ctx, username, req.Offset(), req.Size)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("list_access_tokens")
		return nil, store.PaginationResult{}, fmt.Errorf("failed to list access tokens: %w", err)
	}

	names := make(map[string]string)
	result := make([]TokenWithConsumer, 0, len(tokens))
	for _, tok := range tokens {
		name, ok := names[tok.ConsumerKey]
		if !ok {
			name = tok.ConsumerKey
			if consumer, err := s.consumers.GetConsumer(ctx, tok.ConsumerKey); err == nil {
				name = consumer.Name
			} else if !errors.Is(err, store.ErrRecordNotFound) {
				log.Printf("[OAuth] failed to resolve consumer %q: %v", tok.ConsumerKey, err)
			}
			names[tok.ConsumerKey] = name
		}
		result = append(result, TokenWithConsumer{Token: tok, ConsumerName: name})
	}

	return result, store.CalculatePagination(total, req), nil
}

// RevokeAccessToken removes one of username's access tokens.
func (s *TokenService) RevokeAccessToken(ctx context.Context, username, value string) error {
	token, err := s.tokens.GetRenewableToken(ctx, value)
	if err != nil {
		return storeError(err, ErrInvalidToken, "failed to load access token")
	}
	if token.AuthorizedBy != username {
		return ErrNotTokenOwner
	}
	if err := s.tokens.RemoveToken(ctx, value); err != nil {
		return storeError(err, ErrInvalidToken, "failed to revoke access token")
	}
	s.metrics.RecordTokenRevoked(string(models.TokenKindAccess), "user")

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventTokenRevoked,
		ActorUsername: username,
		ResourceType:  models.ResourceAccessToken,
		ResourceID:    util.Fingerprint(value),
		ConsumerKey:   token.ConsumerKey,
		Action:        "Access token revoked",
		Success:       true,
	})
	return nil
}

// RevokeConsumerTokens removes every token issued to consumerKey.
func (s *TokenService) RevokeConsumerTokens(ctx context.Context, consumerKey string) (int64, error) {
	n, err := s.tokens.RemoveTokensByConsumer(ctx, consumerKey)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke consumer tokens: %w", err)
	}
	if n > 0 {
		s.metrics.RecordTokenRevoked("all", "consumer_removed")
	}

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventConsumerTokensRevoked,
		Severity:     models.SeverityWarning,
		ResourceType: models.ResourceConsumer,
		ResourceID:   consumerKey,
		ConsumerKey:  consumerKey,
		Action:       "All consumer tokens revoked",
		Details:      models.AuditDetails{"count": n},
		Success:      true,
	})
	return n, nil
}

// SweepExpiredTokens purges tokens whose lifetime (or session window, for
// access tokens) has passed.
func (s *TokenService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.RemoveExpiredTokens(ctx)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("remove_expired_tokens")
		return 0, fmt.Errorf("failed to sweep expired tokens: %w", err)
	}
	if n > 0 {
		s.metrics.RecordTokensExpired(n)
		log.Printf("[OAuth] swept %d expired tokens", n)
	}
	return n, nil
}

// AccessTokenResponseTTLs returns oauth_expires_in and
// oauth_authorization_expires_in for token, in seconds.
func (s *TokenService) AccessTokenResponseTTLs(
	token *models.Token,
) (expiresIn, authorizationExpiresIn int64) {
	now := s.clock.Now()
	expiresIn = int64(token.ExpiresAt.Sub(now).Seconds())
	authorizationExpiresIn = int64(token.SessionExpiresAt.Sub(now).Seconds())
	return expiresIn, authorizationExpiresIn
}

func (s *TokenService) lookup(ctx context.Context, value string) (*models.Token, error) {
	if value == "" {
		return nil, ErrInvalidToken
	}
	token, err := s.tokens.GetToken(ctx, value)
	if err != nil {
		return nil, storeError(err, ErrInvalidToken, "failed to load token")
	}
	return token, nil
}

// consume removes a token that is about to be replaced. Losing a removal
// race means another request already used it.
func (s *TokenService) consume(ctx context.Context, value string) error {
	if err := s.tokens.RemoveToken(ctx, value); err != nil {
		return storeError(err, ErrInvalidToken, "failed to remove token")
	}
	return nil
}

func (s *TokenService) issueAccessToken(
	ctx context.Context,
	consumerKey, authorizedBy string,
	authorizedAt *time.Time,
) (*models.Token, error) {
	token, err := s.newToken(consumerKey, models.TokenKindAccess)
	if err != nil {
		s.metrics.RecordTokenIssued(string(models.TokenKindAccess), false)
		return nil, err
	}
	handle, err := s.random.RandomAlphanumeric(sessionHandleLength)
	if err != nil {
		s.metrics.RecordTokenIssued(string(models.TokenKindAccess), false)
		return nil, fmt.Errorf("failed to generate session handle: %w", err)
	}

	now := s.clock.Now()
	token.AuthorizedBy = authorizedBy
	token.AuthorizedAt = authorizedAt
	token.SessionHandle = handle
	token.Timestamp = now
	token.ExpiresAt = now.Add(s.config.AccessTokenTTL)
	token.SessionExpiresAt = now.Add(s.config.SessionTTL)

	if err := s.tokens.PutToken(ctx, token); err != nil {
		s.metrics.RecordTokenIssued(string(models.TokenKindAccess), false)
		s.metrics.RecordDatabaseQueryError("put_token")
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}
	s.metrics.RecordTokenIssued(string(models.TokenKindAccess), true)
	return token, nil
}

func (s *TokenService) newToken(consumerKey string, kind models.TokenKind) (*models.Token, error) {
	value, err := s.random.RandomAlphanumeric(tokenValueLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token value: %w", err)
	}
	secret, err := s.random.RandomAlphanumeric(tokenSecretLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	return &models.Token{
		Value:       value,
		Secret:      secret,
		ConsumerKey: consumerKey,
		Kind:        kind,
	}, nil
}

func exchangeResult(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return exchangeInvalidToken
	case errors.Is(err, ErrInvalidVerifier):
		return exchangeBadVerifier
	case errors.Is(err, ErrTokenNotAuthorized):
		return exchangeNotAuthorized
	default:
		return exchangeError
	}
}
