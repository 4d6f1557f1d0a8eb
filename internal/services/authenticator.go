package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Authentication modes used in metrics and logs.
const (
	ModeRequestToken = "request_token"
	ModeAccessToken  = "access_token"
)

var (
	errUnknownConsumer = errors.New("unknown consumer")
	errUnknownToken    = errors.New("unknown or expired token")
	errTokenMismatch   = errors.New("token was not issued to this consumer")
	errNotAccessToken  = errors.New("token is not an access token")
	errTwoLODisabled   = errors.New("2-legged OAuth is not allowed for this consumer")
	errTimestampSkew   = errors.New("timestamp outside the allowed window")
	errNonceReplay     = errors.New("nonce already used")
	errUnexpectedToken = errors.New("oauth_token must be empty when requesting a token")
	errEmptyNonce      = errors.New("empty nonce")
	errMethodRejected  = errors.New("signature method not registered for this consumer")
)

var signedParams = []string{
	oauth1.ParamConsumerKey,
	oauth1.ParamSignatureMethod,
	oauth1.ParamSignature,
	oauth1.ParamTimestamp,
	oauth1.ParamNonce,
}

var tokenSignedParams = append([]string{oauth1.ParamToken}, signedParams...)

// AuthenticatorService verifies signed OAuth requests. Every rejection is
// reported as ErrAuthenticationFailed with the cause logged; an unreachable
// store or nonce cache is returned as a wrapped error instead.
type AuthenticatorService struct {
	tokens    core.TokenStore
	consumers core.ConsumerRegistry
	nonces    core.Cache[bool]
	clock     core.Clock
	config    *config.Config
	audit     *AuditService
	metrics   core.Recorder
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewAuthenticatorService(
	tokens core.TokenStore,
	consumers core.ConsumerRegistry,
	nonces core.Cache[bool],
	clock core.Clock,
	cfg *config.Config,
	auditService *AuditService,
	m core.Recorder,
	logger *zap.Logger,
) *AuthenticatorService {
	if logger == nil {
		logger = zap.L()
	}
	return &AuthenticatorService{
		tokens:    tokens,
		consumers: consumers,
		nonces:    nonces,
		clock:     clock,
		config:    cfg,
		audit:     auditService,
		metrics:   m,
		logger:    logger.Named("oauth"),
		tracer:    otel.Tracer("github.com/go-authgate/applink/internal/services"),
	}
}

// Authenticate verifies a 2LO or 3LO protected-resource request and returns
// the identity it acts as.
func (s *AuthenticatorService) Authenticate(
	ctx context.Context,
	req *oauth1.Request,
	kind oauth1.Kind,
) (*models.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "AuthenticatorService.Authenticate")
	defer span.End()
	start := time.Now()
	mode := kind.String()
	span.SetAttributes(attribute.String("oauth.mode", mode))

	if !kind.IsAccessAttempt() || !req.HasAll(tokenSignedParams...) {
		return nil, s.reject(ctx, span, req, mode, start, ErrParameterAbsent)
	}

	consumer, err := s.lookupConsumer(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, span, req, mode, start, err)
	}

	identity := &models.Identity{ConsumerKey: consumer.Key}
	var tokenSecret string

	switch kind {
	case oauth1.KindThreeLegged:
		token, err := s.tokens.GetToken(ctx, req.Params.Get(oauth1.ParamToken))
		if err != nil {
			err = storeError(err, errUnknownToken, "failed to load token")
			return nil, s.fail(ctx, span, req, mode, start, err)
		}
		if !token.IsAccessToken() {
			return nil, s.reject(ctx, span, req, mode, start, errNotAccessToken)
		}
		if token.ConsumerKey != consumer.Key {
			return nil, s.reject(ctx, span, req, mode, start, errTokenMismatch)
		}
		tokenSecret = token.Secret
		identity.Username = token.AuthorizedBy

	case oauth1.KindTwoLegged:
		if !consumer.TwoLOAllowed {
			return nil, s.reject(ctx, span, req, mode, start, errTwoLODisabled)
		}
		identity.Username = consumer.TwoLOExecutor
		identity.TwoLegged = true
	}

	if err := s.verify(ctx, req, consumer, tokenSecret); err != nil {
		return nil, s.fail(ctx, span, req, mode, start, err)
	}

	s.succeed(span, mode, start, identity)
	return identity, nil
}

// AuthenticateConsumer verifies a request-token request, which is signed with
// the consumer secret alone.
func (s *AuthenticatorService) AuthenticateConsumer(
	ctx context.Context,
	req *oauth1.Request,
) (*models.Consumer, error) {
	ctx, span := s.tracer.Start(ctx, "AuthenticatorService.AuthenticateConsumer")
	defer span.End()
	start := time.Now()
	mode := ModeRequestToken

	if !req.HasAll(signedParams...) {
		return nil, s.reject(ctx, span, req, mode, start, ErrParameterAbsent)
	}
	if req.Params.Get(oauth1.ParamToken) != "" {
		return nil, s.reject(ctx, span, req, mode, start, errUnexpectedToken)
	}

	consumer, err := s.lookupConsumer(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, span, req, mode, start, err)
	}
	if err := s.verify(ctx, req, consumer, ""); err != nil {
		return nil, s.fail(ctx, span, req, mode, start, err)
	}

	s.succeed(span, mode, start, &models.Identity{ConsumerKey: consumer.Key})
	return consumer, nil
}

// AuthenticateExchange verifies an access-token request. With
// oauth_session_handle it resolves an access token inside its session window
// for renewal, otherwise a live request token. An unknown token is reported
// as ErrInvalidToken so the endpoint can answer token_rejected.
func (s *AuthenticatorService) AuthenticateExchange(
	ctx context.Context,
	req *oauth1.Request,
) (*models.Consumer, *models.Token, error) {
	ctx, span := s.tracer.Start(ctx, "AuthenticatorService.AuthenticateExchange")
	defer span.End()
	start := time.Now()
	mode := ModeAccessToken

	if !req.HasAll(tokenSignedParams...) {
		return nil, nil, s.reject(ctx, span, req, mode, start, ErrParameterAbsent)
	}

	consumer, err := s.lookupConsumer(ctx, req)
	if err != nil {
		return nil, nil, s.fail(ctx, span, req, mode, start, err)
	}

	value := req.Params.Get(oauth1.ParamToken)
	_, renewal := req.Params.Lookup(oauth1.ParamSessionHandle)

	var token *models.Token
	switch {
	case value == "":
		err = ErrInvalidToken
	case renewal:
		token, err = s.tokens.GetRenewableToken(ctx, value)
	default:
		token, err = s.tokens.GetToken(ctx, value)
		if err == nil && !token.IsRequestToken() {
			err = ErrInvalidToken
		}
	}
	if err == nil && token.ConsumerKey != consumer.Key {
		err = ErrInvalidToken
	}
	if err != nil {
		err = storeError(err, ErrInvalidToken, "failed to load token")
		if isInfrastructureError(err) {
			return nil, nil, s.fail(ctx, span, req, mode, start, err)
		}
		s.recordFailure(ctx, span, req, mode, start, err)
		return nil, nil, ErrInvalidToken
	}

	if err := s.verify(ctx, req, consumer, token.Secret); err != nil {
		return nil, nil, s.fail(ctx, span, req, mode, start, err)
	}

	s.succeed(span, mode, start, &models.Identity{
		Username:    token.AuthorizedBy,
		ConsumerKey: consumer.Key,
	})
	return consumer, token, nil
}

func (s *AuthenticatorService) lookupConsumer(
	ctx context.Context,
	req *oauth1.Request,
) (*models.Consumer, error) {
	consumer, err := s.consumers.GetConsumer(ctx, req.Params.Get(oauth1.ParamConsumerKey))
	if err != nil {
		return nil, storeError(err, errUnknownConsumer, "failed to load consumer")
	}
	return consumer, nil
}

// verify checks timestamp, signature and nonce, in that order, so a forged
// request never consumes a nonce.
func (s *AuthenticatorService) verify(
	ctx context.Context,
	req *oauth1.Request,
	consumer *models.Consumer,
	tokenSecret string,
) error {
	ts, err := req.Timestamp()
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if skew := now.Sub(ts); skew > s.config.TimestampSkew || skew < -s.config.TimestampSkew {
		return fmt.Errorf("%w: %s", errTimestampSkew, skew)
	}

	creds := oauth1.Credentials{
		ConsumerSecret: consumer.Secret,
		TokenSecret:    tokenSecret,
	}
	// A consumer may only sign with the credentials it registered. An RSA-only
	// consumer has no secret, so "&" would otherwise be a valid HMAC key.
	switch method := req.Params.Get(oauth1.ParamSignatureMethod); method {
	case oauth1.MethodRSASHA1:
		if !consumer.HasPublicKey() {
			return fmt.Errorf("%w: %s", errMethodRejected, method)
		}
		if creds.PublicKey, err = oauth1.ParsePublicKey(consumer.PublicKey); err != nil {
			return err
		}
	case oauth1.MethodHMACSHA1, oauth1.MethodPlaintext:
		if consumer.Secret == "" {
			return fmt.Errorf("%w: %s", errMethodRejected, method)
		}
	}
	if err := req.Verify(creds); err != nil {
		return err
	}

	nonce := req.Params.Get(oauth1.ParamNonce)
	if nonce == "" {
		return errEmptyNonce
	}
	stored, err := s.nonces.SetNX(ctx, consumer.Key+":"+nonce, true, s.config.NonceTTL)
	if err != nil {
		return fmt.Errorf("nonce cache unavailable: %w", err)
	}
	if !stored {
		s.metrics.RecordNonceReplay()
		s.audit.Log(ctx, AuditLogEntry{
			EventType:     models.EventNonceReplay,
			Severity:      models.SeverityWarning,
			ActorUsername: "consumer:" + consumer.Key,
			ResourceType:  models.ResourceConsumer,
			ResourceID:    consumer.Key,
			ConsumerKey:   consumer.Key,
			Action:        "Replayed OAuth nonce rejected",
			Details:       models.AuditDetails{"nonce": nonce},
			Success:       false,
		})
		return errNonceReplay
	}

	return nil
}

// fail turns a verification error into the caller-facing outcome:
// infrastructure errors pass through, everything else becomes
// ErrAuthenticationFailed.
func (s *AuthenticatorService) fail(
	ctx context.Context,
	span trace.Span,
	req *oauth1.Request,
	mode string,
	start time.Time,
	err error,
) error {
	if isInfrastructureError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication backend unavailable")
		s.metrics.RecordOAuthAuthentication(mode, false, time.Since(start))
		s.logger.Error("oauth authentication backend failure",
			zap.String("mode", mode),
			zap.String("consumer_key", req.Params.Get(oauth1.ParamConsumerKey)),
			zap.Error(err),
		)
		return err
	}
	return s.reject(ctx, span, req, mode, start, err)
}

func (s *AuthenticatorService) reject(
	ctx context.Context,
	span trace.Span,
	req *oauth1.Request,
	mode string,
	start time.Time,
	cause error,
) error {
	s.recordFailure(ctx, span, req, mode, start, cause)
	if errors.Is(cause, ErrParameterAbsent) {
		return ErrParameterAbsent
	}
	return ErrAuthenticationFailed
}

func (s *AuthenticatorService) recordFailure(
	ctx context.Context,
	span trace.Span,
	req *oauth1.Request,
	mode string,
	start time.Time,
	cause error,
) {
	consumerKey := req.Params.Get(oauth1.ParamConsumerKey)

	span.RecordError(cause)
	span.SetStatus(codes.Error, "authentication failed")
	s.metrics.RecordOAuthAuthentication(mode, false, time.Since(start))
	s.logger.Warn("oauth request rejected",
		zap.String("mode", mode),
		zap.String("consumer_key", consumerKey),
		zap.String("uri", req.URI),
		zap.Error(cause),
	)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventOAuthRequestRejected,
		Severity:      models.SeverityWarning,
		ActorUsername: "consumer:" + consumerKey,
		ResourceType:  models.ResourceProtectedPath,
		ResourceName:  req.URI,
		ConsumerKey:   consumerKey,
		Action:        "OAuth request rejected",
		Details:       models.AuditDetails{"mode": mode},
		Success:       false,
		ErrorMessage:  cause.Error(),
		RequestMethod: req.Method,
	})
}

func (s *AuthenticatorService) succeed(
	span trace.Span,
	mode string,
	start time.Time,
	identity *models.Identity,
) {
	span.SetAttributes(
		attribute.String("oauth.consumer_key", identity.ConsumerKey),
		attribute.String("oauth.principal", identity.Principal()),
	)
	s.metrics.RecordOAuthAuthentication(mode, true, time.Since(start))
	s.logger.Debug("oauth request authenticated",
		zap.String("mode", mode),
		zap.String("consumer_key", identity.ConsumerKey),
		zap.String("principal", identity.Principal()),
	)
}

// isInfrastructureError reports whether err came from a backend rather than
// from the request itself.
func isInfrastructureError(err error) bool {
	for _, known := range []error{
		ErrParameterAbsent,
		ErrInvalidToken,
		errUnknownConsumer,
		errUnknownToken,
		errTokenMismatch,
		errNotAccessToken,
		errTwoLODisabled,
		errTimestampSkew,
		errNonceReplay,
		errUnexpectedToken,
		errEmptyNonce,
		errMethodRejected,
		oauth1.ErrMissingParameter,
		oauth1.ErrInsecurePlaintext,
		oauth1.ErrInvalidSignature,
		oauth1.ErrUnsupportedSignatureMethod,
		oauth1.ErrInvalidTimestamp,
		oauth1.ErrInvalidPublicKey,
		store.ErrRecordNotFound,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
