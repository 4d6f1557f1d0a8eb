package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestAuthenticator verifies signed protected-resource requests.
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, req *oauth1.Request, kind oauth1.Kind) (*models.Identity, error)
}

// IdentityRunner runs the rest of a request as an authenticated identity.
type IdentityRunner interface {
	Run(ctx context.Context, identity *models.Identity, fn func(ctx context.Context) error) error
}

// OAuthFilterConfig wires the OAuth access filter.
type OAuthFilterConfig struct {
	Enabled       bool
	Classifier    *oauth1.Classifier
	Authenticator RequestAuthenticator
	Authorizer    IdentityRunner
	// PublicURL overrides scheme, host and path prefix of the signature
	// base string when the server runs behind a proxy.
	PublicURL *url.URL
	Logger    *zap.Logger
}

// OAuthFilter authenticates signed requests to protected resources. A
// request that authenticates runs the rest of the chain as its identity and
// is marked OAuth-authenticated. Anything else, including a bad signature,
// continues unauthenticated so the route's own guards decide.
func OAuthFilter(cfg OAuthFilterConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("oauth-filter")

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		req, err := oauth1.ParseRequest(c.Request, cfg.PublicURL)
		if err != nil {
			logger.Debug("unparseable OAuth parameters", zap.Error(err))
			req = nil
		}
		kind := cfg.Classifier.Classify(c.Request, req)
		if !kind.IsAccessAttempt() {
			c.Next()
			return
		}

		identity, err := cfg.Authenticator.Authenticate(c.Request.Context(), req, kind)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrAuthenticationFailed),
			errors.Is(err, services.ErrParameterAbsent):
			c.Next()
			return
		default:
			logger.Error("OAuth authentication unavailable", zap.Error(err))
			abortServerError(c)
			return
		}

		original := c.Request
		err = cfg.Authorizer.Run(original.Context(), identity, func(ctx context.Context) error {
			c.Set(oauthAuthenticated, true)
			c.Set(contextIdentityKey, identity)
			c.Request = original.WithContext(ctx)
			if user := models.GetUserFromContext(ctx); user != nil {
				c.Set(contextUserKey, user)
			}
			c.Next()
			return nil
		})
		c.Request = original

		switch {
		case err == nil:
		case errors.Is(err, services.ErrUserNotFound):
			logger.Warn("OAuth identity refers to an unknown user",
				zap.String("username", identity.Username),
				zap.String("consumer_key", identity.ConsumerKey),
			)
			c.Next()
		default:
			logger.Error("failed to act as OAuth identity", zap.Error(err))
			abortServerError(c)
		}
	}
}

// RequireOAuthEnabled answers 503 on OAuth endpoints while OAuth is switched off.
func RequireOAuthEnabled(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Data(http.StatusServiceUnavailable, oauth1.ContentTypeFormURLEncoded, []byte(
				oauth1.ProblemBody(oauth1.ProblemServiceUnavailable, "OAuth is disabled on this server"),
			))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortServerError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "server_error",
		"message": "Internal server error",
	})
}
