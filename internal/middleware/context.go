package middleware

import (
	"github.com/go-authgate/applink/internal/models"

	"github.com/gin-gonic/gin"
)

// Session and gin context keys shared by the middleware chain and handlers.
const (
	SessionUserID       = "user_id"
	SessionUsername     = "username"
	SessionLoginAt      = "login_at"
	contextUserKey      = "user"
	contextSessionKey   = "session_user"
	oauthAuthenticated  = "oauth_authenticated"
	contextIdentityKey  = "identity"
	contextRequestIDKey = "request_id"
)

// OAuthAuthenticated reports whether the request was authenticated by a
// valid OAuth signature.
func OAuthAuthenticated(c *gin.Context) bool {
	return c.GetBool(oauthAuthenticated)
}

// GetUser returns the acting user: the session user, or the user an OAuth
// request acts as. Nil for anonymous and consumer-only requests.
func GetUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// GetSessionUser returns the user of the browser login session, or nil. A
// user acted as through an OAuth signature is never returned here, so
// consent, account and admin pages only ever act for a human who logged in.
func GetSessionUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextSessionKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// GetIdentity returns the OAuth identity of the request, or nil.
func GetIdentity(c *gin.Context) *models.Identity {
	if v, ok := c.Get(contextIdentityKey); ok {
		if identity, ok := v.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

// GetRequestID returns the ID assigned by RequestLogger.
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextRequestIDKey)
}
