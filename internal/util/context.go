package util

import (
	"context"

	"github.com/go-authgate/applink/internal/models"

	"github.com/gin-gonic/gin"
)

type ipContextKey struct{}

// IPMiddleware copies the client IP into the request context so services
// can attribute audit events without access to the gin context.
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(SetIPContext(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// SetIPContext returns a context carrying the client IP.
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ipContextKey{}, ip)
}

// GetIPFromContext returns the client IP, or "" outside a request.
func GetIPFromContext(ctx context.Context) string {
	if c, ok := ctx.(*gin.Context); ok {
		return c.ClientIP()
	}
	ip, _ := ctx.Value(ipContextKey{}).(string)
	return ip
}

// ActorFromContext names whoever the request acts for: the logged-in user,
// otherwise the principal of the OAuth identity.
func ActorFromContext(ctx context.Context) string {
	if username := models.GetUsernameFromContext(ctx); username != "" {
		return username
	}
	if c, ok := ctx.(*gin.Context); ok && c.Request != nil {
		ctx = c.Request.Context()
	}
	if identity := models.GetIdentityFromContext(ctx); identity != nil {
		return identity.Principal()
	}
	return ""
}
