package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey int

const (
	userContextKey contextKey = iota
	identityContextKey
)

// SetUserContext returns a context carrying the given user.
func SetUserContext(ctx context.Context, user *User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext returns the user stored by SetUserContext, or nil.
func GetUserFromContext(ctx context.Context) *User {
	if user, ok := ctx.Value(userContextKey).(*User); ok {
		return user
	}
	return nil
}

// SetIdentityContext returns a context carrying the effective OAuth identity.
func SetIdentityContext(ctx context.Context, identity *Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetIdentityFromContext returns the identity stored by SetIdentityContext, or nil.
func GetIdentityFromContext(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityContextKey).(*Identity); ok {
		return identity
	}
	return nil
}

// GetUsernameFromContext extracts the username from the user object in context.
// It checks the Gin "user" key set by RequireAuth first, then the request context.
// Returns empty string if user cannot be determined.
func GetUsernameFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if userVal, exists := ginCtx.Get("user"); exists {
			if user, ok := userVal.(*User); ok {
				return user.Username
			}
		}
		if ginCtx.Request != nil {
			ctx = ginCtx.Request.Context()
		}
	}

	if user := GetUserFromContext(ctx); user != nil {
		return user.Username
	}
	return ""
}
