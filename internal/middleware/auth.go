package middleware

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// UserLoader resolves the user stored in a login session.
type UserLoader interface {
	GetUserByID(id string) (*models.User, error)
}

// LoadSessionUser attaches the logged-in user, if any, to the request.
// Sessions whose user no longer exists are cleared.
func LoadSessionUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserID).(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		user, err := users.GetUserByID(userID)
		switch {
		case err == nil:
			setUser(c, user)
		case errors.Is(err, services.ErrUserNotFound):
			session.Clear()
			if err := session.Save(); err != nil {
				log.Printf("[Auth] Failed to clear stale session: %v", err)
			}
		default:
			log.Printf("[Auth] Failed to load session user %s: %v", userID, err)
			templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(
				templates.ErrorPageProps{Error: "Internal Server Error", Message: "Failed to load your session."},
			))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(contextSessionKey, user)
	c.Set(contextUserKey, user)
	c.Request = c.Request.WithContext(models.SetUserContext(c.Request.Context(), user))
}

// RequireAuth requires an interactive login. Anonymous browsers are sent to
// the login page and return to the current URL afterwards. An OAuth identity
// does not count as a login.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSessionUser(c) == nil {
			c.Redirect(http.StatusFound, "/login?redirect="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireIdentity guards protected resources. Either a session user or an
// OAuth identity satisfies it; otherwise the client is challenged for OAuth.
func RequireIdentity(realm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c) != nil || GetIdentity(c) != nil {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", oauth1.Challenge(realm))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
	}
}

// RequireAdmin requires the logged-in user to have the admin role. It must
// run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetSessionUser(c)
		if user == nil || !user.IsAdmin() {
			templates.RenderTempl(c, http.StatusForbidden, templates.ErrorPage(
				templates.ErrorPageProps{Error: "Forbidden", Message: "Admin access required"},
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
