package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-authgate/applink/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSessionUser(t *testing.T) {
	alice := &models.User{ID: "u-1", Username: "alice", Role: "user"}
	users := newFakeUsers(alice)

	r := setupTestRouter()
	loginRoute(r)
	r.Use(LoadSessionUser(users))
	r.GET("/whoami", func(c *gin.Context) {
		if user := models.GetUserFromContext(c.Request.Context()); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("logged in", func(t *testing.T) {
		cookies := login(t, r, "u-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookies))
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("deleted user clears the session", func(t *testing.T) {
		cookies := login(t, r, "u-gone")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookies))
		assert.Equal(t, "anonymous", w.Body.String())
		assert.NotEmpty(t, w.Result().Cookies(), "session cookie should be rewritten")
	})

	t.Run("user store unavailable", func(t *testing.T) {
		cookies := login(t, r, "u-1")
		users.err = errors.New("database is locked")
		defer func() { users.err = nil }()

		w := httptest.NewRecorder()
		r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookies))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	r := setupTestRouter()
	loginRoute(r)
	r.Use(LoadSessionUser(newFakeUsers(&models.User{ID: "u-1", Username: "alice"})))
	r.GET("/account/tokens", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUser(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account/tokens?page=2", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Faccount%2Ftokens%3Fpage%3D2", w.Header().Get("Location"))

	cookies := login(t, r, "u-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/account/tokens", nil), cookies))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequireIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		setup      gin.HandlerFunc
		wantStatus int
	}{
		{
			name:       "anonymous",
			setup:      func(c *gin.Context) { c.Next() },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "session user",
			setup: func(c *gin.Context) {
				c.Set(contextUserKey, &models.User{Username: "alice"})
				c.Next()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "consumer-only OAuth identity",
			setup: func(c *gin.Context) {
				c.Set(contextIdentityKey, &models.Identity{ConsumerKey: "jenkins", TwoLegged: true})
				c.Next()
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/rest/api/1.0/whoami", tt.setup, RequireIdentity("https://ci.example.com"),
				func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rest/api/1.0/whoami", nil))
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `OAuth realm="https://ci.example.com"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"no user", nil, http.StatusForbidden},
		{"regular user", &models.User{Username: "alice", Role: "user"}, http.StatusForbidden},
		{"admin", &models.User{Username: "admin", Role: "admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin/consumers", func(c *gin.Context) {
				if tt.user != nil {
					setUser(c, tt.user)
				}
				c.Next()
			}, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/consumers", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestInteractiveGuards_IgnoreOAuthUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actAs := func(c *gin.Context) {
		c.Set(oauthAuthenticated, true)
		c.Set(contextIdentityKey, &models.Identity{Username: "admin", ConsumerKey: "jenkins", TwoLegged: true})
		c.Set(contextUserKey, &models.User{Username: "admin", Role: models.RoleAdmin})
		c.Next()
	}

	r := gin.New()
	r.POST("/bitbucket/oauth/authorize", actAs, RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin/consumers", actAs, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bitbucket/oauth/authorize", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/consumers", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
