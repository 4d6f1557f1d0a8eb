package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testRequestTokenPath = "/bitbucket/oauth/request-token"
	testAccessTokenPath  = "/bitbucket/oauth/access-token"
	testAuthorizePath    = "/bitbucket/oauth/authorize"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("test_session", store))

	return r
}

func testClassifier() *oauth1.Classifier {
	return oauth1.NewClassifier(testRequestTokenPath, testAccessTokenPath)
}

// fakeUsers resolves users by ID and by username.
type fakeUsers struct {
	byID map[string]*models.User
	err  error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]*models.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUserByID(id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

// loginRoute adds a route that logs the given user in.
func loginRoute(r *gin.Engine) {
	r.GET("/test-login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserID, c.Param("id"))
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})
}

// login performs the test login and returns the session cookies.
func login(t *testing.T, r *gin.Engine, userID string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test-login/"+userID, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}
