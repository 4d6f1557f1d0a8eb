package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/mocks"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testBuildPatterns = []string{"/job/*/build", "/git/notifyCommit"}
	testTokenPaths    = []string{testRequestTokenPath, testAccessTokenPath}
	testSessionPaths  = []string{testAuthorizePath, "/account", "/admin"}
)

func csrfRouter(cfg CSRFConfig, before ...gin.HandlerFunc) *gin.Engine {
	r := setupTestRouter()
	r.Use(before...)
	r.Use(CSRFMiddleware(cfg))

	r.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	ok := func(c *gin.Context) { c.String(http.StatusOK, "done") }
	r.POST("/account/tokens/revoke", ok)
	r.POST(testRequestTokenPath, ok)
	r.POST(testAccessTokenPath, ok)
	r.POST("/mirror"+testRequestTokenPath, ok)
	r.POST(testAuthorizePath, ok)
	r.POST("/rest/api/1.0/repos", ok)
	r.POST("/job/:name/build", ok)
	r.POST("/git/notifyCommit", ok)
	return r
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCSRFMiddleware_TokenRoundTrip(t *testing.T) {
	r := csrfRouter(CSRFConfig{TokenPaths: testTokenPaths, Metrics: metrics.NewNoopMetrics()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.NotEmpty(t, token)
	cookies := w.Result().Cookies()

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withCookies(postForm("/account/tokens/revoke", url.Values{}), cookies))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "CSRF token validation failed")
	})

	t.Run("wrong token", func(t *testing.T) {
		w := httptest.NewRecorder()
		form := url.Values{"csrf_token": {"forged"}}
		r.ServeHTTP(w, withCookies(postForm("/account/tokens/revoke", form), cookies))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("form field", func(t *testing.T) {
		w := httptest.NewRecorder()
		form := url.Values{"csrf_token": {token}}
		r.ServeHTTP(w, withCookies(postForm("/account/tokens/revoke", form), cookies))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withCookies(httptest.NewRequest(http.MethodPost, "/account/tokens/revoke", nil), cookies)
		req.Header.Set("X-CSRF-Token", token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCSRFMiddleware_Exemptions(t *testing.T) {
	stampOAuth := func(c *gin.Context) {
		if c.GetHeader("X-Test-OAuth") != "" {
			c.Set(oauthAuthenticated, true)
		}
		c.Next()
	}

	tests := []struct {
		name       string
		request    func() *http.Request
		wantStatus int
		wantReason string
	}{
		{
			name: "request-token endpoint without any credentials",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, testRequestTokenPath, nil)
			},
			wantStatus: http.StatusOK,
			wantReason: ExemptTokenEndpoint,
		},
		{
			name: "access-token endpoint",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, testAccessTokenPath, nil)
			},
			wantStatus: http.StatusOK,
			wantReason: ExemptTokenEndpoint,
		},
		{
			name: "token path suffix on another prefix",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/mirror"+testRequestTokenPath, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "OAuth-authenticated resource request",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/rest/api/1.0/repos", nil)
				req.Header.Set("X-Test-OAuth", "1")
				return req
			},
			wantStatus: http.StatusOK,
			wantReason: ExemptOAuth,
		},
		{
			name: "OAuth-signed consent decision",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, testAuthorizePath, nil)
				req.Header.Set("X-Test-OAuth", "1")
				return req
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "OAuth-signed account change",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/account/tokens/revoke", nil)
				req.Header.Set("X-Test-OAuth", "1")
				return req
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "build trigger",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/job/nightly/build", nil)
			},
			wantStatus: http.StatusOK,
			wantReason: ExemptBuildTrigger,
		},
		{
			name: "commit notification",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/git/notifyCommit", nil)
			},
			wantStatus: http.StatusOK,
			wantReason: ExemptBuildTrigger,
		},
		{
			name: "protected path without OAuth",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/account/tokens/revoke", nil)
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			recorder := mocks.NewMockRecorder(ctrl)
			if tt.wantReason != "" {
				recorder.EXPECT().RecordCSRFExemption(tt.wantReason).Times(1)
			}

			r := csrfRouter(CSRFConfig{
				TokenPaths:    testTokenPaths,
				SessionPaths:  testSessionPaths,
				BuildPatterns: testBuildPatterns,
				Metrics:       recorder,
			}, stampOAuth)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.request())
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCSRFMiddleware_ExemptRequestsLeaveSessionAlone(t *testing.T) {
	r := csrfRouter(CSRFConfig{TokenPaths: testTokenPaths})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, testRequestTokenPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestCSRFMiddleware_NoBuildPatterns(t *testing.T) {
	r := csrfRouter(CSRFConfig{TokenPaths: testTokenPaths})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/job/nightly/build", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetCSRFToken_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))
}

func TestCSRFMiddleware_ReusesSessionToken(t *testing.T) {
	r := setupTestRouter()
	r.GET("/seed", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(csrfTokenKey, "seeded")
		_ = session.Save()
	})
	r.Use(CSRFMiddleware(CSRFConfig{}))
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, GetCSRFToken(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seed", nil))
	cookies := w.Result().Cookies()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/form", nil), cookies))
	assert.Equal(t, "seeded", w.Body.String())
}
