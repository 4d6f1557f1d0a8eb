package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/auth"
	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/oauth1/oauth1test"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testConsumerKey    = "jenkins"
	testConsumerSecret = "jenkins-secret" //nolint:gosec // test fixture
	testCallback       = "https://jenkins.example.com/securityRealm/finishLogin"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:              "http://localhost:8080",
		OAuthEnabled:         true,
		OAuthExclusionPrefix: "/bitbucket",
		RequestTokenTTL:      10 * time.Minute,
		AccessTokenTTL:       24 * time.Hour,
		SessionTTL:           30 * 24 * time.Hour,
		TimestampSkew:        5 * time.Minute,
		NonceTTL:             time.Hour,
		MaxPages:             5,
		PageSize:             10,
	}
}

// testApp wires real services over an in-memory database and token store.
type testApp struct {
	t      *testing.T
	cfg    *config.Config
	db     *store.Store
	tokens *store.MemoryTokenStore
	audit  *services.AuditService

	tokenService         *services.TokenService
	authorizationService *services.AuthorizationService
	authenticator        *services.AuthenticatorService
	consumerService      *services.ConsumerService
	userService          *services.UserService

	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	clock := util.SystemClock{}
	db, err := store.New("sqlite", ":memory:", &config.Config{}, store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	m := metrics.NewNoopMetrics()
	audit := services.NewAuditService(db, false, 0)
	tokens := store.NewMemoryTokenStore(clock)
	random := util.CryptoRandomizer{}

	app := &testApp{
		t:       t,
		cfg:     cfg,
		db:      db,
		tokens:  tokens,
		audit:   audit,
		cookies: make(map[string]*http.Cookie),
	}
	app.tokenService = services.NewTokenService(tokens, db, random, clock, cfg, audit, m)
	app.authorizationService = services.NewAuthorizationService(tokens, db, random, clock, audit, m)
	app.authenticator = services.NewAuthenticatorService(
		tokens, db, cache.NewMemoryCache[bool](), clock, cfg, audit, m, zap.NewNop(),
	)
	app.consumerService = services.NewConsumerService(db, app.tokenService, audit)
	app.userService = services.NewUserService(
		db, auth.NewLocalAuthProvider(db), audit, m, nil, time.Minute,
	)

	app.addUser("u-alice", "alice", "user")
	app.addUser("u-builder", "builder", "user")
	require.NoError(t, app.consumerService.RegisterConsumer(context.Background(), &models.Consumer{
		Key:           testConsumerKey,
		Name:          "Jenkins",
		Secret:        testConsumerSecret,
		TwoLOAllowed:  true,
		TwoLOExecutor: "builder",
	}))

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.LoadSessionUser(app.userService))
	r.Use(middleware.OAuthFilter(middleware.OAuthFilterConfig{
		Enabled:       true,
		Classifier:    oauth1.NewClassifier(cfg.RequestTokenURL(), cfg.AccessTokenURL()),
		Authenticator: app.authenticator,
		Authorizer: services.NewTrustedAuthorizer(
			services.NewSessionImpersonator(app.userService, m),
		),
		Logger: zap.NewNop(),
	}))
	r.GET("/test-login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserID, c.Param("id"))
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})
	app.router = r

	return app
}

func (a *testApp) addUser(id, username, role string) {
	a.t.Helper()
	require.NoError(a.t, a.db.CreateUser(&models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Role:     role,
	}))
}

// login starts a browser session for userID.
func (a *testApp) login(userID string) {
	a.t.Helper()
	w := a.do(httptest.NewRequest(http.MethodGet, "/test-login/"+userID, nil))
	require.Equal(a.t, http.StatusNoContent, w.Code)
}

// do serves req with the app's cookie jar and remembers new cookies.
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		a.cookies[c.Name] = c
	}
	return w
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (a *testApp) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// signed sends a request signed by signer without the cookie jar.
func (a *testApp) signed(method, target string, signer *oauth1test.Signer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	signer.Sign(req)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// requestToken issues a request token for the test consumer.
func (a *testApp) requestToken(callback string) *models.Token {
	a.t.Helper()
	consumer, err := a.consumerService.GetConsumer(context.Background(), testConsumerKey)
	require.NoError(a.t, err)
	token, err := a.tokenService.IssueRequestToken(context.Background(), consumer, callback)
	require.NoError(a.t, err)
	return token
}

// approvedToken issues a request token and approves it as alice.
func (a *testApp) approvedToken(callback string) *models.Token {
	a.t.Helper()
	token := a.requestToken(callback)
	approved, err := a.authorizationService.Approve(
		context.Background(), token.Value, &models.User{ID: "u-alice", Username: "alice"},
	)
	require.NoError(a.t, err)
	return approved
}

// accessToken runs the whole dance and returns alice's access token.
func (a *testApp) accessToken() *models.Token {
	a.t.Helper()
	rt := a.approvedToken(testCallback)
	at, err := a.tokenService.ExchangeRequestToken(
		context.Background(), testConsumerKey, rt.Value, rt.Verifier,
	)
	require.NoError(a.t, err)
	return at
}

func consumerSigner() *oauth1test.Signer {
	return &oauth1test.Signer{ConsumerKey: testConsumerKey, ConsumerSecret: testConsumerSecret}
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) url.Values {
	t.Helper()
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	values, err := url.ParseQuery(string(body))
	require.NoError(t, err)
	return values
}
