package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	sessionCookieName  = "applink_session"
	healthCheckTimeout = 2 * time.Second
)

// Protected resources served for linked applications
const (
	whoAmIPath       = "/rest/api/1.0/whoami"
	buildTriggerPath = "/job/:name/build"
	notifyCommitPath = "/git/notifyCommit"
)

// setupRouter configures the Gin router with all routes and middleware.
// Middleware order matters: the OAuth filter needs the session user to be
// loaded, and CSRF checks need to know whether OAuth authenticated the request.
func setupRouter(app *Application, publicURL *url.URL) (*gin.Engine, error) {
	cfg := app.Config

	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	classifier := oauth1.NewClassifier(cfg.RequestTokenURL(), cfg.AccessTokenURL())

	// Setup middleware
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(app.Logger))
	r.Use(metrics.HTTPMetricsMiddleware(app.MetricsRecorder))
	r.Use(util.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)
	r.Use(middleware.LoadSessionUser(app.UserService))

	// OAuth access filter and CSRF protection
	r.Use(middleware.OAuthFilter(middleware.OAuthFilterConfig{
		Enabled:       cfg.OAuthEnabled,
		Classifier:    classifier,
		Authenticator: app.AuthenticatorService,
		Authorizer:    app.TrustedAuthorizer,
		PublicURL:     publicURL,
		Logger:        app.Logger,
	}))
	r.Use(middleware.CSRFMiddleware(middleware.CSRFConfig{
		TokenPaths:    []string{cfg.RequestTokenURL(), cfg.AccessTokenURL()},
		SessionPaths:  []string{cfg.AuthorizeURL(), "/account", "/admin", "/login", "/logout"},
		BuildPatterns: cfg.CSRFExemptBuildPatterns,
		Metrics:       app.MetricsRecorder,
	}))

	// Serve embedded static files
	if err := serveStaticFiles(r, app.StaticFS); err != nil {
		return nil, err
	}

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(app.DB, app.TokenStore))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters, err := setupRateLimiting(cfg, app.AuditService, app.RedisClient)
	if err != nil {
		return nil, err
	}

	// Setup all routes
	setupAllRoutes(r, cfg, app.HandlerSet, rateLimiters)

	// Log server startup info
	logServerStartup(cfg)

	return r, nil
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode, // Lax so consumer callbacks keep the session
	})
	r.Use(sessions.Sessions(sessionCookieName, sessionStore))
}

// serveStaticFiles configures static file serving
func serveStaticFiles(r *gin.Engine, staticFS fs.FS) error {
	if staticFS == nil {
		return nil
	}
	staticSubFS, err := fs.Sub(staticFS, "internal/templates/static")
	if err != nil {
		return fmt.Errorf("failed to create static sub filesystem: %w", err)
	}
	r.StaticFS("/static", http.FS(staticSubFS))
	return nil
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/account/tokens")
	})

	// Swagger documentation (development only)
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Printf("Swagger UI enabled at: %s/swagger/index.html", cfg.BaseURL)
	}

	// Login routes
	r.GET("/login", h.auth.LoginPage)
	r.POST("/login", rateLimiters.login, h.auth.Login)
	r.GET("/logout", h.auth.Logout)

	// Token endpoints (signed by the consumer, no session)
	tokenEndpoints := r.Group("", middleware.RequireOAuthEnabled(cfg.OAuthEnabled), rateLimiters.token)
	{
		tokenEndpoints.GET(cfg.RequestTokenURL(), h.token.RequestToken)
		tokenEndpoints.POST(cfg.RequestTokenURL(), h.token.RequestToken)
		tokenEndpoints.GET(cfg.AccessTokenURL(), h.token.AccessToken)
		tokenEndpoints.POST(cfg.AccessTokenURL(), h.token.AccessToken)
	}

	// Consent page (browser, requires login)
	consent := r.Group("", middleware.RequireOAuthEnabled(cfg.OAuthEnabled), middleware.RequireAuth())
	{
		consent.GET(cfg.AuthorizeURL(), h.authorization.ShowAuthorizePage)
		consent.POST(cfg.AuthorizeURL(), h.authorization.HandleAuthorize)
	}

	// Account routes (require login)
	account := r.Group("/account", middleware.RequireAuth())
	{
		account.GET("/tokens", h.account.ListTokens)
		account.POST("/tokens/revoke", h.account.RevokeToken)
	}

	// Admin routes (require admin role)
	admin := r.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("/consumers", h.consumer.ShowConsumersPage)
		admin.POST("/consumers", h.consumer.CreateConsumer)
		admin.POST("/consumers/:key/delete", h.consumer.DeleteConsumer)

		admin.GET("/audit", h.audit.ListEvents)
		admin.GET("/audit/export", h.audit.ExportEvents)
	}

	// Protected resources (session or OAuth identity)
	protected := r.Group("", middleware.RequireIdentity(cfg.OAuthRealm))
	{
		protected.GET(whoAmIPath, h.resource.WhoAmI)
		protected.POST(buildTriggerPath, h.resource.TriggerBuild)
	}
	r.POST(notifyCommitPath, h.resource.NotifyCommit)
}

// tokenStorePinger is implemented by token stores that live outside the database
type tokenStorePinger interface {
	Ping(ctx context.Context) error
}

// createHealthCheckHandler creates health check endpoint handler. A token
// store outside the database is reported separately.
//
//	@Summary		Health check
//	@Description	Report database and token store connectivity
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	object{status=string,database=string,token_store=string}	"Service is healthy"
//	@Failure		503	{object}	object{status=string,database=string,token_store=string}	"A backing store is unreachable"
//	@Router			/health [get]
func createHealthCheckHandler(db *store.Store, tokens core.TokenStore) gin.HandlerFunc {
	pinger, _ := tokens.(tokenStorePinger)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status":   "healthy",
			"database": "connected",
		}
		if err := db.Health(ctx); err != nil {
			log.Printf("[Health] database check failed: %v", err)
			status = http.StatusServiceUnavailable
			body["database"] = "disconnected"
		}
		if pinger != nil {
			body["token_store"] = "connected"
			if err := pinger.Ping(ctx); err != nil {
				log.Printf("[Health] token store check failed: %v", err)
				status = http.StatusServiceUnavailable
				body["token_store"] = "disconnected"
			}
		}
		if status != http.StatusOK {
			body["status"] = "unhealthy"
		}
		c.JSON(status, body)
	}
}

// setupGinMode sets Gin mode based on environment configuration. Test mode
// set by the caller is left alone.
func setupGinMode(cfg *config.Config) {
	if gin.Mode() == gin.TestMode {
		return
	}
	mode := ginModeMap[cfg.IsProduction()]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction()])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("AppLink OAuth provider starting on %s", cfg.ServerAddr)
	if !cfg.OAuthEnabled {
		log.Printf("OAuth is disabled: token endpoints and consent page are unavailable")
		return
	}
	log.Printf("Request token URL: %s%s", cfg.BaseURL, cfg.RequestTokenURL())
	log.Printf("Authorize URL:     %s%s", cfg.BaseURL, cfg.AuthorizeURL())
	log.Printf("Access token URL:  %s%s", cfg.BaseURL, cfg.AccessTokenURL())
	log.Printf("Default user: admin (check logs for password if first run)")
}
