package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/telemetry"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	Telemetry       *telemetry.Provider
	DB              *store.Store
	TokenStore      core.TokenStore
	NonceCache      core.Cache[bool]
	MetricsRecorder core.Recorder
	MetricsCache    core.Cache[int64]
	RedisClient     redis.UniversalClient

	// Services
	AuditService         *services.AuditService
	UserService          *services.UserService
	TokenService         *services.TokenService
	AuthorizationService *services.AuthorizationService
	AuthenticatorService *services.AuthenticatorService
	ConsumerService      *services.ConsumerService
	Impersonator         *services.SessionImpersonator
	TrustedAuthorizer    *services.TrustedAuthorizer

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
	StaticFS   fs.FS
}

// Run initializes and starts the application
func Run(cfg *config.Config, staticFS fs.FS) error {
	app, err := New(context.Background(), cfg, staticFS)
	if err != nil {
		return err
	}

	app.startWithGracefulShutdown()
	return nil
}

// New builds every layer of the application without starting the server.
// Partially initialized infrastructure is released when a phase fails.
func New(ctx context.Context, cfg *config.Config, staticFS fs.FS) (*Application, error) {
	app := &Application{
		Config:   cfg,
		StaticFS: staticFS,
	}

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.releaseInfrastructure(ctx)
		return nil, err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(ctx); err != nil {
		app.releaseInfrastructure(ctx)
		return nil, err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.releaseInfrastructure(ctx)
		return nil, err
	}

	return app, nil
}

// initializeInfrastructure sets up logging, tracing, database, stores,
// caches and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Logging and tracing
	app.Logger, err = initializeLogger(app.Config)
	if err != nil {
		return err
	}
	app.Telemetry, err = telemetry.New(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Shared go-redis client (token store and rate limiting)
	app.RedisClient, err = initializeRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	// Token store and nonce cache
	app.TokenStore, err = initializeTokenStore(app.Config, app.DB, app.RedisClient)
	if err != nil {
		return err
	}
	app.NonceCache, err = initializeNonceCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services and registers the configured
// consumer
func (app *Application) initializeBusinessLayer(ctx context.Context) error {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.initializeServices()

	return seedConsumer(ctx, app.Config, app.ConsumerService)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	publicURL, err := parsePublicURL(app.Config)
	if err != nil {
		return err
	}

	app.HandlerSet = initializeHandlers(app, publicURL)

	app.Router, err = setupRouter(app, publicURL)
	if err != nil {
		return err
	}

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addTokenSweepJob(m, app.Config, app.TokenService)
	addNonceCachePurgeJob(m, app.Config, app.NonceCache)
	addAuditServiceShutdownJob(m, app.Config, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app)
	addInfrastructureShutdownJob(m, app)

	// Wait for graceful shutdown
	<-m.Done()
}

// Close releases everything New acquired. The server, if started, must be
// shut down first.
func (app *Application) Close(ctx context.Context) error {
	var errs []error
	if app.AuditService != nil {
		if err := app.AuditService.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, app.releaseInfrastructure(ctx)...)
	return errors.Join(errs...)
}

// releaseInfrastructure closes caches, stores, Redis, the database and the
// tracer provider, in reverse order of creation.
func (app *Application) releaseInfrastructure(ctx context.Context) []error {
	var errs []error
	record := func(name string, err error) {
		if err != nil {
			log.Printf("Error closing %s: %v", name, err)
			errs = append(errs, err)
		}
	}

	if app.MetricsCache != nil {
		record("metrics cache", app.MetricsCache.Close())
	}
	if app.NonceCache != nil {
		record("nonce cache", app.NonceCache.Close())
	}
	if app.RedisClient != nil {
		record("Redis client", app.RedisClient.Close())
	}
	if app.DB != nil {
		closeCtx, cancel := context.WithTimeout(ctx, app.Config.DBCloseTimeout)
		record("database", app.DB.Close(closeCtx))
		cancel()
	}
	if app.Telemetry != nil {
		record("telemetry", app.Telemetry.Shutdown(ctx))
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	return errs
}
