package bootstrap

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"

	"github.com/appleboy/graceful"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AuditShutdownTimeout)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addInfrastructureShutdownJob closes caches, Redis, the database and the
// tracer provider
func addInfrastructureShutdownJob(m *graceful.Manager, app *Application) {
	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), app.Config.CacheCloseTimeout)
		defer cancel()

		if errs := app.releaseInfrastructure(ctx); len(errs) > 0 {
			return errors.Join(errs...)
		}
		log.Println("Infrastructure closed")
		return nil
	})
}

// runPeriodically calls fn once immediately and then on every tick until
// ctx is done
func runPeriodically(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// addTokenSweepJob removes expired request tokens and access tokens whose
// session can no longer be renewed
func addTokenSweepJob(m *graceful.Manager, cfg *config.Config, tokenService *services.TokenService) {
	if cfg.TokenSweepInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, cfg.TokenSweepInterval, func(ctx context.Context) {
			sweepExpiredTokens(ctx, tokenService)
		})
		return nil
	})
}

func sweepExpiredTokens(ctx context.Context, tokenService *services.TokenService) {
	removed, err := tokenService.SweepExpiredTokens(ctx)
	switch {
	case err != nil:
		log.Printf("Failed to sweep expired tokens: %v", err)
	case removed > 0:
		log.Printf("Removed %d expired tokens", removed)
	}
}

// addNonceCachePurgeJob drops expired nonces from the in-memory cache.
// Redis expires keys on its own.
func addNonceCachePurgeJob(m *graceful.Manager, cfg *config.Config, nonces core.Cache[bool]) {
	memoryCache, ok := nonces.(*cache.MemoryCache[bool])
	if !ok {
		return
	}

	interval := cfg.TimestampSkew
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, interval, func(context.Context) {
			if purged := memoryCache.PurgeExpired(); purged > 0 {
				log.Printf("Purged %d expired nonces (%d remembered)", purged, memoryCache.Len())
			}
		})
		return nil
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, 24*time.Hour, func(context.Context) {
			if deleted, err := auditService.CleanupOldLogs(cfg.AuditLogRetention); err != nil {
				log.Printf("Failed to cleanup old audit logs: %v", err)
			} else if deleted > 0 {
				log.Printf("Cleaned up %d old audit logs", deleted)
			}
		})
		return nil
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(m *graceful.Manager, app *Application) {
	cfg := app.Config
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || app.MetricsCache == nil {
		return
	}

	cacheWrapper := metrics.NewCacheWrapper(app.TokenStore, app.MetricsCache)
	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, cfg.MetricsGaugeUpdateInterval, func(ctx context.Context) {
			updateGaugeMetricsWithCache(
				ctx,
				cacheWrapper,
				app.MetricsRecorder,
				app.Impersonator,
				cfg.MetricsGaugeUpdateInterval,
			)
		})
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]
	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		log.Printf("Token count failed for %s: %v (further errors will be suppressed for %v)",
			operation, err, e.rateLimitWindow)
		e.lastErrorTimes[operation] = now
	}
}

var gaugeErrorLogger = newErrorLogger()

// activeImpersonations reports how many requests currently run as an
// impersonated user
type activeImpersonations interface {
	Active() int64
}

// updateGaugeMetricsWithCache refreshes the token and impersonation gauges.
// Token counts go through the cache so several instances share one query
// per interval.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m core.Recorder,
	impersonations activeImpersonations,
	cacheTTL time.Duration,
) {
	for _, kind := range []models.TokenKind{models.TokenKindAccess, models.TokenKindRequest} {
		operation := "count_" + string(kind) + "_tokens"
		count, err := cacheWrapper.GetActiveTokensCount(ctx, kind, cacheTTL)
		if err != nil {
			m.RecordDatabaseQueryError(operation)
			gaugeErrorLogger.logIfNeeded(operation, err)
			continue
		}
		m.SetActiveTokensCount(string(kind), int(count))
	}

	if impersonations != nil {
		m.SetActiveImpersonations(impersonations.Active())
	}
}
