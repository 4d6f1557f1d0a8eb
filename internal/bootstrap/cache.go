package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/telemetry"
	"github.com/go-authgate/applink/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tokenKeyPrefix   = "applink:tokens:"
	nonceKeyPrefix   = "applink:nonce:"
	metricsKeyPrefix = "applink:metrics:"
)

// initializeLogger builds the structured logger used by the OAuth layer
func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := telemetry.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeMetricsCache initializes the metrics cache based on configuration.
// Returns nil when gauge updates are disabled.
func initializeMetricsCache(ctx context.Context, cfg *config.Config) (core.Cache[int64], error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil
	}

	// Create timeout context for cache initialization
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.MetricsCacheType {
	case config.MetricsCacheTypeRedis:
		c, err := cache.NewRueidisCache[int64](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			metricsKeyPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis metrics cache: %w", err)
		}
		log.Printf("Metrics cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, nil

	default: // memory
		log.Println("Metrics cache: memory (single instance only)")
		return cache.NewMemoryCache[int64](), nil
	}
}

// initializeNonceCache initializes the cache that remembers used nonces.
// Redis is required when several instances share consumers.
func initializeNonceCache(ctx context.Context, cfg *config.Config) (core.Cache[bool], error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.NonceCacheType {
	case config.NonceCacheRedis:
		c, err := cache.NewRueidisCache[bool](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			nonceKeyPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis nonce cache: %w", err)
		}
		log.Printf("Nonce cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, nil

	default: // memory
		log.Println("Nonce cache: memory (single instance only)")
		return cache.NewMemoryCache[bool](), nil
	}
}

// initializeTokenStore selects where request and access tokens live. The
// database store is the default; redis reuses the shared go-redis client.
func initializeTokenStore(
	cfg *config.Config,
	db *store.Store,
	redisClient redis.UniversalClient,
) (core.TokenStore, error) {
	switch cfg.TokenStoreType {
	case config.TokenStoreRedis:
		if redisClient == nil {
			return nil, errors.New("redis token store requires a redis client")
		}
		log.Printf("Token store: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return store.NewRedisTokenStore(redisClient, tokenKeyPrefix, util.SystemClock{}), nil

	case config.TokenStoreMemory:
		log.Println("Token store: memory (tokens are lost on restart)")
		return store.NewMemoryTokenStore(util.SystemClock{}), nil

	default: // database
		log.Printf("Token store: database (driver: %s)", cfg.DatabaseDriver)
		return db, nil
	}
}
