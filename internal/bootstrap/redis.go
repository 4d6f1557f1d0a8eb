package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/applink/internal/config"

	"github.com/redis/go-redis/v9"
)

// needsRedisClient reports whether any component uses the go-redis client.
// The nonce and metrics caches use their own rueidis connections.
func needsRedisClient(cfg *config.Config) bool {
	return cfg.TokenStoreType == config.TokenStoreRedis ||
		(cfg.EnableRateLimit && cfg.RateLimitStore == config.RateLimitStoreRedis)
}

// initializeRedisClient initializes the go-redis client shared by the token
// store and the rate limiter. Returns nil when neither is backed by Redis.
// Note: rate limiting must use go-redis because ulule/limiter depends on go-redis types.
func initializeRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (redis.UniversalClient, error) {
	if !needsRedisClient(cfg) {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Redis client initialized (address: %s, db: %d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}
