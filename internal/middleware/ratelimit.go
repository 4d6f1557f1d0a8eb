package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory uses in-memory storage (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis uses Redis storage shared by every instance
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

// RateLimitConfig holds the configuration for one rate-limited route
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // memory store only
	StoreType         RateLimitStoreType

	// RedisClient is required for the redis store and shared across limiters.
	RedisClient redis.UniversalClient

	// Endpoint names the route in audit entries.
	Endpoint     string
	AuditService *services.AuditService
}

// NewRateLimiter creates a per-IP rate limiter. Browsers get an error page,
// OAuth clients a form-encoded problem report.
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	var store limiter.Store
	switch config.StoreType {
	case RateLimitStoreRedis:
		if config.RedisClient == nil {
			return nil, fmt.Errorf("redis rate limit store for %s requires a redis client", config.Endpoint)
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(config.RedisClient, limiter.StoreOptions{
			Prefix:          "ratelimit",
			CleanUpInterval: config.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
	default:
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          "ratelimit",
			CleanUpInterval: config.CleanupInterval,
		})
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		if config.AuditService != nil {
			config.AuditService.Log(c.Request.Context(), services.AuditLogEntry{
				EventType:     models.EventRateLimitExceeded,
				Severity:      models.SeverityWarning,
				ActorIP:       c.ClientIP(),
				ResourceType:  models.ResourceProtectedPath,
				ResourceID:    config.Endpoint,
				Action:        "Rate limit exceeded",
				Details:       models.AuditDetails{"limit_per_minute": config.RequestsPerMinute},
				Success:       false,
				UserAgent:     c.Request.UserAgent(),
				RequestPath:   c.Request.URL.Path,
				RequestMethod: c.Request.Method,
			})
		}

		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			templates.RenderTempl(c, http.StatusTooManyRequests, templates.ErrorPage(
				templates.ErrorPageProps{
					Error:   "Rate Limit Exceeded",
					Message: "Too many requests. Please try again later.",
				},
			))
		} else {
			c.Data(http.StatusTooManyRequests, oauth1.ContentTypeFormURLEncoded, []byte(
				oauth1.ProblemBody(oauth1.ProblemRateLimited, "Too many requests. Please try again later."),
			))
		}
		c.Abort()
	})), nil
}
