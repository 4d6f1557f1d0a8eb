package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Token store backend constants
const (
	TokenStoreDatabase = "database"
	TokenStoreMemory   = "memory"
	TokenStoreRedis    = "redis"
)

// Nonce cache backend constants
const (
	NonceCacheMemory = "memory"
	NonceCacheRedis  = "redis"
)

// Metrics cache backend constants
const (
	MetricsCacheTypeMemory = "memory"
	MetricsCacheTypeRedis  = "redis"
)

// Token endpoint paths, relative to OAuthExclusionPrefix.
const (
	RequestTokenPath = "/oauth/request-token"
	AccessTokenPath  = "/oauth/access-token"
	AuthorizePath    = "/oauth/authorize"
)

type Config struct {
	// Server settings
	ServerAddr  string
	BaseURL     string
	Environment string

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Default admin user
	DefaultAdminPassword string

	// OAuth 1.0a provider
	OAuthEnabled            bool
	OAuthExclusionPrefix    string
	OAuthRealm              string
	RequestTokenTTL         time.Duration // ~10 minutes
	AccessTokenTTL          time.Duration // ~5 years
	SessionTTL              time.Duration // ~5 years + 30 days, bounds access token renewal
	TimestampSkew           time.Duration
	NonceTTL                time.Duration
	TokenSweepInterval      time.Duration
	MaxPages                int
	PageSize                int
	CSRFExemptBuildPatterns []string

	// Storage backends
	TokenStoreType string // "database", "memory" or "redis"
	NonceCacheType string // "memory" or "redis"

	// Bootstrap consumer registration
	ConsumerKey           string
	ConsumerSecret        string
	ConsumerName          string
	ConsumerPublicKeyFile string
	ConsumerCallbackURL   string
	ConsumerTwoLOUser     string
	ConsumerTwoLOAllowed  bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	TokenEndpointRateLimit   int // requests per minute per IP
	LoginRateLimit           int
	RateLimitCleanupInterval time.Duration

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string
	MetricsCacheTTL            time.Duration

	// Audit
	EnableAuditLogging bool
	AuditLogBufferSize int
	AuditLogRetention  time.Duration

	// Logging and tracing
	LogLevel          string
	TelemetryEndpoint string // OTLP/HTTP collector, empty disables tracing
	TelemetryInsecure bool
	ServiceName       string

	// Timeouts
	DBInitTimeout         time.Duration
	DBCloseTimeout        time.Duration
	RedisConnTimeout      time.Duration
	RedisCloseTimeout     time.Duration
	CacheInitTimeout      time.Duration
	CacheCloseTimeout     time.Duration
	ServerShutdownTimeout time.Duration
	AuditShutdownTimeout  time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "applink.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	accessTTL := getEnvDuration("OAUTH_ACCESS_TOKEN_TTL", 5*365*24*time.Hour)

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),

		OAuthEnabled:         getEnvBool("OAUTH_ENABLED", true),
		OAuthExclusionPrefix: getEnv("OAUTH_EXCLUSION_PREFIX", "/bitbucket"),
		OAuthRealm:           getEnv("OAUTH_REALM", ""),
		RequestTokenTTL:      getEnvDuration("OAUTH_REQUEST_TOKEN_TTL", 10*time.Minute),
		AccessTokenTTL:       accessTTL,
		SessionTTL: getEnvDuration(
			"OAUTH_SESSION_TTL",
			accessTTL+30*24*time.Hour,
		),
		TimestampSkew:      getEnvDuration("OAUTH_TIMESTAMP_SKEW", 5*time.Minute),
		NonceTTL:           getEnvDuration("OAUTH_NONCE_TTL", accessTTL),
		TokenSweepInterval: getEnvDuration("OAUTH_TOKEN_SWEEP_INTERVAL", 10*time.Minute),
		MaxPages:           getEnvInt("OAUTH_MAX_PAGES", 100),
		PageSize:           getEnvInt("OAUTH_PAGE_SIZE", 25),
		CSRFExemptBuildPatterns: getEnvSlice("CSRF_EXEMPT_BUILD_PATHS", []string{
			"/job/*/build",
			"/job/*/buildWithParameters",
			"/git/notifyCommit",
		}),

		TokenStoreType: getEnv("TOKEN_STORE", TokenStoreDatabase),
		NonceCacheType: getEnv("NONCE_CACHE", NonceCacheMemory),

		ConsumerKey:           getEnv("OAUTH_CONSUMER_KEY", ""),
		ConsumerSecret:        getEnv("OAUTH_CONSUMER_SECRET", ""),
		ConsumerName:          getEnv("OAUTH_CONSUMER_NAME", ""),
		ConsumerPublicKeyFile: getEnv("OAUTH_CONSUMER_PUBLIC_KEY_FILE", ""),
		ConsumerCallbackURL:   getEnv("OAUTH_CONSUMER_CALLBACK", ""),
		ConsumerTwoLOUser:     getEnv("OAUTH_CONSUMER_2LO_USER", ""),
		ConsumerTwoLOAllowed:  getEnvBool("OAUTH_CONSUMER_2LO_ALLOWED", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		TokenEndpointRateLimit:   getEnvInt("TOKEN_ENDPOINT_RATE_LIMIT", 60),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 5),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", MetricsCacheTypeMemory),
		MetricsCacheTTL:            getEnvDuration("METRICS_CACHE_TTL", 10*time.Minute),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:  getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),

		LogLevel:          getEnv("LOG_LEVEL", "info"),
		TelemetryEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TelemetryInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:       getEnv("OTEL_SERVICE_NAME", "applink"),

		DBInitTimeout:         getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		DBCloseTimeout:        getEnvDuration("DB_CLOSE_TIMEOUT", 5*time.Second),
		RedisConnTimeout:      getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout:     getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),
		CacheInitTimeout:      getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		CacheCloseTimeout:     getEnvDuration("CACHE_CLOSE_TIMEOUT", 5*time.Second),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		AuditShutdownTimeout:  getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequestTokenURL is the full path of the request-token endpoint.
func (c *Config) RequestTokenURL() string {
	return c.OAuthExclusionPrefix + RequestTokenPath
}

// AccessTokenURL is the full path of the access-token endpoint.
func (c *Config) AccessTokenURL() string {
	return c.OAuthExclusionPrefix + AccessTokenPath
}

// AuthorizeURL is the full path of the consent page.
func (c *Config) AuthorizeURL() string {
	return c.OAuthExclusionPrefix + AuthorizePath
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	switch c.TokenStoreType {
	case TokenStoreDatabase, TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("TOKEN_STORE=%q requires REDIS_ADDR to be set", c.TokenStoreType)
		}
	default:
		return fmt.Errorf(
			"invalid TOKEN_STORE value: %q (must be %q, %q or %q)",
			c.TokenStoreType, TokenStoreDatabase, TokenStoreMemory, TokenStoreRedis,
		)
	}

	switch c.NonceCacheType {
	case NonceCacheMemory:
	case NonceCacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("NONCE_CACHE=%q requires REDIS_ADDR to be set", c.NonceCacheType)
		}
	default:
		return fmt.Errorf(
			"invalid NONCE_CACHE value: %q (must be %q or %q)",
			c.NonceCacheType, NonceCacheMemory, NonceCacheRedis,
		)
	}

	switch c.MetricsCacheType {
	case MetricsCacheTypeMemory:
	case MetricsCacheTypeRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf(
				"METRICS_CACHE_TYPE=%q requires REDIS_ADDR to be set",
				c.MetricsCacheType,
			)
		}
	default:
		return fmt.Errorf(
			"invalid METRICS_CACHE_TYPE value: %q (must be %q or %q)",
			c.MetricsCacheType, MetricsCacheTypeMemory, MetricsCacheTypeRedis,
		)
	}

	if c.RequestTokenTTL <= 0 || c.AccessTokenTTL <= 0 {
		return errors.New("OAUTH_REQUEST_TOKEN_TTL and OAUTH_ACCESS_TOKEN_TTL must be positive")
	}
	if c.SessionTTL < c.AccessTokenTTL {
		return fmt.Errorf(
			"OAUTH_SESSION_TTL (%s) must not be shorter than OAUTH_ACCESS_TOKEN_TTL (%s)",
			c.SessionTTL, c.AccessTokenTTL,
		)
	}
	if c.TimestampSkew <= 0 {
		return errors.New("OAUTH_TIMESTAMP_SKEW must be a positive duration")
	}
	if c.NonceTTL < c.TimestampSkew {
		return errors.New("OAUTH_NONCE_TTL must be at least OAUTH_TIMESTAMP_SKEW")
	}
	if c.PageSize <= 0 || c.MaxPages <= 0 {
		return errors.New("OAUTH_PAGE_SIZE and OAUTH_MAX_PAGES must be positive")
	}
	if !strings.HasPrefix(c.OAuthExclusionPrefix, "/") {
		return fmt.Errorf(
			"OAUTH_EXCLUSION_PREFIX must start with '/': %q",
			c.OAuthExclusionPrefix,
		)
	}
	if c.ConsumerKey != "" && c.ConsumerSecret == "" && c.ConsumerPublicKeyFile == "" {
		return errors.New(
			"OAUTH_CONSUMER_KEY requires OAUTH_CONSUMER_SECRET or OAUTH_CONSUMER_PUBLIC_KEY_FILE",
		)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
