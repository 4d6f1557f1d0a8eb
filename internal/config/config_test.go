package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		RateLimitStore:       RateLimitStoreMemory,
		TokenStoreType:       TokenStoreDatabase,
		NonceCacheType:       NonceCacheMemory,
		MetricsCacheType:     MetricsCacheTypeMemory,
		OAuthExclusionPrefix: "/bitbucket",
		RequestTokenTTL:      10 * time.Minute,
		AccessTokenTTL:       time.Hour,
		SessionTTL:           2 * time.Hour,
		TimestampSkew:        5 * time.Minute,
		NonceTTL:             time.Hour,
		MaxPages:             100,
		PageSize:             25,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "valid redis token store",
			mutate: func(c *Config) { c.TokenStoreType = TokenStoreRedis; c.RedisAddr = "localhost:6379" },
		},
		{
			name:        "invalid rate limit store",
			mutate:      func(c *Config) { c.RateLimitStore = "reddis" },
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "reddis"`,
		},
		{
			name:        "invalid token store",
			mutate:      func(c *Config) { c.TokenStoreType = "file" },
			expectError: true,
			errorMsg:    `invalid TOKEN_STORE value: "file"`,
		},
		{
			name:        "redis token store without address",
			mutate:      func(c *Config) { c.TokenStoreType = TokenStoreRedis },
			expectError: true,
			errorMsg:    `TOKEN_STORE="redis" requires REDIS_ADDR`,
		},
		{
			name:        "redis nonce cache without address",
			mutate:      func(c *Config) { c.NonceCacheType = NonceCacheRedis },
			expectError: true,
			errorMsg:    `NONCE_CACHE="redis" requires REDIS_ADDR`,
		},
		{
			name:        "invalid metrics cache",
			mutate:      func(c *Config) { c.MetricsCacheType = "memcached" },
			expectError: true,
			errorMsg:    `invalid METRICS_CACHE_TYPE value: "memcached"`,
		},
		{
			name:        "session shorter than access token",
			mutate:      func(c *Config) { c.SessionTTL = time.Minute },
			expectError: true,
			errorMsg:    "OAUTH_SESSION_TTL",
		},
		{
			name:        "zero request token ttl",
			mutate:      func(c *Config) { c.RequestTokenTTL = 0 },
			expectError: true,
			errorMsg:    "must be positive",
		},
		{
			name:        "nonce ttl shorter than skew",
			mutate:      func(c *Config) { c.NonceTTL = time.Minute },
			expectError: true,
			errorMsg:    "OAUTH_NONCE_TTL",
		},
		{
			name:        "zero page size",
			mutate:      func(c *Config) { c.PageSize = 0 },
			expectError: true,
			errorMsg:    "OAUTH_PAGE_SIZE",
		},
		{
			name:        "relative exclusion prefix",
			mutate:      func(c *Config) { c.OAuthExclusionPrefix = "bitbucket" },
			expectError: true,
			errorMsg:    "OAUTH_EXCLUSION_PREFIX",
		},
		{
			name:        "consumer key without credentials",
			mutate:      func(c *Config) { c.ConsumerKey = "jenkins" },
			expectError: true,
			errorMsg:    "OAUTH_CONSUMER_KEY requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOAuthDefaults(t *testing.T) {
	cfg := Load()

	assert.True(t, cfg.OAuthEnabled)
	assert.Equal(t, 10*time.Minute, cfg.RequestTokenTTL)
	assert.Equal(t, 5*365*24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, cfg.AccessTokenTTL+30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, cfg.AccessTokenTTL, cfg.NonceTTL)
	assert.Equal(t, "/bitbucket/oauth/request-token", cfg.RequestTokenURL())
	assert.Equal(t, "/bitbucket/oauth/access-token", cfg.AccessTokenURL())
	assert.Equal(t, "/bitbucket/oauth/authorize", cfg.AuthorizeURL())
	assert.Contains(t, cfg.CSRFExemptBuildPatterns, "/job/*/build")
	require.NoError(t, cfg.Validate())
}

func TestOAuthKillSwitch(t *testing.T) {
	t.Setenv("OAUTH_ENABLED", "false")
	assert.False(t, Load().OAuthEnabled)
}

func TestNonceTTLFollowsAccessTokenTTL(t *testing.T) {
	t.Setenv("OAUTH_ACCESS_TOKEN_TTL", "48h")
	cfg := Load()

	assert.Equal(t, 48*time.Hour, cfg.NonceTTL)
	assert.Equal(t, 48*time.Hour+30*24*time.Hour, cfg.SessionTTL)
}

func TestCSRFExemptBuildPathsFromEnv(t *testing.T) {
	t.Setenv("CSRF_EXEMPT_BUILD_PATHS", " /job/*/build , ,/hook ")
	assert.Equal(t, []string{"/job/*/build", "/hook"}, Load().CSRFExemptBuildPatterns)
}
