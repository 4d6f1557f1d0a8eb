package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-authgate/applink/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateRedisConfig(cfg); err != nil {
		return fmt.Errorf("invalid redis configuration: %w", err)
	}
	if err := validateSessionConfig(cfg); err != nil {
		return fmt.Errorf("invalid session configuration: %w", err)
	}
	return nil
}

// validateRedisConfig checks that a Redis address is present for the
// rate limiter when it is backed by Redis
func validateRedisConfig(cfg *config.Config) error {
	if cfg.EnableRateLimit && cfg.RateLimitStore == config.RateLimitStoreRedis &&
		cfg.RedisAddr == "" {
		return errors.New("RATE_LIMIT_STORE=redis requires REDIS_ADDR to be set")
	}
	return nil
}

// validateSessionConfig refuses the development session secret in production
func validateSessionConfig(cfg *config.Config) error {
	switch {
	case cfg.SessionSecret == "":
		return errors.New("SESSION_SECRET must be set")
	case cfg.IsProduction() && strings.Contains(cfg.SessionSecret, "change-in-production"):
		return errors.New("SESSION_SECRET must be changed in production")
	}
	return nil
}

// parsePublicURL parses BASE_URL, the externally visible address used in
// signature base strings and callback checks
func parsePublicURL(cfg *config.Config) (*url.URL, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BASE_URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("BASE_URL must be an absolute http(s) URL: %q", cfg.BaseURL)
	}
	return u, nil
}
