package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/store"
)

const authSourceLocal = "local"

// UserStore is the user persistence needed by UserService.
type UserStore interface {
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

type UserService struct {
	store    UserStore
	provider core.AuthProvider
	audit    *AuditService
	metrics  core.Recorder
	cache    core.Cache[models.User]
	cacheTTL time.Duration
}

// NewUserService creates a user service. c may be nil to disable caching.
func NewUserService(
	s UserStore,
	provider core.AuthProvider,
	auditService *AuditService,
	m core.Recorder,
	c core.Cache[models.User],
	cacheTTL time.Duration,
) *UserService {
	if c == nil {
		c = cache.NewMemoryCache[models.User]()
	}
	return &UserService{
		store:    s,
		provider: provider,
		audit:    auditService,
		metrics:  m,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// Authenticate checks a username and password against the auth provider.
func (s *UserService) Authenticate(
	ctx context.Context,
	username, password string,
) (*models.User, error) {
	result, err := s.provider.Authenticate(ctx, username, password)
	if err != nil || result == nil || !result.Success {
		log.Printf("[Auth] Failed for user=%s provider=%s: %v", username, s.provider.Name(), err)
		s.metrics.RecordLogin(s.provider.Name(), false)
		s.audit.Log(ctx, AuditLogEntry{
			EventType:     models.EventAuthenticationFailure,
			Severity:      models.SeverityWarning,
			ActorUsername: username,
			ResourceType:  models.ResourceUser,
			ResourceName:  username,
			Action:        "Login failed",
			Details:       models.AuditDetails{"provider": s.provider.Name()},
			Success:       false,
		})
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(result.Username)
	if err != nil {
		return nil, storeError(err, ErrInvalidCredentials, "failed to load user")
	}
	s.metrics.RecordLogin(s.provider.Name(), true)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventAuthenticationSuccess,
		ActorUserID:   user.ID,
		ActorUsername: user.Username,
		ResourceType:  models.ResourceUser,
		ResourceID:    user.ID,
		Action:        "Login succeeded",
		Details:       models.AuditDetails{"provider": s.provider.Name()},
		Success:       true,
	})
	return user, nil
}

// GetUserByID returns the user with the given ID, served from cache when
// possible.
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.cached(context.Background(), "user:"+id, func() (*models.User, error) {
		return s.store.GetUserByID(id)
	})
}

// GetUserByUsername returns the named user, served from cache when possible.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.cached(ctx, "username:"+username, func() (*models.User, error) {
		return s.store.GetUserByUsername(username)
	})
}

func (s *UserService) cached(
	ctx context.Context,
	key string,
	load func() (*models.User, error),
) (*models.User, error) {
	user, err := s.cache.GetWithFetch(ctx, key, s.cacheTTL,
		func(context.Context, string) (models.User, error) {
			u, err := load()
			if err != nil {
				return models.User{}, err
			}
			return *u, nil
		},
	)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// AuthSource names the provider used for interactive login.
func (s *UserService) AuthSource() string {
	if s.provider == nil {
		return authSourceLocal
	}
	return s.provider.Name()
}
