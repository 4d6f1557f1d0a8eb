package auth

import (
	"context"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var _ core.AuthProvider = (*LocalAuthProvider)(nil)

// UserLookup finds a local user record by username.
type UserLookup interface {
	GetUserByUsername(username string) (*models.User, error)
}

// LocalAuthProvider handles local database authentication
type LocalAuthProvider struct {
	users UserLookup
}

// NewLocalAuthProvider creates a new local authentication provider
func NewLocalAuthProvider(users UserLookup) *LocalAuthProvider {
	return &LocalAuthProvider{users: users}
}

// Authenticate verifies credentials against the bcrypt hash stored locally
func (p *LocalAuthProvider) Authenticate(
	_ context.Context,
	username, password string,
) (*core.AuthResult, error) {
	user, err := p.users.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(password),
	); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &core.AuthResult{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Success:  true,
	}, nil
}

// Name returns provider name for logging
func (p *LocalAuthProvider) Name() string {
	return "local"
}
