package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/go-authgate/applink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByUsername(username string) (*models.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func TestLocalAuthProvider_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	provider := NewLocalAuthProvider(fakeUsers{
		"alice": {
			Username:     "alice",
			Email:        "alice@example.com",
			FullName:     "Alice",
			PasswordHash: string(hash),
		},
		"nohash": {Username: "nohash"},
	})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", username: "alice", password: "correct horse"},
		{name: "wrong password", username: "alice", password: "battery staple", wantErr: true},
		{name: "unknown user", username: "mallory", password: "correct horse", wantErr: true},
		{name: "user without password", username: "nohash", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := provider.Authenticate(context.Background(), tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Equal(t, "alice", result.Username)
			assert.Equal(t, "alice@example.com", result.Email)
			assert.Equal(t, "Alice", result.FullName)
		})
	}

	assert.Equal(t, "local", provider.Name())
}
