package models

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSetUserContext(t *testing.T) {
	tests := []struct {
		name     string
		user     *User
		expected bool
	}{
		{
			name:     "Valid user",
			user:     &User{ID: "user-123", Username: "alice"},
			expected: true,
		},
		{
			name:     "Nil user",
			user:     nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newCtx := SetUserContext(context.Background(), tt.user)
			if newCtx == nil {
				t.Fatal("SetUserContext returned nil context")
			}

			retrieved := GetUserFromContext(newCtx)
			if tt.expected {
				if retrieved == nil {
					t.Error("Expected user to be in context, but got nil")
				} else if retrieved.ID != tt.user.ID {
					t.Errorf("Expected user ID %s, got %s", tt.user.ID, retrieved.ID)
				}
			} else if retrieved != nil {
				t.Error("Expected no user in context, but got one")
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	identity := &Identity{Username: "alice", ConsumerKey: "jenkins"}

	ctx := SetIdentityContext(context.Background(), identity)
	got := GetIdentityFromContext(ctx)
	if got != identity {
		t.Fatalf("Expected identity %+v, got %+v", identity, got)
	}

	if GetIdentityFromContext(context.Background()) != nil {
		t.Error("Expected no identity in empty context")
	}
	if SetIdentityContext(ctx, nil) != ctx {
		t.Error("Setting a nil identity should return the context unchanged")
	}
}

func TestGetUsernameFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("request context", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), &User{Username: "alice"})
		if got := GetUsernameFromContext(ctx); got != "alice" {
			t.Errorf("Expected username %q, got %q", "alice", got)
		}
	})

	t.Run("gin key", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Set("user", &User{Username: "bob"})
		if got := GetUsernameFromContext(c); got != "bob" {
			t.Errorf("Expected username %q, got %q", "bob", got)
		}
	})

	t.Run("gin request context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		req := httptest.NewRequest("GET", "/", nil)
		c.Request = req.WithContext(SetUserContext(req.Context(), &User{Username: "carol"}))
		if got := GetUsernameFromContext(c); got != "carol" {
			t.Errorf("Expected username %q, got %q", "carol", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := GetUsernameFromContext(context.Background()); got != "" {
			t.Errorf("Expected empty username, got %q", got)
		}
	})
}

func TestIdentity_Principal(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
		consumer bool
	}{
		{name: "user", identity: Identity{Username: "alice", ConsumerKey: "jenkins"}, want: "alice"},
		{
			name:     "consumer only",
			identity: Identity{ConsumerKey: "jenkins", TwoLegged: true},
			want:     "consumer:jenkins",
			consumer: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.Principal(); got != tt.want {
				t.Errorf("Principal() = %q, want %q", got, tt.want)
			}
			if got := tt.identity.IsConsumerOnly(); got != tt.consumer {
				t.Errorf("IsConsumerOnly() = %v, want %v", got, tt.consumer)
			}
		})
	}
}
