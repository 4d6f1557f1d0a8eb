package models

import (
	"testing"
	"time"
)

func TestToken_IsExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{name: "not expired", expiresAt: now.Add(time.Hour), want: false},
		{name: "already expired", expiresAt: now.Add(-time.Second), want: true},
		{name: "expires exactly now", expiresAt: now, want: true},
		{name: "zero time is expired", expiresAt: time.Time{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &Token{ExpiresAt: tt.expiresAt}
			if got := tok.IsExpiredAt(now); got != tt.want {
				t.Errorf("IsExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToken_IsAuthorized(t *testing.T) {
	tests := []struct {
		name  string
		token Token
		want  bool
	}{
		{name: "fresh", token: Token{Kind: TokenKindRequest}, want: false},
		{name: "user without verifier", token: Token{AuthorizedBy: "alice"}, want: false},
		{name: "authorized", token: Token{AuthorizedBy: "alice", Verifier: "v1"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.IsAuthorized(); got != tt.want {
				t.Errorf("IsAuthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToken_IsRenewableAt(t *testing.T) {
	now := time.Now()
	access := &Token{
		Kind:             TokenKindAccess,
		ExpiresAt:        now.Add(-time.Hour),
		SessionExpiresAt: now.Add(time.Hour),
	}
	if !access.IsRenewableAt(now) {
		t.Error("expired access token inside its session window should be renewable")
	}
	if access.IsRenewableAt(now.Add(2 * time.Hour)) {
		t.Error("access token past its session window should not be renewable")
	}

	request := &Token{Kind: TokenKindRequest, SessionExpiresAt: now.Add(time.Hour)}
	if request.IsRenewableAt(now) {
		t.Error("request tokens are never renewable")
	}
}

func TestToken_Kind(t *testing.T) {
	tok := &Token{Kind: TokenKindAccess}
	if !tok.IsAccessToken() || tok.IsRequestToken() {
		t.Error("access token kind mismatch")
	}
	if !(&Token{}).IsOutOfBand() {
		t.Error("token without callback should be out-of-band")
	}
}
