package models

import (
	"time"
)

// TokenKind discriminates request tokens from access tokens.
type TokenKind string

const (
	TokenKindRequest TokenKind = "request"
	TokenKindAccess  TokenKind = "access"
)

// Token is an OAuth 1.0a request or access token.
type Token struct {
	Value            string    `gorm:"primaryKey;type:varchar(64)"`
	Secret           string    `gorm:"not null"                    json:"-"`
	ConsumerKey      string    `gorm:"not null;index"`
	Kind             TokenKind `gorm:"type:varchar(16);not null;index"`
	CallbackURL      string    // request token only; empty means out-of-band
	Verifier         string    `json:"-"` // request token only; set at authorization
	AuthorizedBy     string    `gorm:"index"`
	AuthorizedAt     *time.Time
	SessionHandle    string `gorm:"index" json:"-"` // access token only
	Timestamp        time.Time `gorm:"column:issued_at;index"`
	ExpiresAt        time.Time `gorm:"index"`
	SessionExpiresAt time.Time `gorm:"index"` // renewal deadline; equals ExpiresAt for request tokens
}

// TableName specifies the table name for GORM
func (Token) TableName() string {
	return "oauth_tokens"
}

func (t *Token) IsAccessToken() bool {
	return t.Kind == TokenKindAccess
}

func (t *Token) IsRequestToken() bool {
	return t.Kind == TokenKindRequest
}

// IsAuthorized reports whether a user has approved this request token.
func (t *Token) IsAuthorized() bool {
	return t.AuthorizedBy != "" && t.Verifier != ""
}

// IsOutOfBand reports whether the consumer asked for manual verifier entry.
func (t *Token) IsOutOfBand() bool {
	return t.CallbackURL == ""
}

func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRenewableAt reports whether an access token is still inside its session window.
func (t *Token) IsRenewableAt(now time.Time) bool {
	return t.IsAccessToken() && now.Before(t.SessionExpiresAt)
}
