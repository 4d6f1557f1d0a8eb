package models

import (
	"time"
)

// Consumer is a registered OAuth 1.0a consumer (the remote application).
type Consumer struct {
	Key           string `gorm:"primaryKey;type:varchar(255)"`
	Name          string `gorm:"not null"`
	Description   string
	Secret        string `json:"-"` // shared secret for HMAC-SHA1 and PLAINTEXT
	PublicKey     string `gorm:"type:text"` // PEM, for RSA-SHA1
	CallbackURL   string
	TwoLOAllowed  bool
	TwoLOExecutor string // username 2LO requests run as; empty means consumer identity
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (Consumer) TableName() string {
	return "oauth_consumers"
}

// HasPublicKey reports whether RSA-SHA1 signatures can be verified.
func (c *Consumer) HasPublicKey() bool {
	return c.PublicKey != ""
}
