package models

import (
	"time"
)

// Roles a local account can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a local account. Users approve request tokens on the consent page
// and are the principal a three-legged access token acts for.
type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	Role         string `gorm:"not null;default:'user'"`
	FullName     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user may manage consumers and read the audit log.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is the full name, or the username when none is set.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
