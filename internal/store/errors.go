package store

import "errors"

var (
	// ErrUsernameConflict is returned when a username already exists
	ErrUsernameConflict = errors.New("username already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency.
	// Token stores also return it for expired tokens and for removals
	// that deleted nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrAlreadyAuthorized is returned when a request token was approved by
	// someone else between reading and authorizing it.
	ErrAlreadyAuthorized = errors.New("request token already authorized")
)
