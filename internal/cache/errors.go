package cache

import "errors"

var (
	// ErrCacheMiss is returned for keys that are absent or expired.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheUnavailable wraps backend failures. Callers must not treat it
	// as a miss: an unreachable nonce cache fails the request.
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue is returned when a stored value cannot be decoded.
	ErrInvalidValue = errors.New("cache: invalid value")
)
