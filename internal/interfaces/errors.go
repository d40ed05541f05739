package interfaces

import "errors"

// Common sentinel errors shared across storage and service boundaries.
var (
	// ErrKeyNotFound is returned when a key/value lookup misses.
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaNotFound is returned when no quota record exists for a user.
	ErrQuotaNotFound = errors.New("quota not found")

	// ErrQuotaExceeded is returned when a user has exhausted the daily window.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrAdviceNotFound is returned when no cached advice exists for a key.
	ErrAdviceNotFound = errors.New("advice not found")
)
