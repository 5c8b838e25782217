package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; services wrap unexpected repository errors with %w instead.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authorization required")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is the base for business-rule conflicts. The specific
	// conflicts below wrap it so callers can match either the broad kind
	// or the exact rule.
	ErrConflict = errors.New("conflict")

	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this conference", ErrConflict)
	ErrNoSeatsAvailable  = fmt.Errorf("%w: no seats available", ErrConflict)
	ErrAlreadyInWishlist = fmt.Errorf("%w: session already in wishlist", ErrConflict)

	// ErrContention signals that an optimistic transaction observed a
	// concurrent modification and aborted. It is the only retryable error.
	ErrContention = errors.New("concurrent modification detected")
)
