package domain

import "context"

// Transactor runs fn inside one atomic storage transaction. Repository
// calls made with the context passed to fn participate in that transaction.
// If fn returns an error the transaction is rolled back and the error
// returned unchanged; otherwise the transaction commits.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrationService is the transactional registration/inventory core.
// Register and Unregister mutate the caller's profile and the conference
// seat count as one all-or-nothing unit; wishlist operations touch only
// the profile.
type RegistrationService interface {
	// Register registers the caller for the conference, taking one seat.
	// Fails with ErrNotFound, ErrAlreadyRegistered, ErrNoSeatsAvailable,
	// or ErrContention after retries are exhausted.
	Register(ctx context.Context, ident Identity, conferenceID string) (bool, error)
	// Unregister removes the caller's registration and returns the seat.
	// Returns (false, nil) when the caller was not registered.
	Unregister(ctx context.Context, ident Identity, conferenceID string) (bool, error)
	// AddToWishlist adds the session to the caller's wishlist.
	// Fails with ErrNotFound or ErrAlreadyInWishlist.
	AddToWishlist(ctx context.Context, ident Identity, sessionID string) (bool, error)
	// RemoveFromWishlist removes the session from the caller's wishlist.
	// Returns (false, nil) when the session was not wishlisted.
	RemoveFromWishlist(ctx context.Context, ident Identity, sessionID string) (bool, error)
}
