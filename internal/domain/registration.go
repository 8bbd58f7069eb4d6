package domain

import "context"

// RegistrationStore performs the cross-entity transactional mutations of the
// registration engine: the profile's attend list and the conference's seat
// counter commit together or not at all. Implementations retry a bounded
// number of times on concurrent-modification conflicts and surface
// ErrConflict when retries exhaust.
type RegistrationStore interface {
	// Register appends the conference key token to the profile's attend
	// list and decrements the seat counter. ErrConflict when the profile is
	// already registered or no seats remain; ErrNotFound when either row is
	// missing.
	Register(ctx context.Context, userID string, ref ConferenceRef, conferenceKey string) error
	// Unregister removes the token and increments the seat counter. Returns
	// false with no mutation when the token is not in the attend list.
	Unregister(ctx context.Context, userID string, ref ConferenceRef, conferenceKey string) (bool, error)
}

// RegistrationService defines the registration and wishlist operations
// exposed to the transport layer.
type RegistrationService interface {
	// Register registers the user for the conference. Returns true on
	// success; ErrConflict when already registered or sold out.
	Register(ctx context.Context, userID, conferenceToken string) (bool, error)
	// Unregister removes the registration. Returns false (no error, no
	// mutation) when the user was not registered.
	Unregister(ctx context.Context, userID, conferenceToken string) (bool, error)
	// AddToWishlist adds the session to the user's wishlist. Idempotent:
	// returns true even when already present.
	AddToWishlist(ctx context.Context, userID, sessionToken string) (bool, error)
	// RemoveFromWishlist removes the session from the wishlist. Returns
	// false when it was not present.
	RemoveFromWishlist(ctx context.Context, userID, sessionToken string) (bool, error)
}
