package domain

import (
	"context"
	"time"
)

// Tee shirt size preference values stored on a profile.
const (
	TeeShirtSizeNotSpecified = "NOT_SPECIFIED"
	TeeShirtSizeXSM          = "XS_M"
	TeeShirtSizeXSW          = "XS_W"
	TeeShirtSizeSM           = "S_M"
	TeeShirtSizeSW           = "S_W"
	TeeShirtSizeMM           = "M_M"
	TeeShirtSizeMW           = "M_W"
	TeeShirtSizeLM           = "L_M"
	TeeShirtSizeLW           = "L_W"
	TeeShirtSizeXLM          = "XL_M"
	TeeShirtSizeXLW          = "XL_W"
)

// Profile represents a user's conference profile. The user id is the key.
// The two key-token lists are ordered and duplicate-free; they are mutated
// only by the registration and wishlist operations.
type Profile struct {
	UserID                 string    `json:"user_id"`
	DisplayName            string    `json:"display_name"`
	MainEmail              string    `json:"main_email"`
	TeeShirtSize           string    `json:"tee_shirt_size"`
	ConferenceKeysToAttend []string  `json:"conference_keys_to_attend"`
	SessionKeysWishlist    []string  `json:"session_keys_wishlist"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Key returns the profile's entity key (the user id is the name).
func (p *Profile) Key() *Key {
	return NewNameKey(KindProfile, p.UserID, nil)
}

// Identity is a resolved caller: the stable user id plus the display fields
// used when a profile is created lazily on first access.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// IdentityResolver maps an authenticated request principal (e.g. a bearer
// token) to a stable identity. Implementations live in adapters.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

// ProfileRepository defines storage for profiles. Wishlist mutations are
// single-row atomic read-modify-writes.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	// AddToWishlist appends the session key token unless already present.
	// Returns true if the token was appended; ErrNotFound when no profile
	// row exists for userID.
	AddToWishlist(ctx context.Context, userID, sessionKey string) (bool, error)
	// RemoveFromWishlist removes the session key token if present. Returns
	// true if the token was removed; ErrNotFound when no profile row exists
	// for userID.
	RemoveFromWishlist(ctx context.Context, userID, sessionKey string) (bool, error)
}

// ProfileService defines the business logic for profiles.
type ProfileService interface {
	// GetOrCreate returns the caller's profile, creating it on first access.
	GetOrCreate(ctx context.Context, identity *Identity) (*Profile, error)
	// Update saves the mutable profile fields (display name, tee shirt size).
	Update(ctx context.Context, userID, displayName, teeShirtSize string) (*Profile, error)
	// ConferencesToAttend resolves the profile's registered conference keys.
	ConferencesToAttend(ctx context.Context, userID string) ([]*Conference, error)
	// SessionsInWishlist resolves the profile's wishlisted session keys.
	SessionsInWishlist(ctx context.Context, userID string) ([]*Session, error)
}
