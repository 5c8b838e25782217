package domain

import (
	"context"
	"time"
)

// TeeShirtSize is the attendee shirt-size preference.
// swagger:model TeeShirtSize
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

var teeShirtSizes = map[TeeShirtSize]struct{}{
	TeeShirtNotSpecified: {},
	TeeShirtXSM:          {}, TeeShirtXSW: {},
	TeeShirtSM: {}, TeeShirtSW: {},
	TeeShirtMM: {}, TeeShirtMW: {},
	TeeShirtLM: {}, TeeShirtLW: {},
	TeeShirtXLM: {}, TeeShirtXLW: {},
	TeeShirtXXLM: {}, TeeShirtXXLW: {},
	TeeShirtXXXLM: {}, TeeShirtXXXLW: {},
}

// Valid reports whether s is a known shirt size.
func (s TeeShirtSize) Valid() bool {
	_, ok := teeShirtSizes[s]
	return ok
}

// Profile represents a user profile. The ID is the stable external user id;
// the profile is created lazily on first authenticated access.
// swagger:model Profile
type Profile struct {
	ID                     string       `json:"id"`
	DisplayName            string       `json:"display_name"`
	MainEmail              string       `json:"main_email"`
	TeeShirtSize           TeeShirtSize `json:"tee_shirt_size"`
	ConferenceKeysToAttend []string     `json:"conference_keys_to_attend"`
	SessionWishlist        []string     `json:"session_wishlist"`
	Version                int          `json:"-"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// NewProfile returns a new Profile seeded from the authenticated identity.
func NewProfile(id, displayName, mainEmail string, createdAt time.Time) *Profile {
	return &Profile{
		ID:           id,
		DisplayName:  displayName,
		MainEmail:    mainEmail,
		TeeShirtSize: TeeShirtNotSpecified,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// IsAttending reports whether conferenceID is in the attending set.
func (p *Profile) IsAttending(conferenceID string) bool {
	for _, k := range p.ConferenceKeysToAttend {
		if k == conferenceID {
			return true
		}
	}
	return false
}

// HasWishlisted reports whether sessionID is in the wishlist.
func (p *Profile) HasWishlisted(sessionID string) bool {
	for _, k := range p.SessionWishlist {
		if k == sessionID {
			return true
		}
	}
	return false
}

// ProfileRepository defines the interface for profile storage.
// Update is conditional on the version stamp read with the profile and
// returns ErrContention when a concurrent write got there first.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
}

// ProfileService defines the business logic for user profiles.
type ProfileService interface {
	// Get returns the caller's profile, creating it from the identity if absent.
	Get(ctx context.Context, ident Identity) (*Profile, error)
	// Save updates the user-modifiable fields and returns the stored profile.
	Save(ctx context.Context, ident Identity, displayName string, size TeeShirtSize) (*Profile, error)
}
