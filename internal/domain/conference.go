package domain

import (
	"context"
	"time"
)

// Conference creation defaults, applied when the organizer leaves the
// fields unset.
const (
	DefaultCity = "Default City"
)

// DefaultTopics is the topic set applied when none are given.
var DefaultTopics = []string{"Default", "Topic"}

// Conference represents a conference owned by an organizer profile.
// SeatsAvailable is mutated only by the registration engine and always
// satisfies 0 <= SeatsAvailable <= MaxAttendees.
// swagger:model Conference
type Conference struct {
	ID             string     `json:"id"`
	OrganizerID    string     `json:"organizer_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Topics         []string   `json:"topics"`
	City           string     `json:"city"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Month          int        `json:"month"`
	MaxAttendees   int        `json:"max_attendees"`
	SeatsAvailable int        `json:"seats_available"`
	Version        int        `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ConferenceWithOrganizer bundles a conference with its organizer's
// display name for API responses.
type ConferenceWithOrganizer struct {
	Conference           *Conference `json:"conference"`
	OrganizerDisplayName string      `json:"organizer_display_name"`
}

// Filter fields accepted by conference queries.
const (
	FilterFieldCity         = "CITY"
	FilterFieldTopic        = "TOPIC"
	FilterFieldMonth        = "MONTH"
	FilterFieldMaxAttendees = "MAX_ATTENDEES"
)

// Filter operators accepted by conference queries.
const (
	FilterOpEQ   = "EQ"
	FilterOpNE   = "NE"
	FilterOpGT   = "GT"
	FilterOpGTEQ = "GTEQ"
	FilterOpLT   = "LT"
	FilterOpLTEQ = "LTEQ"
)

// ConferenceFilter is one predicate of a conference query. Field and Op
// must come from the fixed whitelists above.
type ConferenceFilter struct {
	Field string `json:"field"`
	Op    string `json:"operator"`
	Value string `json:"value"`
}

// ConferenceRepository defines the interface for conference storage.
// UpdateSeats is conditional on the version stamp read with the conference
// and returns ErrContention when a concurrent write got there first.
type ConferenceRepository interface {
	Create(ctx context.Context, conf *Conference) error
	GetByID(ctx context.Context, id string) (*Conference, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Conference, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Conference, error)
	// Query runs the fixed-whitelist filter query. orderField names the
	// inequality field to sort on first, or "" for name ordering only.
	Query(ctx context.Context, filters []ConferenceFilter, orderField string) ([]*Conference, error)
	// ListNearlySoldOut returns conferences with 0 < seats_available <= threshold.
	ListNearlySoldOut(ctx context.Context, threshold int) ([]*Conference, error)
	UpdateSeats(ctx context.Context, id string, seatsAvailable, version int) error
}

// ConferenceService defines organizer- and attendee-facing conference operations.
type ConferenceService interface {
	Create(ctx context.Context, ident Identity, conf *Conference) error
	Get(ctx context.Context, conferenceID string) (*ConferenceWithOrganizer, error)
	ListCreated(ctx context.Context, ident Identity) ([]*Conference, error)
	ListAttending(ctx context.Context, ident Identity) ([]*Conference, error)
	Query(ctx context.Context, filters []ConferenceFilter) ([]*Conference, error)
}
