package domain

import (
	"context"
	"time"
)

// Session creation defaults, applied when the organizer leaves the
// fields unset.
const (
	DefaultSessionSpeaker = "Default speaker"
	DefaultSessionType    = "default type"
)

// DefaultHighlights is the highlight set applied when none are given.
var DefaultHighlights = []string{"Default", "highlights"}

// Session represents a conference session or talk. The speaker is linked
// by stable id, not by name.
// swagger:model Session
type Session struct {
	ID            string     `json:"id"`
	ConferenceID  string     `json:"conference_id"`
	Name          string     `json:"name"`
	Highlights    []string   `json:"highlights"`
	SpeakerID     string     `json:"speaker_id"`
	Duration      int        `json:"duration"`
	TypeOfSession string     `json:"type_of_session"`
	Date          *time.Time `json:"date"`
	// StartTime is the 24-hour start time as an integer, e.g. 1430.
	StartTime int       `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Speaker represents a session speaker. Name is unique; sessions reference
// the speaker by ID.
// swagger:model Speaker
type Speaker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByConferenceID(ctx context.Context, conferenceID string) ([]*Session, error)
	ListByConferenceIDAndType(ctx context.Context, conferenceID, typeOfSession string) ([]*Session, error)
	ListBySpeakerID(ctx context.Context, speakerID string) ([]*Session, error)
	ListAll(ctx context.Context) ([]*Session, error)
}

// SpeakerRepository defines the interface for speaker storage.
type SpeakerRepository interface {
	Create(ctx context.Context, speaker *Speaker) error
	GetByName(ctx context.Context, name string) (*Speaker, error)
}

// SessionService defines session creation and queries.
type SessionService interface {
	// Create adds a session to the conference. Only the conference's
	// organizer may create sessions.
	Create(ctx context.Context, ident Identity, conferenceID string, session *Session, speakerName string) (*Session, error)
	ListByConference(ctx context.Context, conferenceID string) ([]*Session, error)
	ListByType(ctx context.Context, conferenceID, typeOfSession string) ([]*Session, error)
	// ListBySpeaker returns all sessions hosted by the named speaker
	// across all conferences.
	ListBySpeaker(ctx context.Context, speakerName string) ([]*Session, error)
	ListAll(ctx context.Context) ([]*Session, error)
}
