package domain

import (
	"context"
	"time"
)

// Session types used by the type-of-session filters.
const (
	SessionTypeLecture  = "lecture"
	SessionTypeKeynote  = "keynote"
	SessionTypeWorkshop = "workshop"
)

// Session represents a conference session, a child of exactly one
// conference. ConferenceKey holds the parent conference's websafe key token
// (the ancestor column; it also powers the cross-conference speaker query).
// Sessions are immutable once created.
type Session struct {
	ID            int64     `json:"id"`
	ConferenceKey string    `json:"conference_key"`
	Name          string    `json:"name"`
	Highlights    string    `json:"highlights"`
	TypeOfSession string    `json:"type_of_session"`
	StartTime     int       `json:"start_time"`
	Duration      int       `json:"duration"`
	SpeakerName   string    `json:"speaker_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionRef locates a session row: the parent conference key token plus the
// id allocated within it.
type SessionRef struct {
	ConferenceKey string
	ID            int64
}

// SessionInput holds the caller-supplied fields for creating a session.
// Speaker is required; it is resolved through the speaker registry.
type SessionInput struct {
	Name          string
	Highlights    string
	TypeOfSession string
	StartTime     int
	Duration      int
	Speaker       *SpeakerInput
}

// SessionRepository defines storage for sessions.
type SessionRepository interface {
	// AllocateID reserves a fresh session id so the full key exists before
	// the entity is written.
	AllocateID(ctx context.Context) (int64, error)
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, ref SessionRef) (*Session, error)
	GetMulti(ctx context.Context, refs []SessionRef) ([]*Session, error)
	// ListAll returns every session across all conferences.
	ListAll(ctx context.Context) ([]*Session, error)
	// ListByConference returns the sessions under a conference, optionally
	// narrowed to one session type (empty = all types).
	ListByConference(ctx context.Context, conferenceKey, typeOfSession string) ([]*Session, error)
	// ListBySpeaker returns all of a speaker's sessions across conferences.
	ListBySpeaker(ctx context.Context, speakerName string) ([]*Session, error)
	// ListBySpeakerInConference narrows ListBySpeaker to one conference.
	ListBySpeakerInConference(ctx context.Context, speakerName, conferenceKey string) ([]*Session, error)
	// ListUpcoming returns sessions starting within [1, hourCutoff] whose
	// type is not excludedType.
	ListUpcoming(ctx context.Context, hourCutoff int, excludedType string) ([]*Session, error)
}

// AnnouncementCache is a single well-known cache slot for the featured
// speaker announcement. Writes overwrite (last writer wins); losing the
// value is only a staleness, never a correctness failure.
type AnnouncementCache interface {
	Set(ctx context.Context, message string) error
	Get(ctx context.Context) (message string, ok bool, err error)
}

// SessionService defines the business logic for sessions.
type SessionService interface {
	// Create persists a new session under the conference (organizer only),
	// resolving the speaker through the registry and updating the featured
	// speaker announcement as a side effect.
	Create(ctx context.Context, userID, conferenceToken string, in *SessionInput) (*Session, string, error)
	// ListAll lists every session across all conferences.
	ListAll(ctx context.Context) ([]*Session, error)
	ListByConference(ctx context.Context, conferenceToken, typeOfSession string) ([]*Session, error)
	ListBySpeaker(ctx context.Context, speakerName string) ([]*Session, error)
	ListUpcoming(ctx context.Context, hourCutoff int, excludedType string) ([]*Session, error)
	// FeaturedSpeaker returns the current announcement, if any.
	FeaturedSpeaker(ctx context.Context) (string, bool, error)
}
