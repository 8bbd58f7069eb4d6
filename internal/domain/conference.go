package domain

import (
	"context"
	"time"
)

// Conference represents a conference, a child of its organizer's profile.
// SeatsAvailable is mutated only by the registration engine and never goes
// negative; seats_available plus the number of registered profiles always
// equals MaxAttendees.
type Conference struct {
	ID             int64     `json:"id"`
	OrganizerID    string    `json:"organizer_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Topics         []string  `json:"topics"`
	City           string    `json:"city"`
	Month          int       `json:"month"`
	MaxAttendees   int       `json:"max_attendees"`
	SeatsAvailable int       `json:"seats_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Key returns the conference's entity key, scoped under the organizer.
func (c *Conference) Key() *Key {
	return NewIDKey(KindConference, c.ID, NewNameKey(KindProfile, c.OrganizerID, nil))
}

// ConferenceRef locates a conference row: the organizer scope plus the id
// allocated within it.
type ConferenceRef struct {
	OrganizerID string
	ID          int64
}

// ConferenceInput holds the caller-supplied fields for creating a conference.
type ConferenceInput struct {
	Name         string
	Description  string
	Topics       []string
	City         string
	Month        int
	MaxAttendees int
}

// ConferenceRepository defines storage for conferences. Reads scoped by
// organizer id observe all committed writes under that organizer.
type ConferenceRepository interface {
	// AllocateID reserves a fresh conference id so the full key exists
	// before the entity is written.
	AllocateID(ctx context.Context) (int64, error)
	Create(ctx context.Context, conference *Conference) error
	Get(ctx context.Context, ref ConferenceRef) (*Conference, error)
	GetMulti(ctx context.Context, refs []ConferenceRef) ([]*Conference, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Conference, error)
	// Query runs a composed filter/order query (see BuildConferenceQuery).
	Query(ctx context.Context, q *ConferenceQuery) ([]*Conference, error)
}

// ConferenceService defines the business logic for conferences.
type ConferenceService interface {
	// Create persists a new conference under the organizer's profile and
	// returns it with its websafe key token.
	Create(ctx context.Context, organizerID string, in *ConferenceInput) (*Conference, string, error)
	// Get resolves a websafe conference key token.
	Get(ctx context.Context, token string) (*Conference, error)
	// GetOwned resolves a token and verifies the caller organizes it.
	GetOwned(ctx context.Context, userID, token string) (*Conference, error)
	// Query lists conferences matching dynamically composed filters.
	Query(ctx context.Context, inequalityField string, filters []Filter) ([]*Conference, error)
	// ListCreated lists the conferences organized by the user.
	ListCreated(ctx context.Context, userID string) ([]*Conference, error)
}
