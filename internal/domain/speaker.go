package domain

import (
	"context"
	"time"
)

// Speaker represents a speaker. The name IS the key: at most one speaker
// entity exists per distinct name. Speakers are shared by reference across
// sessions and never deleted.
type Speaker struct {
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Specialization string    `json:"specialization"`
	CreatedAt      time.Time `json:"created_at"`
}

// Key returns the speaker's entity key, derived deterministically from the
// name (no allocation).
func (s *Speaker) Key() *Key {
	return NewNameKey(KindSpeaker, s.Name, nil)
}

// SpeakerInput holds the full speaker payload required to create a speaker
// that does not exist yet.
type SpeakerInput struct {
	Name           string
	Age            int
	Specialization string
}

// SpeakerRepository defines storage for speakers.
type SpeakerRepository interface {
	GetByName(ctx context.Context, name string) (*Speaker, error)
	// CreateIfAbsent persists the speaker unless one with the same name
	// already exists; concurrent callers converge on a single row.
	CreateIfAbsent(ctx context.Context, speaker *Speaker) error
}

// SpeakerService defines the get-or-create speaker registry.
type SpeakerService interface {
	// GetOrCreate returns the speaker with the given name, creating it from
	// payload when absent. A nil payload with no existing speaker is a
	// caller contract violation (ErrInvalidInput). Differing payload fields
	// on an existing speaker are ignored: this is an idempotent lookup, not
	// an update.
	GetOrCreate(ctx context.Context, name string, payload *SpeakerInput) (*Speaker, error)
}
