package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confcentral/internal/domain"
)

type speakerService struct {
	speakerRepo domain.SpeakerRepository
}

// NewSpeakerService creates the speaker registry service.
func NewSpeakerService(speakerRepo domain.SpeakerRepository) domain.SpeakerService {
	return &speakerService{speakerRepo: speakerRepo}
}

// GetOrCreate returns the speaker for name, creating it from payload when no
// entity exists yet. The lookup wins over the payload: differing payload
// fields on an existing speaker are ignored.
func (s *speakerService) GetOrCreate(ctx context.Context, name string, payload *domain.SpeakerInput) (*domain.Speaker, error) {
	if name == "" {
		return nil, fmt.Errorf("speaker name is required: %w", domain.ErrInvalidInput)
	}

	speaker, err := s.speakerRepo.GetByName(ctx, name)
	if err == nil {
		return speaker, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get speaker: %w", err)
	}

	if payload == nil {
		return nil, fmt.Errorf("speaker %q does not exist and no payload was given: %w", name, domain.ErrInvalidInput)
	}

	created := &domain.Speaker{
		Name:           name,
		Age:            payload.Age,
		Specialization: payload.Specialization,
		CreatedAt:      time.Now(),
	}
	if err := s.speakerRepo.CreateIfAbsent(ctx, created); err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}

	// Read back: a concurrent creator may have won, and both callers must
	// observe the same persisted entity.
	speaker, err = s.speakerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get speaker after create: %w", err)
	}
	return speaker, nil
}
