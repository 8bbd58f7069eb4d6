package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"confcentral/internal/domain"
)

type conferenceService struct {
	conferenceRepo domain.ConferenceRepository
	profileRepo    domain.ProfileRepository
	emailService   domain.EmailService
	logger         *slog.Logger
}

// NewConferenceService creates a ConferenceService. The email service is used
// for the fire-and-forget creation confirmation and may be nil.
func NewConferenceService(
	conferenceRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.ConferenceService {
	return &conferenceService{
		conferenceRepo: conferenceRepo,
		profileRepo:    profileRepo,
		emailService:   emailService,
		logger:         logger,
	}
}

func (s *conferenceService) Create(ctx context.Context, organizerID string, in *domain.ConferenceInput) (*domain.Conference, string, error) {
	if organizerID == "" {
		return nil, "", fmt.Errorf("organizer is required: %w", domain.ErrInvalidInput)
	}
	if in == nil || in.Name == "" {
		return nil, "", fmt.Errorf("conference name is required: %w", domain.ErrInvalidInput)
	}
	if in.MaxAttendees < 0 {
		return nil, "", fmt.Errorf("max attendees must not be negative: %w", domain.ErrInvalidInput)
	}

	id, err := s.conferenceRepo.AllocateID(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("allocate conference id: %w", err)
	}

	now := time.Now()
	conference := &domain.Conference{
		ID:             id,
		OrganizerID:    organizerID,
		Name:           in.Name,
		Description:    in.Description,
		Topics:         in.Topics,
		City:           in.City,
		Month:          in.Month,
		MaxAttendees:   in.MaxAttendees,
		SeatsAvailable: in.MaxAttendees,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.conferenceRepo.Create(ctx, conference); err != nil {
		return nil, "", fmt.Errorf("create conference: %w", err)
	}

	s.sendConfirmation(ctx, conference)

	return conference, conference.Key().Encode(), nil
}

// sendConfirmation emails the organizer about the new conference. Failures
// are logged and discarded; they never fail the creation.
func (s *conferenceService) sendConfirmation(ctx context.Context, conference *domain.Conference) {
	if s.emailService == nil {
		return
	}
	profile, err := s.profileRepo.GetByUserID(ctx, conference.OrganizerID)
	if err != nil {
		s.logger.Warn("skipping conference confirmation email", "error", err, "organizer_id", conference.OrganizerID)
		return
	}
	data := &domain.ConferenceConfirmationEmailData{
		Email:          profile.MainEmail,
		OrganizerName:  profile.DisplayName,
		ConferenceName: conference.Name,
		City:           conference.City,
		MaxAttendees:   conference.MaxAttendees,
	}
	if err := s.emailService.SendConferenceConfirmation(ctx, data); err != nil {
		s.logger.Warn("conference confirmation email failed", "error", err, "conference", conference.Name)
	}
}

func (s *conferenceService) Get(ctx context.Context, token string) (*domain.Conference, error) {
	ref, err := decodeConferenceToken(token)
	if err != nil {
		return nil, err
	}
	conference, err := s.conferenceRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return conference, nil
}

// GetOwned resolves the token and verifies the conference belongs to the
// caller's owned set.
func (s *conferenceService) GetOwned(ctx context.Context, userID, token string) (*domain.Conference, error) {
	conference, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if conference.OrganizerID != userID {
		return nil, fmt.Errorf("conference is organized by someone else: %w", domain.ErrUnauthorized)
	}
	return conference, nil
}

func (s *conferenceService) Query(ctx context.Context, inequalityField string, filters []domain.Filter) ([]*domain.Conference, error) {
	q, err := domain.BuildConferenceQuery(inequalityField, filters)
	if err != nil {
		return nil, err
	}
	conferences, err := s.conferenceRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return conferences, nil
}

func (s *conferenceService) ListCreated(ctx context.Context, userID string) ([]*domain.Conference, error) {
	conferences, err := s.conferenceRepo.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conferences by organizer: %w", err)
	}
	return conferences, nil
}

// decodeConferenceToken maps any malformed or mis-shaped token to ErrNotFound:
// from the caller's point of view the token simply resolves to nothing.
func decodeConferenceToken(token string) (domain.ConferenceRef, error) {
	key, err := domain.DecodeKey(token)
	if err != nil {
		return domain.ConferenceRef{}, domain.ErrNotFound
	}
	organizerID, conferenceID, err := domain.ConferenceKeyParts(key)
	if err != nil {
		return domain.ConferenceRef{}, domain.ErrNotFound
	}
	return domain.ConferenceRef{OrganizerID: organizerID, ID: conferenceID}, nil
}
