package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"confcentral/internal/domain"
)

// featuredSpeakerMessage formats the cached announcement: speaker name plus
// the comma-joined names of their sessions in the conference.
const featuredSpeakerMessage = "Featured speaker %s is hosting: %s"

type sessionService struct {
	sessionRepo    domain.SessionRepository
	conferenceRepo domain.ConferenceRepository
	speakerService domain.SpeakerService
	announcements  domain.AnnouncementCache
	logger         *slog.Logger
}

// NewSessionService creates a SessionService. The announcement cache backs
// the featured-speaker side effect of session creation.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	conferenceRepo domain.ConferenceRepository,
	speakerService domain.SpeakerService,
	announcements domain.AnnouncementCache,
	logger *slog.Logger,
) domain.SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		conferenceRepo: conferenceRepo,
		speakerService: speakerService,
		announcements:  announcements,
		logger:         logger,
	}
}

func (s *sessionService) Create(ctx context.Context, userID, conferenceToken string, in *domain.SessionInput) (*domain.Session, string, error) {
	if in == nil || in.Name == "" {
		return nil, "", fmt.Errorf("session name is required: %w", domain.ErrInvalidInput)
	}
	if in.Speaker == nil {
		return nil, "", fmt.Errorf("session speaker is required: %w", domain.ErrInvalidInput)
	}

	ref, err := decodeConferenceToken(conferenceToken)
	if err != nil {
		return nil, "", err
	}
	conference, err := s.conferenceRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get conference: %w", err)
	}
	// Only the organizer may add sessions to a conference.
	if conference.OrganizerID != userID {
		return nil, "", fmt.Errorf("conference is organized by someone else: %w", domain.ErrUnauthorized)
	}

	speaker, err := s.speakerService.GetOrCreate(ctx, in.Speaker.Name, in.Speaker)
	if err != nil {
		return nil, "", fmt.Errorf("resolve speaker: %w", err)
	}

	id, err := s.sessionRepo.AllocateID(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("allocate session id: %w", err)
	}

	session := &domain.Session{
		ID:            id,
		ConferenceKey: conference.Key().Encode(),
		Name:          in.Name,
		Highlights:    in.Highlights,
		TypeOfSession: in.TypeOfSession,
		StartTime:     in.StartTime,
		Duration:      in.Duration,
		SpeakerName:   speaker.Name,
		CreatedAt:     time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.maybeFeatureSpeaker(ctx, session.ConferenceKey, speaker.Name)

	token := domain.NewIDKey(domain.KindSession, session.ID, conference.Key()).Encode()
	return session, token, nil
}

// maybeFeatureSpeaker caches a featured-speaker announcement when the speaker
// now has more than one session in the conference. The write is advisory:
// failures are logged and never fail the session creation.
func (s *sessionService) maybeFeatureSpeaker(ctx context.Context, conferenceKey, speakerName string) {
	sessions, err := s.sessionRepo.ListBySpeakerInConference(ctx, speakerName, conferenceKey)
	if err != nil {
		s.logger.Warn("featured speaker lookup failed", "error", err, "speaker", speakerName)
		return
	}
	if len(sessions) <= 1 {
		return
	}
	names := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		names = append(names, sess.Name)
	}
	message := fmt.Sprintf(featuredSpeakerMessage, speakerName, strings.Join(names, ", "))
	if err := s.announcements.Set(ctx, message); err != nil {
		s.logger.Warn("featured speaker cache write failed", "error", err, "speaker", speakerName)
	}
}

func (s *sessionService) ListAll(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := s.sessionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) ListByConference(ctx context.Context, conferenceToken, typeOfSession string) ([]*domain.Session, error) {
	ref, err := decodeConferenceToken(conferenceToken)
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
	sessions, err := s.sessionRepo.ListByConference(ctx, conference.Key().Encode(), typeOfSession)
	if err != nil {
		return nil, fmt.Errorf("list conference sessions: %w", err)
	}
	return sessions, nil
}

// ListBySpeaker resolves the speaker through the registry, then filters all
// sessions by speaker reference; the query crosses conference boundaries.
func (s *sessionService) ListBySpeaker(ctx context.Context, speakerName string) ([]*domain.Session, error) {
	speaker, err := s.speakerService.GetOrCreate(ctx, speakerName, nil)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListBySpeaker(ctx, speaker.Name)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) ListUpcoming(ctx context.Context, hourCutoff int, excludedType string) ([]*domain.Session, error) {
	if hourCutoff < 1 {
		return nil, fmt.Errorf("hour cutoff must be at least 1: %w", domain.ErrInvalidInput)
	}
	sessions, err := s.sessionRepo.ListUpcoming(ctx, hourCutoff, excludedType)
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) FeaturedSpeaker(ctx context.Context) (string, bool, error) {
	message, ok, err := s.announcements.Get(ctx)
	if err != nil {
		return "", false, fmt.Errorf("read featured speaker announcement: %w", err)
	}
	return message, ok, nil
}
