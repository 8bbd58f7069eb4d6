package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confcentral/internal/domain"
)

type profileService struct {
	profileRepo    domain.ProfileRepository
	conferenceRepo domain.ConferenceRepository
	sessionRepo    domain.SessionRepository
}

// NewProfileService creates a ProfileService with the given repositories.
func NewProfileService(
	profileRepo domain.ProfileRepository,
	conferenceRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
) domain.ProfileService {
	return &profileService{
		profileRepo:    profileRepo,
		conferenceRepo: conferenceRepo,
		sessionRepo:    sessionRepo,
	}
}

// GetOrCreate returns the caller's profile, creating it lazily on first
// access with the identity's display fields and an unspecified shirt size.
func (s *profileService) GetOrCreate(ctx context.Context, identity *domain.Identity) (*domain.Profile, error) {
	if identity == nil || identity.UserID == "" {
		return nil, fmt.Errorf("caller identity is required: %w", domain.ErrInvalidInput)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	now := time.Now()
	profile = &domain.Profile{
		UserID:                 identity.UserID,
		DisplayName:            identity.DisplayName,
		MainEmail:              identity.Email,
		TeeShirtSize:           domain.TeeShirtSizeNotSpecified,
		ConferenceKeysToAttend: []string{},
		SessionKeysWishlist:    []string{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// A concurrent first access may have created the row already.
		if errors.Is(err, domain.ErrConflict) {
			return s.profileRepo.GetByUserID(ctx, identity.UserID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID, displayName, teeShirtSize string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if displayName != "" {
		profile.DisplayName = displayName
	}
	if teeShirtSize != "" {
		profile.TeeShirtSize = teeShirtSize
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// ConferencesToAttend multi-gets the conferences behind the profile's stored
// key tokens. Tokens that no longer resolve are skipped.
func (s *profileService) ConferencesToAttend(ctx context.Context, userID string) ([]*domain.Conference, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	refs := make([]domain.ConferenceRef, 0, len(profile.ConferenceKeysToAttend))
	for _, token := range profile.ConferenceKeysToAttend {
		key, err := domain.DecodeKey(token)
		if err != nil {
			continue
		}
		organizerID, conferenceID, err := domain.ConferenceKeyParts(key)
		if err != nil {
			continue
		}
		refs = append(refs, domain.ConferenceRef{OrganizerID: organizerID, ID: conferenceID})
	}
	conferences, err := s.conferenceRepo.GetMulti(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get conferences to attend: %w", err)
	}
	return conferences, nil
}

// SessionsInWishlist multi-gets the sessions behind the profile's wishlist
// tokens. Tokens that no longer resolve are skipped.
func (s *profileService) SessionsInWishlist(ctx context.Context, userID string) ([]*domain.Session, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	refs := make([]domain.SessionRef, 0, len(profile.SessionKeysWishlist))
	for _, token := range profile.SessionKeysWishlist {
		key, err := domain.DecodeKey(token)
		if err != nil {
			continue
		}
		conferenceKey, sessionID, err := domain.SessionKeyParts(key)
		if err != nil {
			continue
		}
		refs = append(refs, domain.SessionRef{ConferenceKey: conferenceKey, ID: sessionID})
	}
	sessions, err := s.sessionRepo.GetMulti(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get wishlisted sessions: %w", err)
	}
	return sessions, nil
}
