package services

import (
	"context"
	"errors"
	"fmt"

	"confcentral/internal/domain"
)

type registrationService struct {
	store       domain.RegistrationStore
	profileRepo domain.ProfileRepository
	sessionRepo domain.SessionRepository
}

// NewRegistrationService creates the registration and wishlist service on
// top of the transactional registration store.
func NewRegistrationService(
	store domain.RegistrationStore,
	profileRepo domain.ProfileRepository,
	sessionRepo domain.SessionRepository,
) domain.RegistrationService {
	return &registrationService{
		store:       store,
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *registrationService) Register(ctx context.Context, userID, conferenceToken string) (bool, error) {
	ref, err := decodeConferenceToken(conferenceToken)
	if err != nil {
		return false, err
	}
	if err := s.store.Register(ctx, userID, ref, conferenceToken); err != nil {
		return false, err
	}
	return true, nil
}

func (s *registrationService) Unregister(ctx context.Context, userID, conferenceToken string) (bool, error) {
	ref, err := decodeConferenceToken(conferenceToken)
	if err != nil {
		return false, err
	}
	return s.store.Unregister(ctx, userID, ref, conferenceToken)
}

// AddToWishlist verifies the session exists, then appends its token to the
// profile's wishlist. Idempotent: adding an already-wishlisted session
// succeeds without a second occurrence.
func (s *registrationService) AddToWishlist(ctx context.Context, userID, sessionToken string) (bool, error) {
	if err := s.checkSessionExists(ctx, sessionToken); err != nil {
		return false, err
	}
	if _, err := s.profileRepo.AddToWishlist(ctx, userID, sessionToken); err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}
	return true, nil
}

func (s *registrationService) RemoveFromWishlist(ctx context.Context, userID, sessionToken string) (bool, error) {
	removed, err := s.profileRepo.RemoveFromWishlist(ctx, userID, sessionToken)
	if err != nil {
		return false, fmt.Errorf("remove from wishlist: %w", err)
	}
	return removed, nil
}

func (s *registrationService) checkSessionExists(ctx context.Context, sessionToken string) error {
	key, err := domain.DecodeKey(sessionToken)
	if err != nil {
		return domain.ErrNotFound
	}
	conferenceKey, sessionID, err := domain.SessionKeyParts(key)
	if err != nil {
		return domain.ErrNotFound
	}
	if _, err := s.sessionRepo.Get(ctx, domain.SessionRef{ConferenceKey: conferenceKey, ID: sessionID}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}
	return nil
}
