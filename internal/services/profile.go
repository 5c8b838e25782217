package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profileRepo domain.ProfileRepository
}

// NewProfileService creates a ProfileService with the given repository.
func NewProfileService(profileRepo domain.ProfileRepository) domain.ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) Get(ctx context.Context, ident domain.Identity) (*domain.Profile, error) {
	prof, err := s.profileRepo.GetByID(ctx, ident.UserID)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	// First authenticated access: create the profile from the identity.
	prof = domain.NewProfile(ident.UserID, ident.DisplayName, ident.Email, time.Now())
	if err := s.profileRepo.Create(ctx, prof); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return prof, nil
}

func (s *profileService) Save(ctx context.Context, ident domain.Identity, displayName string, size domain.TeeShirtSize) (*domain.Profile, error) {
	if size != "" && !size.Valid() {
		return nil, fmt.Errorf("%w: unknown tee shirt size %q", domain.ErrInvalidInput, size)
	}

	prof, err := s.Get(ctx, ident)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		prof.DisplayName = displayName
	}
	if size != "" {
		prof.TeeShirtSize = size
	}
	if err := s.profileRepo.Update(ctx, prof); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return prof, nil
}
