package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

// registerMaxRetries bounds in-process retries when an optimistic
// transaction aborts on contention. The caller sees ErrContention once
// the budget is exhausted.
const registerMaxRetries = 3

type registrationService struct {
	tx          domain.Transactor
	profileRepo domain.ProfileRepository
	confRepo    domain.ConferenceRepository
	sessionRepo domain.SessionRepository
	logger      *slog.Logger
}

// NewRegistrationService creates the transactional registration engine.
func NewRegistrationService(
	tx domain.Transactor,
	profileRepo domain.ProfileRepository,
	confRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		tx:          tx,
		profileRepo: profileRepo,
		confRepo:    confRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (s *registrationService) Register(ctx context.Context, ident domain.Identity, conferenceID string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt <= registerMaxRetries; attempt++ {
		err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
			prof, err := s.getOrCreateProfile(txCtx, ident)
			if err != nil {
				return err
			}
			conf, err := s.confRepo.GetByID(txCtx, conferenceID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("get conference: %w", err)
			}
			if prof.IsAttending(conferenceID) {
				return domain.ErrAlreadyRegistered
			}
			if conf.SeatsAvailable <= 0 {
				return domain.ErrNoSeatsAvailable
			}

			// Register user, take away one seat. Both writes are
			// conditioned on the versions read above; either failing
			// aborts the whole transaction.
			prof.ConferenceKeysToAttend = append(prof.ConferenceKeysToAttend, conferenceID)
			if err := s.profileRepo.Update(txCtx, prof); err != nil {
				return err
			}
			return s.confRepo.UpdateSeats(txCtx, conf.ID, conf.SeatsAvailable-1, conf.Version)
		})
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrContention) {
			return false, err
		}
		lastErr = err
		s.logger.DebugContext(ctx, "registration contention, retrying",
			"conference_id", conferenceID, "user_id", ident.UserID, "attempt", attempt+1)
	}
	return false, lastErr
}

func (s *registrationService) Unregister(ctx context.Context, ident domain.Identity, conferenceID string) (bool, error) {
	var registered bool
	var lastErr error
	for attempt := 0; attempt <= registerMaxRetries; attempt++ {
		err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
			prof, err := s.getOrCreateProfile(txCtx, ident)
			if err != nil {
				return err
			}
			conf, err := s.confRepo.GetByID(txCtx, conferenceID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("get conference: %w", err)
			}
			if !prof.IsAttending(conferenceID) {
				// Idempotent no-op, not an error.
				registered = false
				return nil
			}
			registered = true

			keys := prof.ConferenceKeysToAttend[:0]
			for _, k := range prof.ConferenceKeysToAttend {
				if k != conferenceID {
					keys = append(keys, k)
				}
			}
			prof.ConferenceKeysToAttend = keys
			if err := s.profileRepo.Update(txCtx, prof); err != nil {
				return err
			}
			seats := conf.SeatsAvailable + 1
			if seats > conf.MaxAttendees {
				// Inventory invariant: never above capacity.
				seats = conf.MaxAttendees
			}
			return s.confRepo.UpdateSeats(txCtx, conf.ID, seats, conf.Version)
		})
		if err == nil {
			return registered, nil
		}
		if !errors.Is(err, domain.ErrContention) {
			return false, err
		}
		lastErr = err
		s.logger.DebugContext(ctx, "unregistration contention, retrying",
			"conference_id", conferenceID, "user_id", ident.UserID, "attempt", attempt+1)
	}
	return false, lastErr
}

func (s *registrationService) AddToWishlist(ctx context.Context, ident domain.Identity, sessionID string) (bool, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get session: %w", err)
	}

	// Profile-only write; no cross-entity transaction needed, but the
	// versioned update still guards against concurrent wishlist edits.
	var lastErr error
	for attempt := 0; attempt <= registerMaxRetries; attempt++ {
		prof, err := s.getOrCreateProfile(ctx, ident)
		if err != nil {
			return false, err
		}
		if prof.HasWishlisted(sessionID) {
			return false, domain.ErrAlreadyInWishlist
		}
		prof.SessionWishlist = append(prof.SessionWishlist, sessionID)
		err = s.profileRepo.Update(ctx, prof)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrContention) {
			return false, fmt.Errorf("update profile: %w", err)
		}
		lastErr = err
	}
	return false, lastErr
}

func (s *registrationService) RemoveFromWishlist(ctx context.Context, ident domain.Identity, sessionID string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt <= registerMaxRetries; attempt++ {
		prof, err := s.getOrCreateProfile(ctx, ident)
		if err != nil {
			return false, err
		}
		if !prof.HasWishlisted(sessionID) {
			return false, nil
		}
		keys := prof.SessionWishlist[:0]
		for _, k := range prof.SessionWishlist {
			if k != sessionID {
				keys = append(keys, k)
			}
		}
		prof.SessionWishlist = keys
		err = s.profileRepo.Update(ctx, prof)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrContention) {
			return false, fmt.Errorf("update profile: %w", err)
		}
		lastErr = err
	}
	return false, lastErr
}

// getOrCreateProfile loads the caller's profile, creating it from the
// identity on first access.
func (s *registrationService) getOrCreateProfile(ctx context.Context, ident domain.Identity) (*domain.Profile, error) {
	prof, err := s.profileRepo.GetByID(ctx, ident.UserID)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	prof = domain.NewProfile(ident.UserID, ident.DisplayName, ident.Email, time.Now())
	if err := s.profileRepo.Create(ctx, prof); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return prof, nil
}
