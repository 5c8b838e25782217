package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

type conferenceService struct {
	confRepo    domain.ConferenceRepository
	profileRepo domain.ProfileRepository
	dispatcher  domain.TaskDispatcher
	logger      *slog.Logger
}

// NewConferenceService creates a ConferenceService with the given repositories.
func NewConferenceService(
	confRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	dispatcher domain.TaskDispatcher,
	logger *slog.Logger,
) domain.ConferenceService {
	return &conferenceService{
		confRepo:    confRepo,
		profileRepo: profileRepo,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (s *conferenceService) Create(ctx context.Context, ident domain.Identity, conf *domain.Conference) error {
	if conf.Name == "" {
		return fmt.Errorf("%w: conference name is required", domain.ErrInvalidInput)
	}

	// Apply creation defaults for fields the organizer left unset.
	if conf.City == "" {
		conf.City = domain.DefaultCity
	}
	if len(conf.Topics) == 0 {
		conf.Topics = append([]string{}, domain.DefaultTopics...)
	}
	if conf.MaxAttendees < 0 {
		return fmt.Errorf("%w: max attendees must not be negative", domain.ErrInvalidInput)
	}
	if conf.StartDate != nil && conf.EndDate != nil && conf.EndDate.Before(*conf.StartDate) {
		return fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}

	// Month is derived from the start date; seats start equal to capacity.
	if conf.StartDate != nil {
		conf.Month = int(conf.StartDate.Month())
	} else {
		conf.Month = 0
	}
	conf.SeatsAvailable = conf.MaxAttendees

	conf.OrganizerID = ident.UserID
	now := time.Now()
	conf.CreatedAt = now
	conf.UpdatedAt = now

	// The organizer's profile row must exist before the conference
	// references it; first-time organizers get one created here.
	if err := s.ensureProfile(ctx, ident); err != nil {
		return err
	}

	if err := s.confRepo.Create(ctx, conf); err != nil {
		return fmt.Errorf("create conference: %w", err)
	}

	// Fire-and-forget confirmation email; never affects the committed write.
	s.dispatcher.Enqueue(domain.ConfirmationTask{
		Kind:  domain.TaskConferenceCreated,
		Email: ident.Email,
		Info:  fmt.Sprintf("%s (%s, %d seats)", conf.Name, conf.City, conf.MaxAttendees),
	})
	return nil
}

func (s *conferenceService) Get(ctx context.Context, conferenceID string) (*domain.ConferenceWithOrganizer, error) {
	conf, err := s.confRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	displayName := ""
	if prof, err := s.profileRepo.GetByID(ctx, conf.OrganizerID); err == nil {
		displayName = prof.DisplayName
	}
	return &domain.ConferenceWithOrganizer{
		Conference:           conf,
		OrganizerDisplayName: displayName,
	}, nil
}

func (s *conferenceService) ListCreated(ctx context.Context, ident domain.Identity) ([]*domain.Conference, error) {
	confs, err := s.confRepo.ListByOrganizerID(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	if confs == nil {
		confs = []*domain.Conference{}
	}
	return confs, nil
}

func (s *conferenceService) ListAttending(ctx context.Context, ident domain.Identity) ([]*domain.Conference, error) {
	prof, err := s.profileRepo.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No profile yet means no registrations yet.
			return []*domain.Conference{}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	confs, err := s.confRepo.ListByIDs(ctx, prof.ConferenceKeysToAttend)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	if confs == nil {
		confs = []*domain.Conference{}
	}
	return confs, nil
}

func (s *conferenceService) Query(ctx context.Context, filters []domain.ConferenceFilter) ([]*domain.Conference, error) {
	inequalityField, err := validateFilters(filters)
	if err != nil {
		return nil, err
	}
	confs, err := s.confRepo.Query(ctx, filters, inequalityField)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	if confs == nil {
		confs = []*domain.Conference{}
	}
	return confs, nil
}

func (s *conferenceService) ensureProfile(ctx context.Context, ident domain.Identity) error {
	_, err := s.profileRepo.GetByID(ctx, ident.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get profile: %w", err)
	}
	prof := domain.NewProfile(ident.UserID, ident.DisplayName, ident.Email, time.Now())
	if err := s.profileRepo.Create(ctx, prof); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

var filterFields = map[string]struct{}{
	domain.FilterFieldCity:         {},
	domain.FilterFieldTopic:        {},
	domain.FilterFieldMonth:        {},
	domain.FilterFieldMaxAttendees: {},
}

var filterOps = map[string]struct{}{
	domain.FilterOpEQ:   {},
	domain.FilterOpNE:   {},
	domain.FilterOpGT:   {},
	domain.FilterOpGTEQ: {},
	domain.FilterOpLT:   {},
	domain.FilterOpLTEQ: {},
}

// validateFilters checks every filter against the fixed whitelist and
// enforces the single-inequality-field rule. It returns the field the
// inequality applies to, or "" when all filters are equalities.
func validateFilters(filters []domain.ConferenceFilter) (string, error) {
	inequalityField := ""
	for _, f := range filters {
		if _, ok := filterFields[f.Field]; !ok {
			return "", fmt.Errorf("%w: unknown filter field %q", domain.ErrInvalidInput, f.Field)
		}
		if _, ok := filterOps[f.Op]; !ok {
			return "", fmt.Errorf("%w: unknown filter operator %q", domain.ErrInvalidInput, f.Op)
		}
		switch f.Field {
		case domain.FilterFieldCity:
			if f.Op != domain.FilterOpEQ && f.Op != domain.FilterOpNE {
				return "", fmt.Errorf("%w: operator %s not supported for CITY", domain.ErrInvalidInput, f.Op)
			}
		case domain.FilterFieldTopic:
			if f.Op != domain.FilterOpEQ {
				return "", fmt.Errorf("%w: operator %s not supported for TOPIC", domain.ErrInvalidInput, f.Op)
			}
		}
		if f.Op != domain.FilterOpEQ {
			if inequalityField != "" && inequalityField != f.Field {
				return "", fmt.Errorf("%w: inequality filter is allowed on only one field", domain.ErrInvalidInput)
			}
			inequalityField = f.Field
		}
	}
	return inequalityField, nil
}
