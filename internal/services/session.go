package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

type sessionService struct {
	confRepo    domain.ConferenceRepository
	sessionRepo domain.SessionRepository
	speakerRepo domain.SpeakerRepository
	dispatcher  domain.TaskDispatcher
	logger      *slog.Logger
}

// NewSessionService creates a SessionService with the given repositories.
func NewSessionService(
	confRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	speakerRepo domain.SpeakerRepository,
	dispatcher domain.TaskDispatcher,
	logger *slog.Logger,
) domain.SessionService {
	return &sessionService{
		confRepo:    confRepo,
		sessionRepo: sessionRepo,
		speakerRepo: speakerRepo,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (s *sessionService) Create(ctx context.Context, ident domain.Identity, conferenceID string, session *domain.Session, speakerName string) (*domain.Session, error) {
	conf, err := s.confRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerID != ident.UserID {
		return nil, domain.ErrForbidden
	}
	if session.Name == "" {
		return nil, fmt.Errorf("%w: session name is required", domain.ErrInvalidInput)
	}

	// Apply creation defaults for fields the organizer left unset.
	if len(session.Highlights) == 0 {
		session.Highlights = append([]string{}, domain.DefaultHighlights...)
	}
	if session.TypeOfSession == "" {
		session.TypeOfSession = domain.DefaultSessionType
	}
	if speakerName == "" {
		speakerName = domain.DefaultSessionSpeaker
	}
	if session.Date == nil {
		session.Date = conf.StartDate
	}

	// Speakers are linked by stable id; the row is found or created by
	// name so two sessions naming the same speaker share one record.
	speaker, err := s.getOrCreateSpeaker(ctx, speakerName)
	if err != nil {
		return nil, err
	}
	session.SpeakerID = speaker.ID

	session.ConferenceID = conferenceID
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.dispatcher.Enqueue(domain.ConfirmationTask{
		Kind:  domain.TaskSessionCreated,
		Email: ident.Email,
		Info:  fmt.Sprintf("%s (%s, speaker %s)", session.Name, session.TypeOfSession, speakerName),
	})
	return session, nil
}

func (s *sessionService) ListByConference(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	if _, err := s.confRepo.GetByID(ctx, conferenceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	sessions, err := s.sessionRepo.ListByConferenceID(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}

func (s *sessionService) ListByType(ctx context.Context, conferenceID, typeOfSession string) ([]*domain.Session, error) {
	if _, err := s.confRepo.GetByID(ctx, conferenceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	sessions, err := s.sessionRepo.ListByConferenceIDAndType(ctx, conferenceID, typeOfSession)
	if err != nil {
		return nil, fmt.Errorf("list sessions by type: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}

func (s *sessionService) ListBySpeaker(ctx context.Context, speakerName string) ([]*domain.Session, error) {
	speaker, err := s.speakerRepo.GetByName(ctx, speakerName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	sessions, err := s.sessionRepo.ListBySpeakerID(ctx, speaker.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}

func (s *sessionService) ListAll(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := s.sessionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}

func (s *sessionService) getOrCreateSpeaker(ctx context.Context, name string) (*domain.Speaker, error) {
	speaker, err := s.speakerRepo.GetByName(ctx, name)
	if err == nil {
		return speaker, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	speaker = &domain.Speaker{Name: name, CreatedAt: time.Now()}
	if err := s.speakerRepo.Create(ctx, speaker); err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return speaker, nil
}
