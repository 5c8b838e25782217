package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"conferencecentral/internal/domain"
)

type mockSpeakerRepository struct {
	speakers map[string]*domain.Speaker
	err      error
}

func newMockSpeakerRepository() *mockSpeakerRepository {
	return &mockSpeakerRepository{speakers: make(map[string]*domain.Speaker)}
}

func (m *mockSpeakerRepository) Create(ctx context.Context, speaker *domain.Speaker) error {
	if m.err != nil {
		return m.err
	}
	if speaker.ID == "" {
		speaker.ID = "spk-" + speaker.Name
	}
	m.speakers[speaker.Name] = speaker
	return nil
}

func (m *mockSpeakerRepository) GetByName(ctx context.Context, name string) (*domain.Speaker, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.speakers[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func newSessionService(confRepo *mockConferenceRepository, sessionRepo *mockSessionRepository, speakerRepo *mockSpeakerRepository, dispatcher *mockDispatcher) domain.SessionService {
	return NewSessionService(confRepo, sessionRepo, speakerRepo, dispatcher, testLogger())
}

func TestCreateSession_Defaults(t *testing.T) {
	confRepo := newMockConferenceRepository()
	start := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	confRepo.conferences["c1"] = &domain.Conference{
		ID:          "c1",
		OrganizerID: "organizer",
		StartDate:   &start,
		Version:     1,
	}
	sessionRepo := newMockSessionRepository()
	speakerRepo := newMockSpeakerRepository()
	dispatcher := &mockDispatcher{}
	svc := newSessionService(confRepo, sessionRepo, speakerRepo, dispatcher)

	ident := domain.Identity{UserID: "organizer", Email: "org@example.com"}
	created, err := svc.Create(context.Background(), ident, "c1", &domain.Session{Name: "Intro"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.TypeOfSession != domain.DefaultSessionType {
		t.Errorf("expected default session type, got %q", created.TypeOfSession)
	}
	if len(created.Highlights) != 2 || created.Highlights[0] != "Default" {
		t.Errorf("expected default highlights, got %v", created.Highlights)
	}
	if created.Date == nil || !created.Date.Equal(start) {
		t.Errorf("expected date defaulted to conference start, got %v", created.Date)
	}
	speaker, ok := speakerRepo.speakers[domain.DefaultSessionSpeaker]
	if !ok {
		t.Fatal("expected default speaker to be created")
	}
	if created.SpeakerID != speaker.ID {
		t.Errorf("expected session linked to speaker %q, got %q", speaker.ID, created.SpeakerID)
	}
	if len(dispatcher.tasks) != 1 || dispatcher.tasks[0].Kind != domain.TaskSessionCreated {
		t.Errorf("expected one session_created task, got %v", dispatcher.tasks)
	}
}

func TestCreateSession_NotOrganizer(t *testing.T) {
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	svc := newSessionService(confRepo, newMockSessionRepository(), newMockSpeakerRepository(), &mockDispatcher{})

	_, err := svc.Create(context.Background(), domain.Identity{UserID: "someone-else"}, "c1", &domain.Session{Name: "Intro"}, "")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateSession_ConferenceNotFound(t *testing.T) {
	svc := newSessionService(newMockConferenceRepository(), newMockSessionRepository(), newMockSpeakerRepository(), &mockDispatcher{})

	_, err := svc.Create(context.Background(), domain.Identity{UserID: "u1"}, "missing", &domain.Session{Name: "Intro"}, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSession_NameRequired(t *testing.T) {
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	svc := newSessionService(confRepo, newMockSessionRepository(), newMockSpeakerRepository(), &mockDispatcher{})

	_, err := svc.Create(context.Background(), domain.Identity{UserID: "organizer"}, "c1", &domain.Session{}, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateSession_SharedSpeaker(t *testing.T) {
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	sessionRepo := newMockSessionRepository()
	speakerRepo := newMockSpeakerRepository()
	svc := newSessionService(confRepo, sessionRepo, speakerRepo, &mockDispatcher{})

	ident := domain.Identity{UserID: "organizer"}
	first, err := svc.Create(context.Background(), ident, "c1", &domain.Session{Name: "Talk A"}, "Rob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(context.Background(), ident, "c1", &domain.Session{Name: "Talk B"}, "Rob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.SpeakerID != second.SpeakerID {
		t.Errorf("expected both sessions to share one speaker record, got %q and %q", first.SpeakerID, second.SpeakerID)
	}
	if len(speakerRepo.speakers) != 1 {
		t.Errorf("expected one speaker record, got %d", len(speakerRepo.speakers))
	}
}

func TestListSessionsByConference_NotFound(t *testing.T) {
	svc := newSessionService(newMockConferenceRepository(), newMockSessionRepository(), newMockSpeakerRepository(), &mockDispatcher{})

	_, err := svc.ListByConference(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessionsByType(t *testing.T) {
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	sessionRepo := newMockSessionRepository()
	sessionRepo.sessions["s1"] = &domain.Session{ID: "s1", ConferenceID: "c1", TypeOfSession: "workshop"}
	sessionRepo.sessions["s2"] = &domain.Session{ID: "s2", ConferenceID: "c1", TypeOfSession: "lecture"}
	svc := newSessionService(confRepo, sessionRepo, newMockSpeakerRepository(), &mockDispatcher{})

	sessions, err := svc.ListByType(context.Background(), "c1", "workshop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Errorf("expected [s1], got %v", sessions)
	}
}

func TestListSessionsBySpeaker(t *testing.T) {
	speakerRepo := newMockSpeakerRepository()
	speakerRepo.speakers["Rob"] = &domain.Speaker{ID: "spk-Rob", Name: "Rob"}
	sessionRepo := newMockSessionRepository()
	sessionRepo.sessions["s1"] = &domain.Session{ID: "s1", ConferenceID: "c1", SpeakerID: "spk-Rob"}
	sessionRepo.sessions["s2"] = &domain.Session{ID: "s2", ConferenceID: "c2", SpeakerID: "spk-Rob"}
	sessionRepo.sessions["s3"] = &domain.Session{ID: "s3", ConferenceID: "c1", SpeakerID: "spk-Ann"}
	svc := newSessionService(newMockConferenceRepository(), sessionRepo, speakerRepo, &mockDispatcher{})

	sessions, err := svc.ListBySpeaker(context.Background(), "Rob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected sessions across conferences, got %d", len(sessions))
	}
}

func TestListSessionsBySpeaker_UnknownSpeaker(t *testing.T) {
	svc := newSessionService(newMockConferenceRepository(), newMockSessionRepository(), newMockSpeakerRepository(), &mockDispatcher{})

	_, err := svc.ListBySpeaker(context.Background(), "Nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
