package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"conferencecentral/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockTransactor serializes transaction bodies with a mutex so fake-repo
// read-modify-write sequences behave atomically under concurrency, and
// restores repository state when the body fails, mirroring a rollback.
type mockTransactor struct {
	mu          sync.Mutex
	profileRepo *mockProfileRepository
	confRepo    *mockConferenceRepository
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profSnap := m.profileRepo.snapshot()
	confSnap := m.confRepo.snapshot()
	err := fn(ctx)
	if err != nil {
		m.profileRepo.restore(profSnap)
		m.confRepo.restore(confSnap)
	}
	return err
}

type mockProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile

	// updateErrs is consumed one error per Update call, simulating
	// contention that clears after a retry.
	updateErrs []error
	createErr  error
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[string]*domain.Profile)}
}

func copyProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.ConferenceKeysToAttend = append([]string(nil), p.ConferenceKeysToAttend...)
	cp.SessionWishlist = append([]string(nil), p.SessionWishlist...)
	return &cp
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyProfile(p), nil
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.Version = 1
	m.profiles[profile.ID] = copyProfile(profile)
	return nil
}

func (m *mockProfileRepository) snapshot() map[string]*domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]*domain.Profile, len(m.profiles))
	for id, p := range m.profiles {
		snap[id] = copyProfile(p)
	}
	return snap
}

func (m *mockProfileRepository) restore(snap map[string]*domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = snap
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.updateErrs) > 0 {
		err := m.updateErrs[0]
		m.updateErrs = m.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	stored, ok := m.profiles[profile.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != profile.Version {
		return domain.ErrContention
	}
	profile.Version++
	m.profiles[profile.ID] = copyProfile(profile)
	return nil
}

type mockConferenceRepository struct {
	mu          sync.Mutex
	conferences map[string]*domain.Conference

	updateSeatsErrs []error
	nearlySoldOut   []*domain.Conference
	queried         []*domain.Conference
	listErr         error
}

func newMockConferenceRepository() *mockConferenceRepository {
	return &mockConferenceRepository{conferences: make(map[string]*domain.Conference)}
}

func copyConference(c *domain.Conference) *domain.Conference {
	cp := *c
	cp.Topics = append([]string(nil), c.Topics...)
	return &cp
}

func (m *mockConferenceRepository) snapshot() map[string]*domain.Conference {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]*domain.Conference, len(m.conferences))
	for id, c := range m.conferences {
		snap[id] = copyConference(c)
	}
	return snap
}

func (m *mockConferenceRepository) restore(snap map[string]*domain.Conference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conferences = snap
}

func (m *mockConferenceRepository) Create(ctx context.Context, conf *domain.Conference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conf.ID == "" {
		conf.ID = "conf-" + conf.Name
	}
	conf.Version = 1
	m.conferences[conf.ID] = copyConference(conf)
	return nil
}

func (m *mockConferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conferences[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyConference(c), nil
}

func (m *mockConferenceRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Conference
	for _, c := range m.conferences {
		if c.OrganizerID == organizerID {
			out = append(out, copyConference(c))
		}
	}
	return out, nil
}

func (m *mockConferenceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Conference
	for _, id := range ids {
		if c, ok := m.conferences[id]; ok {
			out = append(out, copyConference(c))
		}
	}
	return out, nil
}

func (m *mockConferenceRepository) Query(ctx context.Context, filters []domain.ConferenceFilter, orderField string) ([]*domain.Conference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.queried, nil
}

func (m *mockConferenceRepository) ListNearlySoldOut(ctx context.Context, threshold int) ([]*domain.Conference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.nearlySoldOut, nil
}

func (m *mockConferenceRepository) UpdateSeats(ctx context.Context, id string, seatsAvailable, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.updateSeatsErrs) > 0 {
		err := m.updateSeatsErrs[0]
		m.updateSeatsErrs = m.updateSeatsErrs[1:]
		if err != nil {
			return err
		}
	}
	c, ok := m.conferences[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Version != version {
		return domain.ErrContention
	}
	c.SeatsAvailable = seatsAvailable
	c.Version++
	return nil
}

type mockSessionRepository struct {
	sessions map[string]*domain.Session
	err      error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.err != nil {
		return m.err
	}
	if session.ID == "" {
		session.ID = "sess-" + session.Name
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.ConferenceID == conferenceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionRepository) ListByConferenceIDAndType(ctx context.Context, conferenceID, typeOfSession string) ([]*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.ConferenceID == conferenceID && s.TypeOfSession == typeOfSession {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionRepository) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.SpeakerID == speakerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionRepository) ListAll(ctx context.Context) ([]*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Session
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func seedConference(confRepo *mockConferenceRepository, id string, seats, max int) {
	confRepo.conferences[id] = &domain.Conference{
		ID:             id,
		OrganizerID:    "organizer",
		Name:           "GopherCon",
		MaxAttendees:   max,
		SeatsAvailable: seats,
		Version:        1,
	}
}

func seedProfile(profileRepo *mockProfileRepository, id string) *domain.Profile {
	p := domain.NewProfile(id, "Test User", id+"@example.com", time.Now())
	p.Version = 1
	profileRepo.profiles[id] = p
	return p
}

func newRegistrationService(profileRepo *mockProfileRepository, confRepo *mockConferenceRepository, sessionRepo *mockSessionRepository) domain.RegistrationService {
	tx := &mockTransactor{profileRepo: profileRepo, confRepo: confRepo}
	return NewRegistrationService(tx, profileRepo, confRepo, sessionRepo, testLogger())
}

func TestRegister_Success(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	ident := domain.Identity{UserID: "u1", Email: "u1@example.com", DisplayName: "User One"}
	ok, err := svc.Register(context.Background(), ident, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true")
	}

	prof := profileRepo.profiles["u1"]
	if prof == nil {
		t.Fatal("expected profile to be created lazily")
	}
	if !prof.IsAttending("c1") {
		t.Error("expected conference key in attending set")
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 9 {
		t.Errorf("expected 9 seats available, got %d", got)
	}
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	prof := seedProfile(profileRepo, "u1")
	prof.ConferenceKeysToAttend = []string{"c1"}
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	_, err := svc.Register(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("expected ErrAlreadyRegistered to wrap ErrConflict")
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 10 {
		t.Errorf("expected seats untouched, got %d", got)
	}
}

func TestRegister_NoSeats(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 0, 10)
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	_, err := svc.Register(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
}

func TestRegister_ConferenceNotFound(t *testing.T) {
	svc := newRegistrationService(newMockProfileRepository(), newMockConferenceRepository(), newMockSessionRepository())

	_, err := svc.Register(context.Background(), domain.Identity{UserID: "u1"}, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegister_RetriesOnContention(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	seedProfile(profileRepo, "u1")
	// First attempt loses the race; the retry succeeds.
	confRepo.updateSeatsErrs = []error{domain.ErrContention}
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	ok, err := svc.Register(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true after retry")
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 9 {
		t.Errorf("expected 9 seats available, got %d", got)
	}
}

func TestRegister_ContentionExhausted(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	seedProfile(profileRepo, "u1")
	confRepo.updateSeatsErrs = []error{
		domain.ErrContention, domain.ErrContention,
		domain.ErrContention, domain.ErrContention,
	}
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	_, err := svc.Register(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if !errors.Is(err, domain.ErrContention) {
		t.Fatalf("expected ErrContention after retry budget, got %v", err)
	}
}

func TestRegister_ConcurrentSeatLimit(t *testing.T) {
	const seats = 5
	const registrants = 20

	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", seats, seats)
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	var wg sync.WaitGroup
	results := make([]error, registrants)
	for i := 0; i < registrants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident := domain.Identity{UserID: "user-" + string(rune('a'+i))}
			_, results[i] = svc.Register(context.Background(), ident, "c1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrNoSeatsAvailable) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != seats {
		t.Errorf("expected exactly %d successful registrations, got %d", seats, succeeded)
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 0 {
		t.Errorf("expected 0 seats available, got %d", got)
	}
}

func TestUnregister_ReturnsSeat(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 9, 10)
	prof := seedProfile(profileRepo, "u1")
	prof.ConferenceKeysToAttend = []string{"c1", "c2"}
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	ok, err := svc.Unregister(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true")
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 10 {
		t.Errorf("expected 10 seats available, got %d", got)
	}
	stored := profileRepo.profiles["u1"]
	if stored.IsAttending("c1") {
		t.Error("expected conference key removed from attending set")
	}
	if !stored.IsAttending("c2") {
		t.Error("expected other conference keys preserved")
	}
}

func TestUnregister_NotRegistered(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	seedProfile(profileRepo, "u1")
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	ok, err := svc.Unregister(context.Background(), domain.Identity{UserID: "u1"}, "c1")
	if err != nil {
		t.Fatalf("expected no error for idempotent unregister, got %v", err)
	}
	if ok {
		t.Error("expected result false when not registered")
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 10 {
		t.Errorf("expected seats untouched, got %d", got)
	}
}

func TestUnregister_SeatsNeverExceedCapacity(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	// Inconsistent input state: seats already at capacity.
	seedConference(confRepo, "c1", 10, 10)
	prof := seedProfile(profileRepo, "u1")
	prof.ConferenceKeysToAttend = []string{"c1"}
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	if _, err := svc.Unregister(context.Background(), domain.Identity{UserID: "u1"}, "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 10 {
		t.Errorf("expected seats clamped to capacity, got %d", got)
	}
}

func TestRegisterUnregister_RoundTrip(t *testing.T) {
	profileRepo := newMockProfileRepository()
	confRepo := newMockConferenceRepository()
	seedConference(confRepo, "c1", 10, 10)
	svc := newRegistrationService(profileRepo, confRepo, newMockSessionRepository())

	ident := domain.Identity{UserID: "u1"}
	if _, err := svc.Register(context.Background(), ident, "c1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Unregister(context.Background(), ident, "c1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if got := confRepo.conferences["c1"].SeatsAvailable; got != 10 {
		t.Errorf("expected seats restored to 10, got %d", got)
	}
	if profileRepo.profiles["u1"].IsAttending("c1") {
		t.Error("expected attending set empty after round trip")
	}
}

func TestAddToWishlist_Success(t *testing.T) {
	profileRepo := newMockProfileRepository()
	sessionRepo := newMockSessionRepository()
	sessionRepo.sessions["s1"] = &domain.Session{ID: "s1", Name: "Intro"}
	svc := newRegistrationService(profileRepo, newMockConferenceRepository(), sessionRepo)

	ok, err := svc.AddToWishlist(context.Background(), domain.Identity{UserID: "u1"}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true")
	}
	if !profileRepo.profiles["u1"].HasWishlisted("s1") {
		t.Error("expected session in wishlist")
	}
}

func TestAddToWishlist_SessionNotFound(t *testing.T) {
	svc := newRegistrationService(newMockProfileRepository(), newMockConferenceRepository(), newMockSessionRepository())

	_, err := svc.AddToWishlist(context.Background(), domain.Identity{UserID: "u1"}, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddToWishlist_Duplicate(t *testing.T) {
	profileRepo := newMockProfileRepository()
	sessionRepo := newMockSessionRepository()
	sessionRepo.sessions["s1"] = &domain.Session{ID: "s1"}
	prof := seedProfile(profileRepo, "u1")
	prof.SessionWishlist = []string{"s1"}
	svc := newRegistrationService(profileRepo, newMockConferenceRepository(), sessionRepo)

	_, err := svc.AddToWishlist(context.Background(), domain.Identity{UserID: "u1"}, "s1")
	if !errors.Is(err, domain.ErrAlreadyInWishlist) {
		t.Fatalf("expected ErrAlreadyInWishlist, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("expected ErrAlreadyInWishlist to wrap ErrConflict")
	}
}

func TestAddToWishlist_RetriesOnContention(t *testing.T) {
	profileRepo := newMockProfileRepository()
	sessionRepo := newMockSessionRepository()
	sessionRepo.sessions["s1"] = &domain.Session{ID: "s1"}
	seedProfile(profileRepo, "u1")
	profileRepo.updateErrs = []error{domain.ErrContention}
	svc := newRegistrationService(profileRepo, newMockConferenceRepository(), sessionRepo)

	ok, err := svc.AddToWishlist(context.Background(), domain.Identity{UserID: "u1"}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true after retry")
	}
}

func TestRemoveFromWishlist_Success(t *testing.T) {
	profileRepo := newMockProfileRepository()
	prof := seedProfile(profileRepo, "u1")
	prof.SessionWishlist = []string{"s1", "s2"}
	svc := newRegistrationService(profileRepo, newMockConferenceRepository(), newMockSessionRepository())

	ok, err := svc.RemoveFromWishlist(context.Background(), domain.Identity{UserID: "u1"}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected result true")
	}
	stored := profileRepo.profiles["u1"]
	if stored.HasWishlisted("s1") {
		t.Error("expected session removed from wishlist")
	}
	if !stored.HasWishlisted("s2") {
		t.Error("expected other wishlist entries preserved")
	}
}

func TestRemoveFromWishlist_NotWishlisted(t *testing.T) {
	profileRepo := newMockProfileRepository()
	seedProfile(profileRepo, "u1")
	svc := newRegistrationService(profileRepo, newMockConferenceRepository(), newMockSessionRepository())

	ok, err := svc.RemoveFromWishlist(context.Background(), domain.Identity{UserID: "u1"}, "s1")
	if err != nil {
		t.Fatalf("expected no error for idempotent removal, got %v", err)
	}
	if ok {
		t.Error("expected result false when session not wishlisted")
	}
}
