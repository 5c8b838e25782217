package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"conferencecentral/internal/domain"
)

type mockVerifier struct {
	ident domain.Identity
	err   error
}

func (m *mockVerifier) Verify(token string) (domain.Identity, error) {
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	return m.ident, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRequireAuth_SetsIdentity(t *testing.T) {
	verifier := &mockVerifier{ident: domain.Identity{UserID: "u1", Email: "u1@example.com"}}
	auth := RequireAuth(verifier, testLogger())

	var got domain.Identity
	var ok bool
	handler := auth(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !ok || got.UserID != "u1" {
		t.Errorf("expected identity in context, got %+v (%v)", got, ok)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	auth := RequireAuth(&mockVerifier{}, testLogger())
	called := false
	handler := auth(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if called {
		t.Error("expected next handler not to be called")
	}
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	auth := RequireAuth(&mockVerifier{}, testLogger())
	handler := auth(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	auth := RequireAuth(&mockVerifier{err: errors.New("bad token")}, testLogger())
	handler := auth(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
