package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// CookieName is the session cookie.
const CookieName = "fashionablylate_session"

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

type contextKey struct{}

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager creates a manager over store.
// PRE: store is non-nil
// POST: ttl <= 0 falls back to DefaultTTL
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Middleware loads the visitor's session (creating one when missing),
// exposes it through the request context and saves it after the handler returns.
// Flash data queued by the previous request is moved into Session.Flash.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.load(r)
		if err != nil {
			slog.Error("session_load_failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
			m.setCookie(w, s.ID)
		}
		s.takeFlash()

		ctx := context.WithValue(r.Context(), contextKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))

		if s.destroyed {
			return
		}
		if err := m.store.Put(context.WithoutCancel(ctx), *s, m.ttl); err != nil {
			slog.Error("session_save_failed", "error", err)
		}
	})
}

func (m *Manager) load(r *http.Request) (*Session, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		s, ok, err := m.store.Get(r.Context(), c.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			return &s, nil
		}
	}
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return &Session{ID: id}, nil
}

// FromContext returns the request's session.
// POST: Never nil; outside Middleware a detached empty session is returned
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return &Session{destroyed: true}
}

// Regenerate replaces the session ID while keeping its data, so an ID
// planted before login is useless afterwards.
// PRE: r passed through Middleware; nothing has been written to w
// POST: Old ID is deleted from the store; the cookie carries the new ID
func (m *Manager) Regenerate(w http.ResponseWriter, r *http.Request) error {
	s, ok := r.Context().Value(contextKey{}).(*Session)
	if !ok {
		return ErrNoSession
	}
	id, err := newID()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	if err := m.store.Delete(r.Context(), s.ID); err != nil {
		return err
	}
	s.ID = id
	m.setCookie(w, id)
	return nil
}

// Destroy deletes the session and expires its cookie.
// PRE: r passed through Middleware; nothing has been written to w
// POST: The session is not saved again by Middleware
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	s, ok := r.Context().Value(contextKey{}).(*Session)
	if !ok {
		return ErrNoSession
	}
	s.destroyed = true
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return m.store.Delete(r.Context(), s.ID)
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
