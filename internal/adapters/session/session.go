// Package session holds per-visitor server-side state: the signed-in user,
// one-shot flash data and the in-progress contact draft.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"fashionablylate/internal/domain/contact"
)

// Flash is data that survives exactly one subsequent request.
type Flash struct {
	Success string            `json:"success,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Old     map[string]string `json:"old,omitempty"`
	// RestoreDraft asks the contact form to prefill from the draft.
	RestoreDraft bool `json:"restore_draft,omitempty"`
}

// Empty reports whether nothing was flashed.
func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == "" && len(f.Errors) == 0 && len(f.Old) == 0 && !f.RestoreDraft
}

// Session is one visitor's server-held state.
type Session struct {
	ID        string    `json:"-"`
	UserID    int64     `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Pending is flashed for the next request.
	Pending Flash `json:"pending"`
	// Draft is the contact submission in progress.
	Draft *contact.Draft `json:"draft,omitempty"`
	// Intended is where to go after login.
	Intended string `json:"intended,omitempty"`

	// Flash is what the previous request flashed; readable for this request only.
	Flash Flash `json:"-"`

	destroyed bool
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// SignIn records the user on the session.
// PRE: the session ID was regenerated for this login
func (s *Session) SignIn(userID int64, email, name string) {
	s.UserID = userID
	s.Email = email
	s.Name = name
}

// FlashSuccess queues a success message for the next request.
func (s *Session) FlashSuccess(msg string) {
	s.Pending.Success = msg
}

// FlashError queues an error message for the next request.
func (s *Session) FlashError(msg string) {
	s.Pending.Error = msg
}

// FlashErrors queues field errors for the next request.
func (s *Session) FlashErrors(errs map[string]string) {
	s.Pending.Errors = errs
}

// FlashOld queues previously entered values for the next request.
func (s *Session) FlashOld(old map[string]string) {
	s.Pending.Old = old
}

// RestoreDraftNext asks the next contact form render to prefill from Draft.
func (s *Session) RestoreDraftNext() {
	s.Pending.RestoreDraft = true
}

// takeFlash moves the pending flash into Flash so it is visible once.
func (s *Session) takeFlash() {
	s.Flash = s.Pending
	s.Pending = Flash{}
}

// Store persists sessions by ID.
type Store interface {
	// Get returns the session, or ok=false when it is missing or expired.
	Get(ctx context.Context, id string) (Session, bool, error)
	// Put saves the session and resets its expiry to ttl.
	Put(ctx context.Context, s Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

var ErrNoSession = errors.New("session: no session in request context")

// newID returns a random 256-bit hex identifier.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
