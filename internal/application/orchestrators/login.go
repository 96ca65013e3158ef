package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fashionablylate/internal/domain/account"
)

// UserStoreForLogin defines the store interface needed by Login.
type UserStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
	Save(ctx context.Context, u account.User) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	UserID int64
	Email  string
	Name   string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	UserStore UserStoreForLogin
	Now       func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

var (
	dummyOnce sync.Once
	dummyUser account.User
)

// burnPasswordCheck spends one bcrypt comparison so unknown emails cost
// the same as wrong passwords.
func burnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		_ = dummyUser.SetPassword("fashionablylate-dummy-password")
	})
	_ = dummyUser.CheckPassword(password)
}

// ExecuteLogin validates credentials and returns user info for session creation.
// PRE: Email and password passed form validation
// POST: Returns user info on success, records failed login on failure
// INVARIANT: A locked user cannot log in even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	u, err := deps.UserStore.GetByEmail(ctx, input.Email)
	if err != nil {
		burnPasswordCheck(input.Password)
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := u.CheckPassword(input.Password); err != nil {
		u.RecordFailedLogin(now)
		u.UpdatedAt = now
		if err := deps.UserStore.Save(ctx, u); err != nil {
			slog.Error("auth_event", "event", "login_record_failed", "email", input.Email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", u.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.FailedLogins > 0 || !u.LockedUntil.IsZero() {
		u.ResetFailedLogins()
		u.UpdatedAt = now
		if err := deps.UserStore.Save(ctx, u); err != nil {
			slog.Error("auth_event", "event", "login_record_failed", "email", input.Email, "error", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", input.Email, "user_id", u.ID)
	return LoginResult{UserID: u.ID, Email: u.Email, Name: u.Name}, nil
}
