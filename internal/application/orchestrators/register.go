package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fashionablylate/internal/adapters/storage"
	"fashionablylate/internal/domain/account"
)

// UserStoreForRegister defines the store interface needed by Register.
type UserStoreForRegister interface {
	Create(ctx context.Context, u account.User) (int64, error)
}

// RegisterInput carries input for the register orchestrator.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	UserStore UserStoreForRegister
	Now       func() time.Time
}

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrRegistrationFailed = errors.New("registration failed")
)

// ExecuteRegister creates a back-office user.
// Uniqueness is left to the users.email constraint, so concurrent duplicates
// still produce exactly one row.
// PRE: input passed form validation
// POST: Returns the new user on success; ErrEmailTaken on a unique violation; ErrRegistrationFailed otherwise
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (LoginResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	u := account.User{
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if err := u.SetPassword(input.Password); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	id, err := deps.UserStore.Create(ctx, u)
	if errors.Is(err, storage.ErrDuplicate) {
		slog.Info("auth_event", "event", "register_failed", "email", input.Email, "reason", "duplicate")
		return LoginResult{}, ErrEmailTaken
	}
	if err != nil {
		slog.Error("auth_event", "event", "register_failed", "email", input.Email, "reason", "storage", "error", err)
		return LoginResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	slog.Info("auth_event", "event", "user_registered", "email", input.Email, "user_id", id)
	return LoginResult{UserID: id, Email: u.Email, Name: u.Name}, nil
}
