package account

import (
	"context"

	domain "fashionablylate/internal/domain/account"
)

// Store persists User state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, value domain.User) (int64, error)
	Save(ctx context.Context, value domain.User) error
	Count(ctx context.Context) (int, error)
}
