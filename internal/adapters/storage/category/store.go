package category

import (
	"context"

	domain "fashionablylate/internal/domain/category"
)

// Store persists Category state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, value domain.Category) (int64, error)
	Count(ctx context.Context) (int, error)
}
