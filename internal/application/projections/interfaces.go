package projections

import (
	"context"

	"fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/domain/category"
)

// ContactStore interface for contact queries.
type ContactStore interface {
	GetByID(ctx context.Context, id int64) (contact.Entry, error)
	List(ctx context.Context, filter contact.ListFilter) ([]contact.Entry, error)
	Count(ctx context.Context, filter contact.ListFilter) (int, error)
}

// CategoryStore interface for category queries.
type CategoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
}
