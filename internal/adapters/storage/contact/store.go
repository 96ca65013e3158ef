package contact

import (
	"context"
	"time"

	domain "fashionablylate/internal/domain/contact"
)

// Store persists Contact state.
type Store interface {
	Create(ctx context.Context, value domain.Contact) (int64, error)
	GetByID(ctx context.Context, id int64) (Entry, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// Entry is a contact joined with its category label.
// CategoryContent is empty when the category row is missing.
type Entry struct {
	domain.Contact
	CategoryContent string
}

// ListFilter carries filtering parameters for List and Count.
// Zero values disable a predicate; all enabled predicates are AND-ed.
type ListFilter struct {
	Search      string        // partial match on first_name, last_name or email
	Gender      domain.Gender // exact match when non-zero
	CategoryID  int64         // exact match when non-zero
	CreatedFrom time.Time     // inclusive lower bound when non-zero
	CreatedTo   time.Time     // exclusive upper bound when non-zero
	Limit       int           // 0 means no limit
	Offset      int
}
