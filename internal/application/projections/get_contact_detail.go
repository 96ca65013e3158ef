package projections

import (
	"context"
	"fmt"

	"fashionablylate/internal/adapters/storage/contact"
	domainContact "fashionablylate/internal/domain/contact"
)

// GetContactDetailResult carries one contact for the detail view.
type GetContactDetailResult struct {
	Contact       contact.Entry
	GenderLabel   string
	CategoryLabel string
}

// GetContactDetailDeps holds dependencies for GetContactDetail.
type GetContactDetailDeps struct {
	ContactStore ContactStore
}

// QueryGetContactDetail retrieves one contact with display labels resolved.
// PRE: id > 0
// POST: CategoryLabel falls back to the unselected label when the category row is missing
func QueryGetContactDetail(ctx context.Context, id int64, deps GetContactDetailDeps) (GetContactDetailResult, error) {
	entry, err := deps.ContactStore.GetByID(ctx, id)
	if err != nil {
		return GetContactDetailResult{}, fmt.Errorf("get contact: %w", err)
	}
	return GetContactDetailResult{
		Contact:       entry,
		GenderLabel:   entry.Gender.Label(),
		CategoryLabel: CategoryLabel(entry),
	}, nil
}

// CategoryLabel returns the joined category text or the unselected label.
func CategoryLabel(e contact.Entry) string {
	if e.CategoryContent == "" {
		return domainContact.UnselectedLabel
	}
	return e.CategoryContent
}
