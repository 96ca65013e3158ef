package category

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength bounds the label column.
const MaxContentLength = 255

var (
	ErrEmptyContent   = errors.New("category content cannot be empty")
	ErrContentTooLong = errors.New("category content cannot exceed 255 characters")
)

// Category is a fixed reason-for-contact label.
type Category struct {
	ID        int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the label.
// PRE: Category struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(c.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Labels indexes categories by ID.
func Labels(cats []Category) map[int64]string {
	out := make(map[int64]string, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Content
	}
	return out
}
