package category_test

import (
	"strings"
	"testing"

	"fashionablylate/internal/domain/category"
)

// TestCategory_Validate tests label validation.
func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", "商品のお届けについて", nil},
		{"empty", "", category.ErrEmptyContent},
		{"blank", "   ", category.ErrEmptyContent},
		{"255 runes", strings.Repeat("あ", 255), nil},
		{"256 runes", strings.Repeat("あ", 256), category.ErrContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := category.Category{Content: tt.content}
			if err := c.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLabels tests ID indexing.
func TestLabels(t *testing.T) {
	labels := category.Labels([]category.Category{{ID: 1, Content: "a"}, {ID: 5, Content: "b"}})
	if labels[1] != "a" || labels[5] != "b" || len(labels) != 2 {
		t.Errorf("Labels = %v", labels)
	}
}
