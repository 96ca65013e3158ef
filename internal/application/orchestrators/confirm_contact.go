package orchestrators

import (
	"context"
	"fmt"

	"fashionablylate/internal/application/validation"
	"fashionablylate/internal/domain/category"
	"fashionablylate/internal/domain/contact"
)

// CategoryStoreForContact defines the store interface needed by the contact workflow.
type CategoryStoreForContact interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (category.Category, error)
}

// ConfirmContactDeps holds dependencies for ConfirmContact.
type ConfirmContactDeps struct {
	Validator     *validation.Validator
	CategoryStore CategoryStoreForContact
}

// ConfirmContactResult carries the outcome of a confirm step.
// Draft.Submission is set only when Errors is empty.
type ConfirmContactResult struct {
	Draft         contact.Draft
	Errors        validation.Errors
	CategoryLabel string
}

// Valid reports whether the input passed and a confirmed submission is ready.
func (r ConfirmContactResult) Valid() bool {
	return !r.Errors.Any() && r.Draft.Confirmed()
}

// ExecuteConfirmContact validates raw form input and normalizes it into a Submission.
// The three phone parts are joined here and nowhere else.
// PRE: input fields are trimmed
// POST: Draft.Input always equals input; Draft.Submission is set only when validation passed
func ExecuteConfirmContact(ctx context.Context, input contact.Input, deps ConfirmContactDeps) (ConfirmContactResult, error) {
	result := ConfirmContactResult{Draft: contact.Draft{Input: input}}

	errs, err := deps.Validator.Contact(ctx, input, deps.CategoryStore)
	if err != nil {
		return result, err
	}
	if errs.Any() {
		result.Errors = errs
		return result, nil
	}

	sub, err := input.Normalize()
	if err != nil {
		return result, fmt.Errorf("normalize contact: %w", err)
	}
	cat, err := deps.CategoryStore.GetByID(ctx, sub.CategoryID)
	if err != nil {
		return result, fmt.Errorf("load category %d: %w", sub.CategoryID, err)
	}

	result.Draft.Submission = &sub
	result.CategoryLabel = cat.Content
	return result, nil
}
