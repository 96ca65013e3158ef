package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fashionablylate/internal/adapters/email"
	"fashionablylate/internal/application/validation"
	"fashionablylate/internal/domain/contact"
)

// ContactStoreForStore defines the store interface needed by StoreContact.
type ContactStoreForStore interface {
	Create(ctx context.Context, c contact.Contact) (int64, error)
}

// StoreContactDeps holds dependencies for StoreContact.
// Sender and NotifyTo are optional; both must be set for a staff notification to go out.
type StoreContactDeps struct {
	Validator     *validation.Validator
	CategoryStore CategoryStoreForContact
	ContactStore  ContactStoreForStore
	Sender        email.Sender
	NotifyTo      []string
	Location      *time.Location
	Now           func() time.Time
}

// StoreContactResult carries the stored row.
type StoreContactResult struct {
	ContactID int64
	Errors    validation.Errors
}

var (
	ErrNoConfirmedDraft = errors.New("no confirmed contact draft in session")
	ErrDraftInvalid     = errors.New("confirmed contact draft no longer validates")
)

// ExecuteStoreContact persists the confirmed submission held in the session draft.
// The submission is validated again before insert; the joined phone is split back only for validation.
// PRE: draft came from the visitor's own session
// POST: Exactly one contact row is inserted on success
// INVARIANT: Notification failures never fail the store
func ExecuteStoreContact(ctx context.Context, draft *contact.Draft, deps StoreContactDeps) (StoreContactResult, error) {
	if !draft.Confirmed() {
		return StoreContactResult{}, ErrNoConfirmedDraft
	}
	sub := *draft.Submission

	errs, err := deps.Validator.Contact(ctx, sub.Input(), deps.CategoryStore)
	if err != nil {
		return StoreContactResult{}, err
	}
	if errs.Any() {
		slog.Warn("contact_event", "event", "store_rejected", "fields", len(errs))
		return StoreContactResult{Errors: errs}, ErrDraftInvalid
	}

	now := deps.now()
	id, err := deps.ContactStore.Create(ctx, sub.Contact(now))
	if err != nil {
		return StoreContactResult{}, fmt.Errorf("create contact: %w", err)
	}
	slog.Info("contact_event", "event", "stored", "contact_id", id, "category_id", sub.CategoryID)

	if deps.Sender != nil && len(deps.NotifyTo) > 0 {
		notifyStaff(ctx, id, sub, now, deps)
	}
	return StoreContactResult{ContactID: id}, nil
}

func (d StoreContactDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func notifyStaff(ctx context.Context, id int64, sub contact.Submission, now time.Time, deps StoreContactDeps) {
	label := ""
	if cat, err := deps.CategoryStore.GetByID(ctx, sub.CategoryID); err == nil {
		label = cat.Content
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	msg, err := ContactNotice(id, sub, label, now.In(loc))
	if err != nil {
		slog.Error("contact_notify_failed", "contact_id", id, "error", err)
		return
	}
	msg.To = deps.NotifyTo
	if _, err := deps.Sender.Send(ctx, msg); err != nil {
		slog.Error("contact_notify_failed", "contact_id", id, "error", err)
		return
	}
	slog.Info("contact_event", "event", "staff_notified", "contact_id", id, "recipients", len(deps.NotifyTo))
}
