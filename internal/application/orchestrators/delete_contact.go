package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"fashionablylate/internal/adapters/storage"
)

// ContactStoreForDelete defines the store interface needed by DeleteContact.
type ContactStoreForDelete interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteContactDeps holds dependencies for DeleteContact.
type DeleteContactDeps struct {
	ContactStore ContactStoreForDelete
}

// DeleteOutcome is the closed set of results of an admin delete.
type DeleteOutcome int

const (
	DeleteOutcomeDeleted DeleteOutcome = iota
	DeleteOutcomeNotFound
	DeleteOutcomeConstraint
	DeleteOutcomeFailed
)

// MsgGenericFailure prefixes every failed delete message.
const MsgGenericFailure = "エラーが発生しました。"

var deleteMessages = map[DeleteOutcome]string{
	DeleteOutcomeDeleted:    "お問い合わせを削除しました。",
	DeleteOutcomeNotFound:   MsgGenericFailure + "対象のお問い合わせが見つかりません。",
	DeleteOutcomeConstraint: MsgGenericFailure + "関連するデータがあるため削除できません。",
	DeleteOutcomeFailed:     MsgGenericFailure + "しばらく時間をおいて再度お試しください。",
}

// Message returns the flash text for the outcome.
func (o DeleteOutcome) Message() string {
	if m, ok := deleteMessages[o]; ok {
		return m
	}
	return deleteMessages[DeleteOutcomeFailed]
}

// OK reports whether the row was removed.
func (o DeleteOutcome) OK() bool {
	return o == DeleteOutcomeDeleted
}

// String returns the metric and log label for the outcome.
func (o DeleteOutcome) String() string {
	switch o {
	case DeleteOutcomeDeleted:
		return "deleted"
	case DeleteOutcomeNotFound:
		return "not_found"
	case DeleteOutcomeConstraint:
		return "constraint"
	default:
		return "failed"
	}
}

// ExecuteDeleteContact hard-deletes one contact and classifies the result.
// PRE: id comes from the admin route
// POST: Returns exactly one DeleteOutcome; storage errors are logged, never returned
func ExecuteDeleteContact(ctx context.Context, id int64, deps DeleteContactDeps) DeleteOutcome {
	err := deps.ContactStore.Delete(ctx, id)
	outcome := classifyDelete(err)
	if outcome.OK() {
		slog.Info("contact_event", "event", "deleted", "contact_id", id)
	} else {
		slog.Warn("contact_delete_failed", "contact_id", id, "outcome", outcome.String(), "error", err)
	}
	return outcome
}

func classifyDelete(err error) DeleteOutcome {
	switch {
	case err == nil:
		return DeleteOutcomeDeleted
	case errors.Is(err, storage.ErrNotFound):
		return DeleteOutcomeNotFound
	case errors.Is(err, storage.ErrConstraint):
		return DeleteOutcomeConstraint
	default:
		return DeleteOutcomeFailed
	}
}
