package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/session"
	"fashionablylate/internal/application/orchestrators"
	"fashionablylate/internal/application/validation"
	"fashionablylate/internal/domain/category"
	"fashionablylate/internal/domain/contact"
)

// Contact flow messages.
const (
	MsgContactExpired = "セッションが切れました。もう一度入力してください。"
	MsgContactFailed  = "エラーが発生しました。しばらく時間をおいて再度お試しください。"
)

const pathThanks = "/contact/thanks"

// contactFormView feeds index.html.
type contactFormView struct {
	Input      contact.Input
	Errors     validation.Errors
	Categories []category.Category
}

// confirmView feeds confirm.html.
type confirmView struct {
	Submission    contact.Submission
	GenderLabel   string
	CategoryLabel string
}

// contactInput reads the raw contact form, trimming every value.
func contactInput(r *http.Request) contact.Input {
	v := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return contact.Input{
		LastName:   v("last_name"),
		FirstName:  v("first_name"),
		Gender:     v("gender"),
		Email:      v("email"),
		Phone1:     v("phone1"),
		Phone2:     v("phone2"),
		Phone3:     v("phone3"),
		Address:    v("address"),
		Building:   v("building"),
		CategoryID: v("category_id"),
		Detail:     v("detail"),
	}
}

func (s *server) renderContactForm(w http.ResponseWriter, r *http.Request, status int, in contact.Input, errs validation.Errors) {
	cats, err := s.Stores.CategoryStore.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	s.render(w, r, "index.html", status, "お問い合わせ", contactFormView{Input: in, Errors: errs, Categories: cats})
}

// handleContactIndex renders the input form.
// The draft is restored only right after an edit or a failed store; otherwise a new cycle starts.
func (s *server) handleContactIndex(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	var in contact.Input
	if sess.Flash.RestoreDraft && sess.Draft != nil {
		in = sess.Draft.Input
	} else {
		sess.Draft = nil
	}
	s.renderContactForm(w, r, http.StatusOK, in, validation.Errors(sess.Flash.Errors))
}

// handleContactConfirm validates the form and shows the review page.
func (s *server) handleContactConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	in := contactInput(r)

	result, err := orchestrators.ExecuteConfirmContact(ctx, in, orchestrators.ConfirmContactDeps{
		Validator:     s.Validator,
		CategoryStore: s.Stores.CategoryStore,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	draft := result.Draft
	sess.Draft = &draft

	if !result.Valid() {
		s.Metrics.ContactEvent("confirm_rejected")
		s.renderContactForm(w, r, http.StatusUnprocessableEntity, in, result.Errors)
		return
	}
	sub := *draft.Submission
	s.render(w, r, "confirm.html", http.StatusOK, "確認", confirmView{
		Submission:    sub,
		GenderLabel:   sub.Gender.Label(),
		CategoryLabel: result.CategoryLabel,
	})
}

// handleContactStore persists the confirmed draft.
func (s *server) handleContactStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	result, err := orchestrators.ExecuteStoreContact(ctx, sess.Draft, orchestrators.StoreContactDeps{
		Validator:     s.Validator,
		CategoryStore: s.Stores.CategoryStore,
		ContactStore:  s.Stores.ContactStore,
		Sender:        s.Sender,
		NotifyTo:      s.NotifyTo,
		Location:      s.location(),
		Now:           s.Now,
	})
	switch {
	case errors.Is(err, orchestrators.ErrNoConfirmedDraft):
		sess.FlashError(MsgContactExpired)
		if sess.Draft != nil {
			sess.RestoreDraftNext()
		}
		redirect(w, r, "/")
		return
	case errors.Is(err, orchestrators.ErrDraftInvalid):
		s.Metrics.ContactEvent("store_rejected")
		sess.Draft.Submission = nil
		sess.RestoreDraftNext()
		sess.FlashErrors(result.Errors)
		redirect(w, r, "/")
		return
	case err != nil:
		slog.Error("contact_event", "event", "store_failed",
			"request_id", middleware.RequestIDFrom(ctx), "error", err)
		s.Metrics.ContactEvent("store_failed")
		sess.Draft.Submission = nil
		sess.RestoreDraftNext()
		sess.FlashError(MsgContactFailed)
		redirect(w, r, "/")
		return
	}

	sess.Draft = nil
	s.Metrics.ContactEvent("stored")
	redirect(w, r, pathThanks)
}

// handleContactEdit returns from the review page to the form with the last input restored.
func (s *server) handleContactEdit(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.Draft == nil {
		sess.FlashError(MsgContactExpired)
		redirect(w, r, "/")
		return
	}
	if sess.Draft.Submission != nil {
		sess.Draft.Input = sess.Draft.Submission.Input()
		sess.Draft.Submission = nil
	}
	sess.RestoreDraftNext()
	redirect(w, r, "/")
}

func (s *server) handleContactThanks(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "thanks.html", http.StatusOK, "送信完了", nil)
}
