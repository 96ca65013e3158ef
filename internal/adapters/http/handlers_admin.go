package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/session"
	"fashionablylate/internal/adapters/storage"
	"fashionablylate/internal/application/listutil"
	"fashionablylate/internal/application/orchestrators"
	"fashionablylate/internal/application/projections"
)

// Admin messages.
const (
	MsgContactNotFound = orchestrators.MsgGenericFailure + "対象のお問い合わせが見つかりません。"
	MsgInvalidID       = orchestrators.MsgGenericFailure + "不正なIDです。"
)

// adminView feeds admin.html.
type adminView struct {
	projections.GetContactListResult
	Filters url.Values // active filters without the page
	Back    string     // current list query, carried through detail and delete
}

// detailView feeds detail.html.
type detailView struct {
	projections.GetContactDetailResult
	Back string
}

// handleAdminIndex renders the filtered, paginated listing.
func (s *server) handleAdminIndex(w http.ResponseWriter, r *http.Request) {
	query := projections.ParseContactListQuery(r.URL.Query())
	result, err := projections.QueryGetContactList(r.Context(), query, projections.GetContactListDeps{
		ContactStore:  s.Stores.ContactStore,
		CategoryStore: s.Stores.CategoryStore,
		Location:      s.location(),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	filters := query.Values()
	s.render(w, r, "admin.html", http.StatusOK, "Admin", adminView{
		GetContactListResult: result,
		Filters:              filters,
		Back:                 listutil.WithPage(filters, query.Page),
	})
}

// handleAdminShow renders one contact.
func (s *server) handleAdminShow(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	back := backQuery(r.URL.Query().Get("back"))
	id, ok := pathID(r)
	if !ok {
		sess.FlashError(MsgInvalidID)
		redirect(w, r, adminURL(back))
		return
	}
	result, err := projections.QueryGetContactDetail(r.Context(), id, projections.GetContactDetailDeps{
		ContactStore: s.Stores.ContactStore,
	})
	if errors.Is(err, storage.ErrNotFound) {
		sess.FlashError(MsgContactNotFound)
		redirect(w, r, adminURL(back))
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	s.render(w, r, "detail.html", http.StatusOK, "お問い合わせ詳細", detailView{GetContactDetailResult: result, Back: back})
}

// handleAdminDestroy deletes one contact and reports the outcome by flash.
func (s *server) handleAdminDestroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	back := backQuery(r.PostFormValue("back"))
	id, ok := pathID(r)
	if !ok {
		sess.FlashError(MsgInvalidID)
		redirect(w, r, adminURL(back))
		return
	}

	outcome := orchestrators.ExecuteDeleteContact(ctx, id, orchestrators.DeleteContactDeps{
		ContactStore: s.Stores.ContactStore,
	})
	s.Metrics.ContactEvent("delete_" + outcome.String())
	slog.Info("contact_event", "event", "delete", "outcome", outcome.String(), "id", id,
		"admin", sess.Email, "request_id", middleware.RequestIDFrom(ctx))
	if outcome.OK() {
		sess.FlashSuccess(outcome.Message())
	} else {
		sess.FlashError(outcome.Message())
	}
	redirect(w, r, adminURL(back))
}

// handleAdminExport streams every contact matching the current filters as CSV.
func (s *server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	query := projections.ParseContactListQuery(r.URL.Query())
	var buf bytes.Buffer
	n, err := projections.ExportContacts(r.Context(), query, &buf, projections.ExportContactsDeps{
		ContactStore: s.Stores.ContactStore,
		Location:     s.location(),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	name := fmt.Sprintf("contacts_%s.csv", s.now().In(s.location()).Format("20060102150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	slog.Info("contact_event", "event", "export", "rows", n, "admin", session.FromContext(r.Context()).Email)
	_, _ = buf.WriteTo(w)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// backQuery re-encodes a carried list query so only well-formed parameters survive.
func backQuery(raw string) string {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	return q.Encode()
}

func adminURL(query string) string {
	if query == "" {
		return middleware.HomePath
	}
	return middleware.HomePath + "?" + query
}
