package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/session"
	"fashionablylate/internal/domain/contact"
)

const pathConfirm = "/contact/confirm"

// isContactPath reports whether a path belongs to the public contact form.
func isContactPath(path string) bool {
	return path == "/" || path == "/contact" || strings.HasPrefix(path, "/contact/")
}

// handleCSRFFailure turns a token mismatch into a redirect with a flash.
// Contact form posts go back to the form with what was typed; everything else goes to login.
// PRE: runs inside session.Manager.Middleware
func (s *server) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	area := "admin"
	if isContactPath(r.URL.Path) {
		area = "contact"
	}
	s.Metrics.CSRFFailure(area)
	slog.Warn("csrf_failure",
		"area", area,
		"path", r.URL.Path,
		"reason", errString(csrf.FailureReason(r)),
		"request_id", middleware.RequestIDFrom(r.Context()),
	)

	if area == "contact" {
		if r.URL.Path == pathConfirm {
			sess.Draft = &contact.Draft{Input: contactInput(r)}
		} else if sess.Draft != nil {
			sess.Draft.Submission = nil
		}
		if sess.Draft != nil {
			sess.RestoreDraftNext()
		}
		sess.FlashError(MsgContactExpired)
		redirect(w, r, "/")
		return
	}

	sess.FlashError(MsgAdminExpired)
	redirect(w, r, middleware.LoginPath)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
