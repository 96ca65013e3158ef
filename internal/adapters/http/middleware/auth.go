package middleware

import (
	"net/http"

	"fashionablylate/internal/adapters/session"
)

// Paths the guards redirect to.
const (
	LoginPath = "/login"
	HomePath  = "/admin"
)

// MsgSessionExpired is flashed when a form from the admin area arrives without a signed-in session.
const MsgSessionExpired = "セッションが切れました。再度ログインしてください。"

// RequireAuth returns middleware that sends guests to the login page.
// The URL of a blocked GET is remembered so login can return there.
// Any other method means an admin page outlived its session.
// PRE: runs inside session.Manager.Middleware
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if !s.Authenticated() {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				s.Intended = r.URL.RequestURI()
			default:
				s.FlashError(MsgSessionExpired)
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GuestOnly returns middleware that sends signed-in users to the admin home.
// PRE: runs inside session.Manager.Middleware
func GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
