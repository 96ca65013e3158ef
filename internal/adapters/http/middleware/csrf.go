package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFCookieName is the cookie holding the anti-forgery secret.
const CSRFCookieName = "fashionablylate_csrf"

// CSRFConfig configures CSRF.
type CSRFConfig struct {
	Key            []byte // 32 bytes
	Secure         bool   // HTTPS-only cookie and TLS referer checks
	TrustedOrigins []string
	// FailureHandler renders token mismatches; csrf.FailureReason(r) explains why.
	FailureHandler http.Handler
}

// CSRF returns middleware that rejects unsafe requests without a valid token.
// Plain-HTTP requests are marked as such when Secure is off so the TLS-only
// referer check does not reject local development traffic.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName(CSRFCookieName),
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	if cfg.FailureHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.FailureHandler))
	}
	protect := csrf.Protect(cfg.Key, opts...)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && !cfg.Secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}

// ClearCSRFCookie expires the anti-forgery cookie so the next page issues a fresh token.
func ClearCSRFCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
