package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionablylate/internal/adapters/session"
)

var echoMethod = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.Method))
})

func TestRateLimiter_AllowsBurstThenRefills(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimit_Returns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	h := RateLimit(rl)(echoMethod)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.RemoteAddr = "10.0.0.1:6666"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimit_NilDisables(t *testing.T) {
	h := RateLimit(nil)(echoMethod)
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(echoMethod).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Referrer-Policy"))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   string
	}{
		{"delete", "DELETE", http.MethodDelete},
		{"lower case", "delete", http.MethodDelete},
		{"unknown stays post", "TRACE", http.MethodPost},
		{"absent stays post", "", http.MethodPost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			MethodOverride(echoMethod).ServeHTTP(rec, postForm("/admin/contact/1", url.Values{MethodOverrideField: {tt.method}}))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	rec := httptest.NewRecorder()
	MethodOverride(echoMethod).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?_method=DELETE", nil))
	assert.Equal(t, http.MethodGet, rec.Body.String(), "only POST is overridden")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-42", seen)
	assert.Equal(t, "upstream-42", rec.Header().Get(RequestIDHeader))

	assert.Empty(t, RequestIDFrom(req.Context()))
}

func TestChain_LastRunsFirst(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(echoMethod, mark("inner"), mark("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func csrfApp(failures *int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /form", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csrf.Token(r)))
	})
	mux.HandleFunc("POST /form", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stored"))
	})
	return CSRF(CSRFConfig{
		Key: []byte(strings.Repeat("k", 32)),
		FailureHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*failures++
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}),
	})(mux)
}

func TestCSRF_RejectsMissingTokenAndAcceptsValid(t *testing.T) {
	var failures int
	h := csrfApp(&failures)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Body.String()
	require.NotEmpty(t, token)
	var secret *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			secret = c
		}
	}
	require.NotNil(t, secret)

	rec = httptest.NewRecorder()
	req := postForm("/form", url.Values{"x": {"1"}})
	req.AddCookie(secret)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, failures)

	rec = httptest.NewRecorder()
	req = postForm("/form", url.Values{"gorilla.csrf.Token": {token}})
	req.AddCookie(secret)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stored", rec.Body.String())
	assert.Equal(t, 1, failures)
}

func TestClearCSRFCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCSRFCookie(rec, false)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CSRFCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

// guardState is what guardApp saw on the session after the last request.
type guardState struct {
	intended string
	flash    string
}

// guardApp mounts the guards behind a session manager. /signin signs the visitor in.
func guardApp(state *guardState) http.Handler {
	mgr := session.NewManager(session.NewMemoryStore(), time.Hour, false)
	mux := http.NewServeMux()
	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		session.FromContext(r.Context()).SignIn(1, "admin@example.com", "admin")
	})
	mux.Handle("/admin", RequireAuth(echoMethod))
	mux.Handle("/login", GuestOnly(echoMethod))
	record := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			sess := session.FromContext(r.Context())
			state.intended = sess.Intended
			state.flash = sess.Pending.Error
		})
	}
	return mgr.Middleware(record(mux))
}

func serve(h http.Handler, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, *http.Cookie) {
	return serveMethod(h, http.MethodGet, path, cookie)
}

func serveMethod(h http.Handler, method, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, *http.Cookie) {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	return rec, cookie
}

func TestRequireAuth_RedirectsGuestAndRemembersURL(t *testing.T) {
	var state guardState
	h := guardApp(&state)

	rec, _ := serve(h, "/admin?page=2", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Equal(t, "/admin?page=2", state.intended)
	assert.Empty(t, state.flash)
}

func TestRequireAuth_ExpiredSessionOnWrite(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodDelete} {
		var state guardState
		rec, _ := serveMethod(guardApp(&state), method, "/admin", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, method)
		assert.Equal(t, LoginPath, rec.Header().Get("Location"), method)
		assert.Equal(t, MsgSessionExpired, state.flash, method)
		assert.Empty(t, state.intended, method)
	}
}

func TestGuards_SignedIn(t *testing.T) {
	var state guardState
	h := guardApp(&state)

	_, cookie := serve(h, "/signin", nil)
	require.NotNil(t, cookie)

	rec, _ := serve(h, "/admin", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(h, "/login", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, HomePath, rec.Header().Get("Location"))
}

func TestGuestOnly_LetsGuestsThrough(t *testing.T) {
	var state guardState
	rec, _ := serve(guardApp(&state), "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
