package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"fashionablylate/internal/adapters/email"
	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/metrics"
	"fashionablylate/internal/adapters/session"
	accountStore "fashionablylate/internal/adapters/storage/account"
	categoryStore "fashionablylate/internal/adapters/storage/category"
	contactStore "fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/application/validation"
)

//go:embed static
var staticFS embed.FS

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Stores holds all storage dependencies.
type Stores struct {
	CategoryStore categoryStore.Store
	ContactStore  contactStore.Store
	AccountStore  accountStore.Store
}

// Deps holds everything the handlers need.
// Sender, Metrics, RateLimiter and DB may be nil.
type Deps struct {
	Stores            Stores
	Sessions          *session.Manager
	Validator         *validation.Validator
	Sender            email.Sender
	NotifyTo          []string
	Metrics           *metrics.Metrics
	RateLimiter       *middleware.RateLimiter
	DB                Pinger
	CSRFKey           []byte
	Secure            bool
	TrustedOrigins    []string
	AllowRegistration bool
	Location          *time.Location
	SlowRequestMs     int
	Now               func() time.Time
}

// server carries Deps into the handlers.
type server struct {
	Deps
	views *views
}

func (s *server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *server) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// NewMux wires HTTP handlers for the app.
// Static assets, /metrics and /healthz bypass sessions and CSRF; everything else
// runs through RateLimit -> Sessions -> CSRF -> MethodOverride.
// PRE: Stores, Sessions, Validator and CSRFKey are set
func NewMux(deps Deps) http.Handler {
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	s := &server{Deps: deps, views: newViews(deps.Location)}

	app := http.NewServeMux()
	s.registerRoutes(app)

	appChain := middleware.Chain(app,
		middleware.MethodOverride,
		middleware.CSRF(middleware.CSRFConfig{
			Key:            deps.CSRFKey,
			Secure:         deps.Secure,
			TrustedOrigins: deps.TrustedOrigins,
			FailureHandler: http.HandlerFunc(s.handleCSRFFailure),
		}),
		deps.Sessions.Middleware,
		middleware.RateLimit(deps.RateLimiter),
	)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	root := http.NewServeMux()
	root.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	root.Handle("GET /metrics", deps.Metrics.Handler())
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.Handle("/", appChain)

	// Outermost last: RequestID -> Timing -> SecurityHeaders -> root
	return middleware.Chain(root,
		middleware.SecurityHeaders,
		middleware.Timing(deps.Metrics, deps.SlowRequestMs),
		middleware.RequestID,
	)
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	// Contact form
	mux.HandleFunc("GET /{$}", s.handleContactIndex)
	mux.HandleFunc("POST /contact/confirm", s.handleContactConfirm)
	mux.HandleFunc("POST /contact", s.handleContactStore)
	mux.HandleFunc("POST /contact/edit", s.handleContactEdit)
	mux.HandleFunc("GET /contact/thanks", s.handleContactThanks)

	// Auth
	guest := middleware.GuestOnly
	mux.Handle("GET /login", guest(http.HandlerFunc(s.handleLoginForm)))
	mux.Handle("POST /login", guest(http.HandlerFunc(s.handleLogin)))
	mux.Handle("GET /register", guest(s.registrationGate(s.handleRegisterForm)))
	mux.Handle("POST /register", guest(s.registrationGate(s.handleRegister)))
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Admin
	auth := middleware.RequireAuth
	mux.Handle("GET /admin", auth(http.HandlerFunc(s.handleAdminIndex)))
	mux.Handle("GET /admin/export", auth(http.HandlerFunc(s.handleAdminExport)))
	mux.Handle("GET /admin/contact/{id}", auth(http.HandlerFunc(s.handleAdminShow)))
	mux.Handle("DELETE /admin/contact/{id}", auth(http.HandlerFunc(s.handleAdminDestroy)))
}

// registrationGate 404s the register routes unless registration is enabled.
func (s *server) registrationGate(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.AllowRegistration {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
