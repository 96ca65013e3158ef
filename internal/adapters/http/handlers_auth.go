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
)

// Auth messages.
const (
	MsgInvalidCredentials = "提供された認証情報が正しくありません。"
	MsgAccountLocked      = "ログイン試行回数が多すぎます。しばらくしてから再度お試しください。"
	MsgEmailTaken         = "このメールアドレスは既に使用されています。"
	MsgRegisterFailed     = "登録中にエラーが発生しました。しばらく時間をおいて再度お試しください。"
	MsgAdminExpired       = middleware.MsgSessionExpired
	MsgLoginFailed        = "エラーが発生しました。しばらく時間をおいて再度お試しください。"
)

const pathRegister = "/register"

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", http.StatusOK, "ログイン", nil)
}

func (s *server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", http.StatusOK, "ユーザー登録", nil)
}

// handleLogin authenticates and rotates the session ID.
// Failures go back to the form with the email kept and the password dropped.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	form := validation.LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	back := func() {
		sess.FlashOld(map[string]string{"email": form.Email})
		redirect(w, r, middleware.LoginPath)
	}

	errs, err := s.Validator.Login(form)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if errs.Any() {
		sess.FlashErrors(errs)
		back()
		return
	}

	user, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{Email: form.Email, Password: form.Password},
		orchestrators.LoginDeps{UserStore: s.Stores.AccountStore, Now: s.Now})
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		s.Metrics.AuthEvent("login_failed")
		sess.FlashError(MsgInvalidCredentials)
		back()
		return
	case errors.Is(err, orchestrators.ErrAccountLocked):
		s.Metrics.AuthEvent("login_locked")
		sess.FlashError(MsgAccountLocked)
		back()
		return
	case err != nil:
		slog.Error("auth_event", "event", "login_error", "request_id", middleware.RequestIDFrom(ctx), "error", err)
		sess.FlashError(MsgLoginFailed)
		back()
		return
	}

	if err := s.Sessions.Regenerate(w, r); err != nil {
		internalError(w, r, err)
		return
	}
	sess.SignIn(user.UserID, user.Email, user.Name)
	s.Metrics.AuthEvent("login_success")
	target := safeRedirect(sess.Intended, middleware.HomePath)
	sess.Intended = ""
	redirect(w, r, target)
}

// handleRegister creates an account and signs it in.
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	form := validation.RegisterForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	errs, err := s.Validator.Register(form)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if errs.Any() {
		sess.FlashErrors(errs)
		sess.FlashOld(map[string]string{"name": form.Name, "email": form.Email})
		redirect(w, r, pathRegister)
		return
	}

	user, err := orchestrators.ExecuteRegister(ctx, orchestrators.RegisterInput{Name: form.Name, Email: form.Email, Password: form.Password},
		orchestrators.RegisterDeps{UserStore: s.Stores.AccountStore, Now: s.Now})
	switch {
	case errors.Is(err, orchestrators.ErrEmailTaken):
		s.Metrics.AuthEvent("register_duplicate")
		sess.FlashErrors(map[string]string{"email": MsgEmailTaken})
		sess.FlashOld(map[string]string{"name": form.Name})
		redirect(w, r, pathRegister)
		return
	case err != nil:
		s.Metrics.AuthEvent("register_failed")
		sess.FlashError(MsgRegisterFailed)
		sess.FlashOld(map[string]string{"name": form.Name, "email": form.Email})
		redirect(w, r, pathRegister)
		return
	}

	if err := s.Sessions.Regenerate(w, r); err != nil {
		internalError(w, r, err)
		return
	}
	sess.SignIn(user.UserID, user.Email, user.Name)
	s.Metrics.AuthEvent("register_success")
	redirect(w, r, middleware.HomePath)
}

// handleLogout destroys the session first, then rotates the CSRF secret.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	email := sess.Email
	if err := s.Sessions.Destroy(w, r); err != nil {
		slog.Error("auth_event", "event", "logout_error", "error", err)
	}
	middleware.ClearCSRFCookie(w, s.Secure)
	if email != "" {
		slog.Info("auth_event", "event", "logout", "email", email)
		s.Metrics.AuthEvent("logout")
	}
	redirect(w, r, "/")
}

// safeRedirect accepts only same-site absolute paths.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
