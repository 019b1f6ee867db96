package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/model"
)

const (
	noticeBadToken  = "Verification link is invalid or has expired."
	noticeBadReset  = "Password reset token is invalid or has expired."
	noticeResetSent = "If an account with that email exists, a password reset link has been sent."
	noticeResent    = "If that account is waiting for verification, a new link has been sent."
)

// AuthPage handles GET /auth, the combined sign in and sign up page.
func (s *Server) AuthPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "auth.html", s.page(w, r, "Sign In"))
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", s.page(w, r, "Log In"))
}

// SignupSubmit handles POST /signup.
func (s *Server) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	in := lifecycle.SignupInput{
		FullName:        r.FormValue("full_name"),
		Email:           r.FormValue("email"),
		Phone:           r.FormValue("phone"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		AcceptTerms:     r.FormValue("terms") != "",
	}

	_, err := s.Engine.Signup(r.Context(), in)
	switch {
	case err == nil:
		s.Templates.Render(w, "verify-prompt.html", s.page(w, r, "Check Your Email"))
	case errors.Is(err, lifecycle.ErrConflict):
		s.redirect(w, r, FlashError, "A user with that email address already exists.", "/auth")
	case errors.Is(err, lifecycle.ErrDeliveryFailed):
		s.Log.Warn("verification mail not sent", zap.Error(err))
		s.redirect(w, r, FlashError,
			"Your account was created but we could not send the verification email. Please request a new link.",
			"/resend-verification")
	default:
		s.fail(w, r, err, "/auth")
	}
}

// VerifyEmail handles GET /verify-email?token=...
func (s *Server) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	_, err := s.Engine.ConsumeVerificationToken(r.Context(), r.URL.Query().Get("token"))
	switch {
	case err == nil:
		s.redirect(w, r, FlashSuccess, "Your email has been verified! You can now log in.", "/auth")
	case errors.Is(err, lifecycle.ErrNotFound):
		s.redirect(w, r, FlashError, noticeBadToken, "/auth")
	default:
		s.fail(w, r, err, "/auth")
	}
}

// ResendVerificationPage handles GET /resend-verification.
func (s *Server) ResendVerificationPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "resend-verification.html", s.page(w, r, "Resend Verification"))
}

// ResendVerificationSubmit handles POST /resend-verification.
func (s *Server) ResendVerificationSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.ResendVerification(r.Context(), r.FormValue("email")); err != nil {
		s.fail(w, r, err, "/resend-verification")
		return
	}
	s.redirect(w, r, FlashSuccess, noticeResent, "/auth")
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := s.Engine.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	switch {
	case errors.Is(err, lifecycle.ErrInvalidCredentials):
		s.redirect(w, r, FlashError, "Invalid email or password.", "/login")
		return
	case errors.Is(err, lifecycle.ErrUnverified):
		s.redirect(w, r, FlashError, "Your account has not been verified. Please check your email.", "/auth")
		return
	case err != nil:
		s.fail(w, r, err, "/login")
		return
	}

	if !s.startSession(w, r, user) {
		return
	}
	s.redirect(w, r, FlashSuccess, "Welcome back!", s.popReturnTo(w, r))
}

// AdminLoginPage handles GET /admin-login.
func (s *Server) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "admin-login.html", s.page(w, r, "Admin Login"))
}

// AdminLoginSubmit handles POST /admin-login.
func (s *Server) AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := s.Engine.AuthenticateAdmin(r.Context(), r.FormValue("email"), r.FormValue("password"))
	var denied *lifecycle.DeniedError
	switch {
	case errors.As(err, &denied):
		s.redirect(w, r, FlashError, denied.Error(), "/")
		return
	case errors.Is(err, lifecycle.ErrInvalidCredentials):
		s.redirect(w, r, FlashError, "Invalid email or password.", "/admin-login")
		return
	case errors.Is(err, lifecycle.ErrUnverified):
		s.redirect(w, r, FlashError, "Your account has not been verified. Please check your email.", "/admin-login")
		return
	case err != nil:
		s.fail(w, r, err, "/admin-login")
		return
	}

	if !s.startSession(w, r, user) {
		return
	}
	s.redirect(w, r, FlashSuccess, "Welcome, Admin!", "/admin/dashboard")
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	token, expires, err := s.Sessions.Issue(user)
	if err != nil {
		s.Log.Error("issuing session", zap.Error(err))
		s.redirect(w, r, FlashError, noticeSomethingWrong, "/login")
		return false
	}
	s.setSessionCookie(w, token, expires)
	return true
}

// Logout handles GET and POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetWebClaims(r.Context()); claims != nil {
		if err := s.Sessions.Revoke(r.Context(), claims); err != nil {
			s.Log.Error("revoking session", zap.Error(err))
		} else {
			s.Log.Info("user logged out", zap.Int64("user_id", claims.UserID))
		}
	}
	s.clearSessionCookie(w)
	s.redirect(w, r, FlashSuccess, "You have been logged out.", "/")
}

// ForgotPasswordPage handles GET /forgot-password.
func (s *Server) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "forgot-password.html", s.page(w, r, "Forgot Password"))
}

// ForgotPasswordSubmit handles POST /forgot-password. The response is the
// same whether or not the address belongs to an account.
func (s *Server) ForgotPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	err := s.Engine.IssueResetToken(r.Context(), r.FormValue("email"))
	if err != nil && !errors.Is(err, lifecycle.ErrDeliveryFailed) {
		s.fail(w, r, err, "/forgot-password")
		return
	}
	if err != nil {
		s.Log.Warn("reset mail not sent", zap.Error(err))
	}
	s.redirect(w, r, FlashSuccess, noticeResetSent, "/forgot-password")
}

// ResetPasswordPage handles GET /reset-password/{token}.
func (s *Server) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := s.Engine.CheckResetToken(r.Context(), token); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			s.redirect(w, r, FlashError, noticeBadReset, "/forgot-password")
			return
		}
		s.fail(w, r, err, "/forgot-password")
		return
	}
	data := s.page(w, r, "Reset Password")
	data.Token = token
	s.Templates.Render(w, "reset-password.html", data)
}

// ResetPasswordSubmit handles POST /reset-password/{token}. A successful
// reset signs the user in.
func (s *Server) ResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	user, err := s.Engine.ConsumeResetToken(r.Context(), token, r.FormValue("password"), r.FormValue("confirm"))
	var verr *lifecycle.ValidationError
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		s.redirect(w, r, FlashError, noticeBadReset, "/forgot-password")
		return
	case errors.As(err, &verr):
		s.redirect(w, r, FlashError, verr.Reason, "/reset-password/"+url.PathEscape(token))
		return
	case err != nil:
		s.fail(w, r, err, "/forgot-password")
		return
	}

	if !s.startSession(w, r, user) {
		return
	}
	s.redirect(w, r, FlashSuccess, "Your password has been successfully updated!", "/")
}

// ChangePasswordPage handles GET /account/password.
func (s *Server) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "change-password.html", s.page(w, r, "Change Password"))
}

// ChangePasswordSubmit handles POST /account/password.
func (s *Server) ChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	err := s.Engine.ChangePassword(r.Context(), access.ActorFrom(r.Context()),
		r.FormValue("current_password"), r.FormValue("password"), r.FormValue("confirm"))
	if errors.Is(err, lifecycle.ErrInvalidCredentials) {
		s.redirect(w, r, FlashError, "Current password is incorrect.", "/account/password")
		return
	}
	if err != nil {
		s.fail(w, r, err, "/account/password")
		return
	}
	s.redirect(w, r, FlashSuccess, "Your password has been successfully updated!", "/")
}
