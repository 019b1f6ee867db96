package api

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type signupRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AcceptTerms     bool   `json:"accept_terms"`
}

type signupResponse struct {
	User    *model.User `json:"user"`
	Message string      `json:"message"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.Engine.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	token, expires, err := h.Sessions.Issue(user)
	if err != nil {
		h.Log.Error("issuing session", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	jsonResponse(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, User: user})
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Engine.Signup(r.Context(), lifecycle.SignupInput(req))
	switch {
	case err == nil:
		jsonResponse(w, http.StatusCreated, signupResponse{
			User:    user,
			Message: "Registration successful! Please check your email to verify your account.",
		})
	case user != nil && errors.Is(err, lifecycle.ErrDeliveryFailed):
		h.Log.Warn("verification mail not sent", zap.Int64("user_id", user.ID), zap.Error(err))
		jsonResponse(w, http.StatusCreated, signupResponse{
			User:    user,
			Message: "Your account was created but the verification email could not be sent. Please request a new link.",
		})
	default:
		h.engineError(w, r, err)
	}
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if err := h.Sessions.Revoke(r.Context(), claims); err != nil {
		h.Log.Error("revoking session", zap.Error(err))
		jsonError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	h.Log.Info("user logged out", zap.Int64("user_id", claims.UserID))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "You have been logged out."})
}

// ChangePassword handles PUT /api/auth/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if req.ConfirmPassword == "" {
		req.ConfirmPassword = req.NewPassword
	}

	err := h.Engine.ChangePassword(r.Context(), access.ActorFrom(r.Context()),
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if errors.Is(err, lifecycle.ErrInvalidCredentials) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Your password has been successfully updated!"})
}
