package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// engineError maps a lifecycle error onto an HTTP status.
func (h *Handler) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *lifecycle.ValidationError
	var denied *lifecycle.DeniedError

	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, errorBody{Error: verr.Reason, Field: verr.Field})
	case errors.As(err, &denied):
		status := http.StatusForbidden
		if denied.Decision.Outcome == access.DenyLogin {
			status = http.StatusUnauthorized
		}
		jsonError(w, status, denied.Error())
	case errors.Is(err, lifecycle.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, lifecycle.ErrConflict):
		jsonError(w, http.StatusConflict, "a user with that email address already exists")
	case errors.Is(err, lifecycle.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, lifecycle.ErrUnverified):
		jsonError(w, http.StatusForbidden, "account has not been verified, please check your email")
	case errors.Is(err, lifecycle.ErrDeliveryFailed):
		h.Log.Error("mail delivery failed", zap.String("path", r.URL.Path), zap.Error(err))
		jsonError(w, http.StatusBadGateway, "could not send email, please try again later")
	case errors.Is(err, lifecycle.ErrTransient):
		h.Log.Error("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		jsonError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.Log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
