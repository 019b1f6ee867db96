package lifecycle

import (
	"errors"
	"fmt"

	"github.com/erazemk/findmate/internal/access"
)

// Error kinds returned by the Engine. Callers classify with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConflict           = errors.New("conflict")
	ErrTransient          = errors.New("store unavailable")
	ErrDeliveryFailed     = errors.New("mail delivery failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnverified         = errors.New("account not verified")
)

// ValidationError names the field that failed validation and why. The
// reason is suitable for showing to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DeniedError carries the gate decision behind an ErrPermissionDenied.
type DeniedError struct {
	Decision access.Decision
}

func (e *DeniedError) Error() string {
	return e.Decision.Notice
}

// Is makes every DeniedError match ErrPermissionDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}
