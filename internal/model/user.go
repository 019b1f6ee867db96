package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is an account that can sign in and own reports.
type User struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Verified     bool       `json:"verified"`
	Verification *Token     `json:"-"`
	Reset        *Token     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Token is a single-use secret paired with its expiry. Only the SHA-256 hash
// of the value is stored; a nil *Token means no token is outstanding.
type Token struct {
	Hash      string
	ExpiresAt time.Time
}

// Valid reports whether the token is still usable at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && now.Before(t.ExpiresAt)
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsAdmin reports whether role grants administrative access.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// MinPasswordLength is the shortest password accepted.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email looks like a deliverable address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return errors.New("please fill a valid email address")
	}
	return nil
}
