package lifecycle

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/store"
)

// tokenBytes is the entropy of verification and reset tokens.
const tokenBytes = 20

// SignupInput carries the raw signup form.
type SignupInput struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// newToken returns a random token and its stored form.
func (e *Engine) newToken() (string, model.Token, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", model.Token{}, fmt.Errorf("generating token: %w", err)
	}
	raw := hex.EncodeToString(buf)
	return raw, model.Token{Hash: hashToken(raw), ExpiresAt: e.now().Add(e.tokenTTL)}, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (e *Engine) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), e.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return invalid("confirm_password", "Passwords do not match.")
	}
	if model.ValidatePassword(password) != nil {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters.", model.MinPasswordLength))
	}
	return nil
}

// Signup creates an unverified account and mails it a verification link.
// When only the mail submission fails, the account is returned together
// with an error matching ErrDeliveryFailed; the account and token remain.
func (e *Engine) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	name := strings.TrimSpace(in.FullName)
	email := model.NormalizeEmail(in.Email)

	if name == "" {
		return nil, invalid("full_name", "Full name is required.")
	}
	if model.ValidateEmail(email) != nil {
		return nil, invalid("email", "Please fill a valid email address.")
	}
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if !in.AcceptTerms {
		return nil, invalid("terms", "You must agree to the terms of service.")
	}

	existing, err := e.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, transient("checking email", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a user with that email address already exists", ErrConflict)
	}

	hash, err := e.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	raw, tok, err := e.newToken()
	if err != nil {
		return nil, err
	}

	u, err := e.repo.CreateUser(ctx, model.User{
		FullName:     name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Verification: &tok,
		CreatedAt:    e.now(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("%w: a user with that email address already exists", ErrConflict)
	}
	if err != nil {
		return nil, transient("creating user", err)
	}

	e.metrics.Signup()
	e.log.Info("user signed up", zap.Int64("user_id", u.ID), zap.String("email", u.Email))

	if err := e.sendVerification(ctx, u, raw); err != nil {
		return u, err
	}
	return u, nil
}

func (e *Engine) sendVerification(ctx context.Context, u *model.User, raw string) error {
	link := e.baseURL + "/verify-email?token=" + url.QueryEscape(raw)
	msg, err := mail.VerificationMessage(u.Email, u.FullName, link)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return e.submit(ctx, msg)
}

func (e *Engine) submit(ctx context.Context, msg mail.Message) error {
	if e.outbox == nil {
		return fmt.Errorf("%w: no mail outbox configured", ErrDeliveryFailed)
	}
	if err := e.outbox.Submit(ctx, msg); err != nil {
		e.metrics.Mail("rejected")
		e.log.Error("mail submission failed", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// IssueVerificationToken replaces the user's verification token and mails
// the new link.
func (e *Engine) IssueVerificationToken(ctx context.Context, userID int64) error {
	u, err := e.repo.GetUser(ctx, userID)
	if err != nil {
		return transient("loading user", err)
	}
	if u == nil || u.DeletedAt != nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if u.Verified {
		return fmt.Errorf("%w: account is already verified", ErrConflict)
	}

	raw, tok, err := e.newToken()
	if err != nil {
		return err
	}
	ok, err := e.repo.SetVerificationToken(ctx, u.ID, tok)
	if err != nil {
		return transient("storing verification token", err)
	}
	if !ok {
		return fmt.Errorf("user %d: %w", u.ID, ErrNotFound)
	}
	return e.sendVerification(ctx, u, raw)
}

// ResendVerification issues a fresh verification link for an unverified
// account. Unknown or already verified emails are accepted silently so the
// response does not reveal which accounts exist.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	u, err := e.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return transient("loading user", err)
	}
	if u == nil || u.Verified {
		return nil
	}
	return e.IssueVerificationToken(ctx, u.ID)
}

// ConsumeVerificationToken marks the token holder verified and clears the
// token. Unknown, used and expired tokens yield ErrNotFound.
func (e *Engine) ConsumeVerificationToken(ctx context.Context, raw string) (*model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("verification token: %w", ErrNotFound)
	}
	u, err := e.repo.ConsumeVerificationToken(ctx, hashToken(raw), e.now())
	if err != nil {
		return nil, transient("consuming verification token", err)
	}
	if u == nil {
		return nil, fmt.Errorf("verification token: %w", ErrNotFound)
	}
	e.log.Info("email verified", zap.Int64("user_id", u.ID))
	return u, nil
}

// IssueResetToken mails a password reset link to the account with email.
// Unknown emails are accepted silently.
func (e *Engine) IssueResetToken(ctx context.Context, email string) error {
	u, err := e.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return transient("loading user", err)
	}
	if u == nil {
		e.log.Debug("password reset requested for unknown email")
		return nil
	}

	raw, tok, err := e.newToken()
	if err != nil {
		return err
	}
	ok, err := e.repo.SetResetToken(ctx, u.ID, tok)
	if err != nil {
		return transient("storing reset token", err)
	}
	if !ok {
		e.log.Debug("account removed before reset token was stored", zap.Int64("user_id", u.ID))
		return nil
	}

	msg, err := mail.ResetMessage(u.Email, e.baseURL+"/reset-password/"+url.PathEscape(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return e.submit(ctx, msg)
}

// CheckResetToken reports whether raw is a live reset token without
// consuming it.
func (e *Engine) CheckResetToken(ctx context.Context, raw string) (*model.User, error) {
	u, err := e.repo.GetUserByResetToken(ctx, hashToken(strings.TrimSpace(raw)), e.now())
	if err != nil {
		return nil, transient("checking reset token", err)
	}
	if u == nil {
		return nil, fmt.Errorf("reset token: %w", ErrNotFound)
	}
	return u, nil
}

// ConsumeResetToken sets a new password for the token holder and clears the
// token. The token is checked first, so an invalid token is reported before
// any password problem.
func (e *Engine) ConsumeResetToken(ctx context.Context, raw, password, confirm string) (*model.User, error) {
	if _, err := e.CheckResetToken(ctx, raw); err != nil {
		return nil, err
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return nil, err
	}

	hash, err := e.hashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := e.repo.ConsumeResetToken(ctx, hashToken(strings.TrimSpace(raw)), hash, e.now())
	if err != nil {
		return nil, transient("consuming reset token", err)
	}
	if u == nil {
		return nil, fmt.Errorf("reset token: %w", ErrNotFound)
	}
	e.log.Info("password reset", zap.Int64("user_id", u.ID))
	return u, nil
}

// Authenticate checks credentials. Correct credentials on an unverified
// account yield ErrUnverified.
func (e *Engine) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := e.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, transient("loading user", err)
	}
	if u == nil || u.DeletedAt != nil {
		e.metrics.Login("invalid")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		e.metrics.Login("invalid")
		e.log.Warn("login failed", zap.String("email", u.Email))
		return nil, ErrInvalidCredentials
	}
	if !u.Verified {
		e.metrics.Login("unverified")
		return nil, ErrUnverified
	}
	e.metrics.Login("ok")
	e.log.Info("user logged in", zap.Int64("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

// AuthenticateAdmin is Authenticate restricted to administrators.
func (e *Engine) AuthenticateAdmin(ctx context.Context, email, password string) (*model.User, error) {
	u, err := e.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !model.IsAdmin(u.Role) {
		return nil, &DeniedError{Decision: access.Decision{
			Outcome: access.DenyHome,
			Notice:  "Access Denied. Admin credentials required.",
		}}
	}
	return u, nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (e *Engine) ChangePassword(ctx context.Context, actor *access.Actor, current, password, confirm string) error {
	if err := e.authorize(ctx, actor, access.OpChangePassword); err != nil {
		return err
	}
	u, err := e.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return transient("loading user", err)
	}
	if u == nil || u.DeletedAt != nil {
		return fmt.Errorf("user %d: %w", actor.UserID, ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := e.hashPassword(password)
	if err != nil {
		return err
	}
	if err := e.repo.UpdateUserPassword(ctx, u.ID, hash); err != nil {
		return transient("updating password", err)
	}
	e.log.Info("user changed own password", zap.Int64("user_id", u.ID))
	return nil
}

// EnsureAdmin creates a verified administrator with a random password when
// no administrator exists yet. It returns the generated password, or "" if
// an administrator was already present.
func (e *Engine) EnsureAdmin(ctx context.Context, name, email string) (string, error) {
	n, err := e.repo.CountAdmins(ctx)
	if err != nil {
		return "", transient("counting admins", err)
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := e.hashPassword(password)
	if err != nil {
		return "", err
	}

	u, err := e.repo.CreateUser(ctx, model.User{
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Verified:     true,
		CreatedAt:    e.now(),
	})
	if err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	e.log.Info("admin account created", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	return password, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
