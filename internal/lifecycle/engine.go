// Package lifecycle implements report submission, browsing, resolution into
// reunited records and the account verification lifecycle.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/metrics"
	"github.com/erazemk/findmate/internal/model"
)

// ReportRepository persists active reports and the reunified archive.
type ReportRepository interface {
	CreateReport(ctx context.Context, r model.Report) error
	GetReport(ctx context.Context, kind model.Kind, id string) (model.Report, error)
	ListReports(ctx context.Context, kind model.Kind, filter model.ReportFilter) ([]model.Report, error)
	CountReports(ctx context.Context, kind model.Kind) (int, error)
	DeleteReport(ctx context.Context, kind model.Kind, id string) (bool, error)
	ArchiveReport(ctx context.Context, kind model.Kind, id string, snapshot func(model.Report) model.ReunitedRecord) (*model.ReunitedRecord, error)
	ListReunited(ctx context.Context) ([]model.ReunitedRecord, error)
	CountReunited(ctx context.Context) (int, error)
}

// UserRepository persists accounts and their token pairs.
type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64, at time.Time) (bool, error)
	SetVerificationToken(ctx context.Context, userID int64, t model.Token) (bool, error)
	ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*model.User, error)
	SetResetToken(ctx context.Context, userID int64, t model.Token) (bool, error)
	GetUserByResetToken(ctx context.Context, hash string, now time.Time) (*model.User, error)
	ConsumeResetToken(ctx context.Context, hash, passwordHash string, now time.Time) (*model.User, error)
}

// Repository is everything the Engine needs from storage.
type Repository interface {
	ReportRepository
	UserRepository
}

// PhotoStore stores a processed photo and returns its URL.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// DefaultTokenTTL is how long verification and reset tokens stay valid.
const DefaultTokenTTL = time.Hour

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Photos   PhotoStore
	Outbox   mail.Outbox
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
	BaseURL  string
	TokenTTL time.Duration

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Engine is the lifecycle core. It is safe for concurrent use; all state
// lives in the repository.
type Engine struct {
	repo     Repository
	photos   PhotoStore
	outbox   mail.Outbox
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	baseURL  string
	tokenTTL time.Duration
	cost     int
}

// New returns an Engine over repo.
func New(repo Repository, opts Options) *Engine {
	e := &Engine{
		repo:     repo,
		photos:   opts.Photos,
		outbox:   opts.Outbox,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		tokenTTL: opts.TokenTTL,
		cost:     opts.BcryptCost,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.tokenTTL <= 0 {
		e.tokenTTL = DefaultTokenTTL
	}
	if e.cost == 0 {
		e.cost = bcrypt.DefaultCost
	}
	return e
}

// authorize decides op for actor against the stored account rather than the
// identity the caller presented. A deleted account is treated as anonymous
// and the stored role replaces the presented one.
func (e *Engine) authorize(ctx context.Context, actor *access.Actor, op access.Operation) error {
	current, err := e.currentActor(ctx, actor)
	if err != nil {
		return err
	}
	if d := access.Decide(current, op); !d.Allowed() {
		return &DeniedError{Decision: d}
	}
	return nil
}

func (e *Engine) currentActor(ctx context.Context, actor *access.Actor) (*access.Actor, error) {
	if !actor.Authenticated() {
		return nil, nil
	}
	u, err := e.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, transient("loading actor", err)
	}
	if u == nil || u.DeletedAt != nil {
		return nil, nil
	}
	return &access.Actor{UserID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role}, nil
}
