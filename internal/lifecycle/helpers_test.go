package lifecycle

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/db"
	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/store"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeOutbox struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (f *fakeOutbox) Submit(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeOutbox) last(t *testing.T) mail.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.msgs, "expected a submitted mail")
	return f.msgs[len(f.msgs)-1]
}

func (f *fakeOutbox) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakePhotos struct {
	keys []string
	err  error
}

func (f *fakePhotos) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.edu/" + key, nil
}

// faultyRepo is a real store with selectable method overrides.
type faultyRepo struct {
	*store.Store
	createReport  func(ctx context.Context, r model.Report) error
	archiveReport func(ctx context.Context, kind model.Kind, id string) (*model.ReunitedRecord, error)
	setResetToken func(ctx context.Context, userID int64, t model.Token) (bool, error)
}

func (f *faultyRepo) CreateReport(ctx context.Context, r model.Report) error {
	if f.createReport != nil {
		return f.createReport(ctx, r)
	}
	return f.Store.CreateReport(ctx, r)
}

func (f *faultyRepo) ArchiveReport(ctx context.Context, kind model.Kind, id string, snapshot func(model.Report) model.ReunitedRecord) (*model.ReunitedRecord, error) {
	if f.archiveReport != nil {
		return f.archiveReport(ctx, kind, id)
	}
	return f.Store.ArchiveReport(ctx, kind, id, snapshot)
}

func (f *faultyRepo) SetResetToken(ctx context.Context, userID int64, t model.Token) (bool, error) {
	if f.setResetToken != nil {
		return f.setResetToken(ctx, userID, t)
	}
	return f.Store.SetResetToken(ctx, userID, t)
}

type harness struct {
	engine *Engine
	store  *store.Store
	repo   *faultyRepo
	outbox *fakeOutbox
	photos *fakePhotos
	clock  *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	h := &harness{
		store:  s,
		repo:   &faultyRepo{Store: s},
		outbox: &fakeOutbox{},
		photos: &fakePhotos{},
		clock:  &clock{t: time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local)},
	}
	h.engine = New(h.repo, Options{
		Photos:     h.photos,
		Outbox:     h.outbox,
		Now:        h.clock.Now,
		BaseURL:    "https://findmate.example/",
		BcryptCost: bcrypt.MinCost,
	})
	return h
}

// member creates a verified account and returns it as an actor.
func (h *harness) member(t *testing.T, name, email, role string) *access.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := h.store.CreateUser(context.Background(), model.User{
		FullName:     name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Verified:     true,
		CreatedAt:    h.clock.Now(),
	})
	require.NoError(t, err)
	return &access.Actor{UserID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role}
}

func lostInput(name string) ReportInput {
	return ReportInput{
		ItemName:    name,
		Category:    "bags",
		Description: "Navy blue with a keychain",
		Location:    "Library",
		Date:        "2026-03-14",
		Color:       "blue",
	}
}

func foundInput(name string) ReportInput {
	return ReportInput{
		ItemName:        name,
		Category:        "keys",
		Description:     "Three brass keys on a ring",
		Location:        "Ground",
		Date:            "2026-03-13",
		CurrentLocation: "Security desk",
		ContactPhone:    "555-0100",
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	verifyLink = regexp.MustCompile(`/verify-email\?token=([0-9a-f]+)`)
	resetLink  = regexp.MustCompile(`/reset-password/([0-9a-f]+)`)
)

func tokenFrom(t *testing.T, re *regexp.Regexp, msg mail.Message) string {
	t.Helper()
	m := re.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "no token link in %q", msg.HTML)
	return m[1]
}
