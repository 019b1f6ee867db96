package photo

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/findmate/internal/model"
)

// Store persists an encoded photo under key and returns the URL it is served
// from.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Repository is the database side of DBStore.
type Repository interface {
	PutPhoto(ctx context.Context, p model.Photo) error
}

// URLPrefix is the path DBStore photos are served under.
const URLPrefix = "/photos/"

// DBStore keeps photos in the application database.
type DBStore struct {
	repo Repository
	now  func() time.Time
}

// NewDBStore returns a DBStore writing through repo.
func NewDBStore(repo Repository) *DBStore {
	return &DBStore{repo: repo, now: time.Now}
}

// Put implements Store.
func (s *DBStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	err := s.repo.PutPhoto(ctx, model.Photo{
		ID:        key,
		MIME:      contentType,
		Data:      data,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("storing photo %s: %w", key, err)
	}
	return URLPrefix + key, nil
}
