package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/findmate/internal/model"
)

// PutPhoto stores an encoded photo.
func (s *Store) PutPhoto(ctx context.Context, p model.Photo) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO photos (id, mime, data, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.MIME, p.Data, nanos(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storing photo: %w", err)
	}
	return nil
}

// GetPhoto returns a stored photo, or nil if absent.
func (s *Store) GetPhoto(ctx context.Context, id string) (*model.Photo, error) {
	p := &model.Photo{}
	var created int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, mime, data, created_at FROM photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.MIME, &p.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	p.CreatedAt = fromNanos(created)
	return p, nil
}
