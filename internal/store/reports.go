package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/findmate/internal/model"
)

const lostColumns = `r.id, r.user_id, r.item_name, r.category, r.description, r.color, r.brand,
	r.lost_location, r.lost_date, r.photo_url, r.notes, r.created_at, r.updated_at,
	COALESCE(u.full_name, ''), COALESCE(u.email, '')`

const foundColumns = `r.id, r.finder_id, r.item_name, r.category, r.description,
	r.found_location, r.found_date, r.current_location, r.contact_phone,
	r.photo_url, r.notes, r.created_at, r.updated_at,
	COALESCE(u.full_name, ''), COALESCE(u.email, '')`

// ErrSourceChanged is returned when the conditional delete of an archived
// report does not remove exactly one row.
var ErrSourceChanged = errors.New("source report changed during archive")

func selectReports(kind model.Kind) string {
	if kind == model.KindLost {
		return `SELECT ` + lostColumns + ` FROM lost_reports r LEFT JOIN users u ON u.id = r.user_id`
	}
	return `SELECT ` + foundColumns + ` FROM found_reports r LEFT JOIN users u ON u.id = r.finder_id`
}

func scanLost(s scanner) (*model.LostReport, error) {
	r := &model.LostReport{}
	var owner sql.NullInt64
	var lostDate string
	var created, updated int64
	err := s.Scan(&r.ID, &owner, &r.ItemName, &r.Category, &r.Description, &r.Color, &r.Brand,
		&r.LostLocation, &lostDate, &r.PhotoURL, &r.Notes, &created, &updated,
		&r.OwnerName, &r.OwnerEmail)
	if err != nil {
		return nil, err
	}
	r.OwnerID = idPtr(owner)
	r.CreatedAt = fromNanos(created)
	r.UpdatedAt = fromNanos(updated)
	if r.LostDate, err = parseDate(lostDate); err != nil {
		return nil, err
	}
	return r, nil
}

func scanFound(s scanner) (*model.FoundReport, error) {
	r := &model.FoundReport{}
	var owner sql.NullInt64
	var foundDate string
	var created, updated int64
	err := s.Scan(&r.ID, &owner, &r.ItemName, &r.Category, &r.Description,
		&r.FoundLocation, &foundDate, &r.CurrentLocation, &r.ContactPhone,
		&r.PhotoURL, &r.Notes, &created, &updated,
		&r.OwnerName, &r.OwnerEmail)
	if err != nil {
		return nil, err
	}
	r.OwnerID = idPtr(owner)
	r.CreatedAt = fromNanos(created)
	r.UpdatedAt = fromNanos(updated)
	if r.FoundDate, err = parseDate(foundDate); err != nil {
		return nil, err
	}
	return r, nil
}

func scanReport(kind model.Kind, s scanner) (model.Report, error) {
	if kind == model.KindLost {
		return scanLost(s)
	}
	return scanFound(s)
}

// CreateReport inserts r in a single statement. An empty ID is replaced with
// a fresh UUID.
func (s *Store) CreateReport(ctx context.Context, r model.Report) error {
	b := r.Base()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	var err error
	switch v := r.(type) {
	case *model.LostReport:
		_, err = s.DB.ExecContext(ctx,
			`INSERT INTO lost_reports (id, user_id, item_name, category, description, color, brand,
			     lost_location, lost_date, photo_url, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, nullID(v.OwnerID), v.ItemName, v.Category, v.Description, v.Color, v.Brand,
			v.LostLocation, v.LostDate.Format(model.DateLayout), v.PhotoURL, v.Notes,
			nanos(v.CreatedAt), nanos(v.UpdatedAt),
		)
	case *model.FoundReport:
		_, err = s.DB.ExecContext(ctx,
			`INSERT INTO found_reports (id, finder_id, item_name, category, description,
			     found_location, found_date, current_location, contact_phone, photo_url, notes,
			     created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, nullID(v.OwnerID), v.ItemName, v.Category, v.Description,
			v.FoundLocation, v.FoundDate.Format(model.DateLayout), v.CurrentLocation, v.ContactPhone,
			v.PhotoURL, v.Notes, nanos(v.CreatedAt), nanos(v.UpdatedAt),
		)
	default:
		return fmt.Errorf("creating report: unsupported type %T", r)
	}
	if err != nil {
		return fmt.Errorf("creating %s report: %w", r.Kind(), err)
	}
	return nil
}

// GetReport returns the active report of the given kind, or nil if absent.
func (s *Store) GetReport(ctx context.Context, kind model.Kind, id string) (model.Report, error) {
	return getReport(ctx, s.DB, kind, id)
}

func getReport(ctx context.Context, q querier, kind model.Kind, id string) (model.Report, error) {
	if _, err := table(kind); err != nil {
		return nil, err
	}
	r, err := scanReport(kind, q.QueryRowContext(ctx, selectReports(kind)+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s report: %w", kind, err)
	}
	return r, nil
}

// ListReports returns active reports of the given kind matching filter,
// newest first with ties broken by descending id.
func (s *Store) ListReports(ctx context.Context, kind model.Kind, filter model.ReportFilter) ([]model.Report, error) {
	if _, err := table(kind); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if text := strings.TrimSpace(filter.Text); text != "" {
		where = append(where, `(instr(fold(r.item_name), fold(?)) > 0 OR instr(fold(r.description), fold(?)) > 0)`)
		args = append(args, text, text)
	}
	if filter.Category != "" {
		where = append(where, `r.category = ?`)
		args = append(args, filter.Category)
	}
	if !filter.Since.IsZero() {
		where = append(where, `r.created_at >= ?`)
		args = append(args, nanos(filter.Since))
	}

	query := selectReports(kind)
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s reports: %w", kind, err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s report: %w", kind, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// CountReports returns the number of active reports of the given kind.
func (s *Store) CountReports(ctx context.Context, kind model.Kind) (int, error) {
	t, err := table(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s reports: %w", kind, err)
	}
	return n, nil
}

// DeleteReport removes the report without archiving it. It reports whether a
// row was deleted.
func (s *Store) DeleteReport(ctx context.Context, kind model.Kind, id string) (bool, error) {
	t, err := table(kind)
	if err != nil {
		return false, err
	}
	result, err := s.DB.ExecContext(ctx, `DELETE FROM `+t+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting %s report: %w", kind, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting %s report: %w", kind, err)
	}
	return n == 1, nil
}

// ArchiveReport moves a report into reunited_records inside one transaction.
// The record built by snapshot is inserted before the source row is deleted,
// and the delete must remove exactly one row. Any failure rolls back both
// writes. It returns nil, nil if the report does not exist.
func (s *Store) ArchiveReport(ctx context.Context, kind model.Kind, id string,
	snapshot func(model.Report) model.ReunitedRecord,
) (_ *model.ReunitedRecord, err error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	r, err := getReport(ctx, tx, kind, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		_ = tx.Rollback()
		return nil, nil
	}

	rec := snapshot(r)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err = insertReunited(ctx, tx, &rec); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting archived %s report: %w", kind, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deleting archived %s report: %w", kind, err)
	}
	if n != 1 {
		err = ErrSourceChanged
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing archive: %w", err)
	}
	return &rec, nil
}
