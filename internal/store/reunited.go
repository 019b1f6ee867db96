package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/findmate/internal/model"
)

func insertReunited(ctx context.Context, tx *sql.Tx, rec *model.ReunitedRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO reunited_records (id, source_kind, source_id, item_name, description, category,
		     photo_url, user_id, finder_id, lost_location, found_location, lost_date, found_date,
		     reunited_at, resolved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceKind, rec.SourceID, rec.ItemName, rec.Description, rec.Category,
		rec.PhotoURL, nullID(rec.UserID), nullID(rec.FinderID), rec.LostLocation, rec.FoundLocation,
		dateValue(rec.LostDate), dateValue(rec.FoundDate), nanos(rec.ReunitedAt), nullID(rec.ResolvedBy),
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("archiving %s report %s: %w", rec.SourceKind, rec.SourceID, ErrDuplicate)
		}
		return fmt.Errorf("archiving %s report: %w", rec.SourceKind, err)
	}
	return nil
}

// ListReunited returns all reunited records, most recently reunited first.
// OwnerName is the lost-report owner or, failing that, the finder.
func (s *Store) ListReunited(ctx context.Context) ([]model.ReunitedRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.id, r.source_kind, r.source_id, r.item_name, r.description, r.category, r.photo_url,
		        r.user_id, r.finder_id, r.lost_location, r.found_location, r.lost_date, r.found_date,
		        r.reunited_at, r.resolved_by, COALESCE(u.full_name, f.full_name, '')
		 FROM reunited_records r
		 LEFT JOIN users u ON u.id = r.user_id
		 LEFT JOIN users f ON f.id = r.finder_id
		 ORDER BY r.reunited_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reunited records: %w", err)
	}
	defer rows.Close()

	var records []model.ReunitedRecord
	for rows.Next() {
		var rec model.ReunitedRecord
		var userID, finderID, resolvedBy sql.NullInt64
		var lostDate, foundDate sql.NullString
		var reunitedAt int64
		if err := rows.Scan(&rec.ID, &rec.SourceKind, &rec.SourceID, &rec.ItemName, &rec.Description,
			&rec.Category, &rec.PhotoURL, &userID, &finderID, &rec.LostLocation, &rec.FoundLocation,
			&lostDate, &foundDate, &reunitedAt, &resolvedBy, &rec.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning reunited record: %w", err)
		}
		rec.UserID = idPtr(userID)
		rec.FinderID = idPtr(finderID)
		rec.ResolvedBy = idPtr(resolvedBy)
		rec.ReunitedAt = fromNanos(reunitedAt)
		if rec.LostDate, err = nullDate(lostDate); err != nil {
			return nil, err
		}
		if rec.FoundDate, err = nullDate(foundDate); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountReunited returns the number of reunited records.
func (s *Store) CountReunited(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reunited_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reunited records: %w", err)
	}
	return n, nil
}
