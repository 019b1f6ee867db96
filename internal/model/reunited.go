package model

import "time"

// ReunitedRecord is the archived form of a resolved report. It is written once
// and never updated; it is the only evidence left of the source report.
type ReunitedRecord struct {
	ID            string     `json:"id"`
	SourceKind    Kind       `json:"source_kind"`
	SourceID      string     `json:"source_id"`
	ItemName      string     `json:"item_name"`
	Description   string     `json:"description,omitempty"`
	Category      Category   `json:"category,omitempty"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	UserID        *int64     `json:"user_id,omitempty"`
	FinderID      *int64     `json:"finder_id,omitempty"`
	LostLocation  Zone       `json:"lost_location,omitempty"`
	FoundLocation Zone       `json:"found_location,omitempty"`
	LostDate      *time.Time `json:"lost_date,omitempty"`
	FoundDate     *time.Time `json:"found_date,omitempty"`
	ReunitedAt    time.Time  `json:"reunited_at"`
	ResolvedBy    *int64     `json:"resolved_by,omitempty"`

	// Joined fields (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}

// NewReunitedRecord snapshots r into a record stamped with reunitedAt.
// The caller assigns the ID. Owner references are copied as-is, so a report
// whose owner was deleted produces a record with no user or finder.
func NewReunitedRecord(r Report, reunitedAt time.Time) ReunitedRecord {
	b := r.Base()
	rec := ReunitedRecord{
		SourceKind:  r.Kind(),
		SourceID:    b.ID,
		ItemName:    b.ItemName,
		Description: b.Description,
		Category:    b.Category,
		PhotoURL:    b.PhotoURL,
		ReunitedAt:  reunitedAt,
	}

	switch v := r.(type) {
	case *LostReport:
		rec.UserID = copyID(v.OwnerID)
		rec.LostLocation = v.LostLocation
		d := v.LostDate
		rec.LostDate = &d
	case *FoundReport:
		rec.FinderID = copyID(v.OwnerID)
		rec.FoundLocation = v.FoundLocation
		d := v.FoundDate
		rec.FoundDate = &d
	}
	return rec
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
