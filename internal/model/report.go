package model

import (
	"strings"
	"time"
)

// Kind tags which collection a report belongs to.
type Kind string

// Report kinds.
const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// ParseKind converts a path or form value into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLost:
		return KindLost, true
	case KindFound:
		return KindFound, true
	default:
		return "", false
	}
}

// DateLayout is the calendar date format used for lost/found dates.
const DateLayout = "2006-01-02"

// Report is implemented by *LostReport and *FoundReport.
//
// A report only exists while it is active. Resolving it moves its data into a
// ReunitedRecord and removes it, so Status is derived from the kind.
type Report interface {
	Kind() Kind
	Base() *ReportBase
	Location() Zone
	Date() time.Time
	Status() string
}

// ReportBase holds the fields shared by both report kinds.
type ReportBase struct {
	ID          string    `json:"id"`
	OwnerID     *int64    `json:"owner_id,omitempty"`
	ItemName    string    `json:"item_name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

// LostReport is an item a user claims to have lost.
type LostReport struct {
	ReportBase
	Color        string    `json:"color,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	LostLocation Zone      `json:"lost_location"`
	LostDate     time.Time `json:"lost_date"`
}

func (r *LostReport) Kind() Kind { return KindLost }
func (r *LostReport) Base() *ReportBase { return &r.ReportBase }
func (r *LostReport) Location() Zone { return r.LostLocation }
func (r *LostReport) Date() time.Time { return r.LostDate }
func (r *LostReport) Status() string { return string(KindLost) }

// FoundReport is an item a user claims to have found.
type FoundReport struct {
	ReportBase
	FoundLocation   Zone      `json:"found_location"`
	FoundDate       time.Time `json:"found_date"`
	CurrentLocation string    `json:"current_location"`
	ContactPhone    string    `json:"contact_phone"`
}

func (r *FoundReport) Kind() Kind { return KindFound }
func (r *FoundReport) Base() *ReportBase { return &r.ReportBase }
func (r *FoundReport) Location() Zone { return r.FoundLocation }
func (r *FoundReport) Date() time.Time { return r.FoundDate }
func (r *FoundReport) Status() string { return string(KindFound) }

// Recency limits listings to recently created reports.
type Recency string

// Recency filters.
const (
	RecencyAny   Recency = "any"
	RecencyToday Recency = "today"
	RecencyWeek  Recency = "week"
	RecencyMonth Recency = "month"
)

// Valid reports whether r is a known recency filter. The empty value means any.
func (r Recency) Valid() bool {
	switch r {
	case "", RecencyAny, RecencyToday, RecencyWeek, RecencyMonth:
		return true
	}
	return false
}

// Since returns the lower bound on creation time for r relative to now.
// The second result is false when r imposes no bound.
func (r Recency) Since(now time.Time) (time.Time, bool) {
	switch r {
	case RecencyToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case RecencyWeek:
		return now.AddDate(0, 0, -7), true
	case RecencyMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// ReportFilter narrows report listings. Zero fields impose no constraint.
type ReportFilter struct {
	Text     string
	Category Category
	Since    time.Time
}
