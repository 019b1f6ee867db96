package model

import (
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"lost", KindLost, true},
		{"FOUND", KindFound, true},
		{" found ", KindFound, true},
		{"reunited", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnumerations(t *testing.T) {
	if !CategoryKeys.Valid() || Category("furniture").Valid() {
		t.Error("category validation mismatch")
	}
	if !ZoneLibrary.Valid() || Zone("library").Valid() {
		t.Error("zone validation is case-sensitive and must accept only known zones")
	}
	if len(Categories) != 8 {
		t.Errorf("expected 8 categories, got %d", len(Categories))
	}
	if len(Zones) != 13 {
		t.Errorf("expected 13 zones, got %d", len(Zones))
	}
}

func TestRecencySince(t *testing.T) {
	loc := time.FixedZone("campus", 5*3600+1800)
	now := time.Date(2026, 3, 31, 15, 4, 5, 0, loc)

	tests := []struct {
		recency Recency
		want    time.Time
		bounded bool
	}{
		{RecencyAny, time.Time{}, false},
		{"", time.Time{}, false},
		{RecencyToday, time.Date(2026, 3, 31, 0, 0, 0, 0, loc), true},
		{RecencyWeek, time.Date(2026, 3, 24, 15, 4, 5, 0, loc), true},
		// One calendar month back from March 31st normalizes past February.
		{RecencyMonth, time.Date(2026, 2, 31, 15, 4, 5, 0, loc), true},
	}

	for _, tt := range tests {
		got, ok := tt.recency.Since(now)
		if ok != tt.bounded || !got.Equal(tt.want) {
			t.Errorf("%q.Since = %v, %v; want %v, %v", tt.recency, got, ok, tt.want, tt.bounded)
		}
	}

	if Recency("year").Valid() {
		t.Error("unknown recency must be invalid")
	}
}

func TestNewReunitedRecordFromLost(t *testing.T) {
	owner := int64(7)
	lostDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	r := &LostReport{
		ReportBase: ReportBase{
			ID:          "r1",
			OwnerID:     &owner,
			ItemName:    "Blue Backpack",
			Category:    CategoryBags,
			Description: "Navy blue with a keychain",
			PhotoURL:    "/photos/p1",
		},
		LostLocation: ZoneLibrary,
		LostDate:     lostDate,
	}

	rec := NewReunitedRecord(r, at)

	if rec.SourceKind != KindLost || rec.SourceID != "r1" {
		t.Errorf("unexpected provenance: %s/%s", rec.SourceKind, rec.SourceID)
	}
	if rec.ItemName != "Blue Backpack" || rec.Category != CategoryBags || rec.PhotoURL != "/photos/p1" {
		t.Errorf("snapshot fields not copied: %+v", rec)
	}
	if rec.UserID == nil || *rec.UserID != 7 || rec.FinderID != nil {
		t.Errorf("expected user 7 and no finder, got %v / %v", rec.UserID, rec.FinderID)
	}
	if rec.LostLocation != ZoneLibrary || rec.LostDate == nil || !rec.LostDate.Equal(lostDate) {
		t.Errorf("lost location/date not copied")
	}
	if rec.FoundDate != nil || rec.FoundLocation != "" {
		t.Errorf("found fields must stay empty for a lost report")
	}
	if !rec.ReunitedAt.Equal(at) {
		t.Errorf("expected reunited at %v, got %v", at, rec.ReunitedAt)
	}

	// The record owns its copy of the owner reference.
	owner = 99
	if *rec.UserID != 7 {
		t.Error("record shares the owner pointer with the source report")
	}
}

func TestNewReunitedRecordFromFoundWithoutOwner(t *testing.T) {
	r := &FoundReport{
		ReportBase:      ReportBase{ID: "f1", ItemName: "Keys", Category: CategoryKeys, Description: "Three keys"},
		FoundLocation:   ZoneGround,
		FoundDate:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		CurrentLocation: "Security desk",
		ContactPhone:    "555-0100",
	}

	rec := NewReunitedRecord(r, time.Now())
	if rec.FinderID != nil || rec.UserID != nil {
		t.Error("deleted owner must archive as a null reference")
	}
	if rec.SourceKind != KindFound || rec.FoundLocation != ZoneGround || rec.FoundDate == nil {
		t.Errorf("found fields not copied: %+v", rec)
	}
}
