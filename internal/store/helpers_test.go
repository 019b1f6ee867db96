package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/findmate/internal/db"
	"github.com/erazemk/findmate/internal/model"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(db.NewTestDB(t))
}

func mustCreateUser(t *testing.T, s *Store, name, email string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{
		FullName:     name,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		Verified:     true,
		CreatedAt:    testNow,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func lostReport(owner *int64, name string, created time.Time) *model.LostReport {
	return &model.LostReport{
		ReportBase: model.ReportBase{
			OwnerID:     owner,
			ItemName:    name,
			Category:    model.CategoryBags,
			Description: "Navy blue with a keychain",
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		Color:        "blue",
		LostLocation: model.ZoneLibrary,
		LostDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func foundReport(owner *int64, name string, created time.Time) *model.FoundReport {
	return &model.FoundReport{
		ReportBase: model.ReportBase{
			OwnerID:     owner,
			ItemName:    name,
			Category:    model.CategoryKeys,
			Description: "Three brass keys",
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		FoundLocation:   model.ZoneGround,
		FoundDate:       time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		CurrentLocation: "Security desk",
		ContactPhone:    "555-0100",
	}
}
