package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/findmate/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{
		FullName:     "Alice Example",
		Email:        "  Alice@Campus.EDU ",
		Phone:        "555-0100",
		PasswordHash: "hash123",
		Role:         model.RoleUser,
		CreatedAt:    testNow,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "alice@campus.edu" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Verified {
		t.Error("new user should not be verified")
	}
	if user.Verification != nil {
		t.Error("expected no verification token")
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.FullName != "Alice Example" || got.Phone != "555-0100" {
		t.Errorf("unexpected user: %+v", got)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, got.CreatedAt)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "Alice", "alice@campus.edu")

	_, err := s.CreateUser(ctx, model.User{
		FullName: "Other", Email: "ALICE@campus.edu", PasswordHash: "h", Role: model.RoleUser, CreatedAt: testNow,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "Alice", "alice@campus.edu")

	user, err := s.GetUserByEmail(ctx, "Alice@Campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := s.GetUserByEmail(ctx, "bob@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestListAndCountUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "A", "a@campus.edu")
	mustCreateUser(t, s, "B", "b@campus.edu")

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	admins, err := s.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if admins != 0 {
		t.Errorf("expected no admins, got %d", admins)
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, s, "Alice", "alice@campus.edu")
	r := lostReport(&user.ID, "Backpack", testNow)
	if err := s.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	deleted, err := s.DeleteUser(ctx, user.ID, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !deleted {
		t.Fatal("expected user to be deleted")
	}

	// Soft-deleted users drop out of email lookups and listings.
	byEmail, _ := s.GetUserByEmail(ctx, "alice@campus.edu")
	if byEmail != nil {
		t.Error("deleted user should not be found by email")
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("expected 0 active users, got %d", len(users))
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}

	// The user's reports are untouched.
	kept, _ := s.GetReport(ctx, model.KindLost, r.ID)
	if kept == nil || kept.Base().OwnerID == nil || *kept.Base().OwnerID != user.ID {
		t.Error("deleting a user must not cascade into reports")
	}

	// The email can be reused after deletion.
	mustCreateUser(t, s, "Alice Again", "alice@campus.edu")

	again, err := s.DeleteUser(ctx, user.ID, testNow)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if again {
		t.Error("deleting an already deleted user should report false")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, s, "Alice", "alice@campus.edu")
	if err := s.UpdateUserPassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}
