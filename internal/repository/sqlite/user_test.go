package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/nadim/script-playground/internal/apperror"
	"github.com/nadim/script-playground/internal/model"
)

func createTestUser(t *testing.T, db *DB, githubID int64, login string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Login:     login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/" + login,
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserUpsert_Insert(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		GitHubID:  12345,
		Login:     "testuser",
		Email:     "test@example.com",
		AvatarURL: "https://example.com/avatar.png",
	}

	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Upsert() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set user.CreatedAt")
	}
}

func TestUserUpsert_UpdateKeepsID(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, 99999, "original")

	// Second login with the same GitHub ID refreshes the profile but keeps
	// the internal ID.
	again := &model.User{
		GitHubID:  99999,
		Login:     "renamed",
		Email:     "new@example.com",
		AvatarURL: "https://example.com/new.png",
	}
	if err := db.Upsert(context.Background(), again); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if again.ID != first.ID {
		t.Errorf("Upsert() ID = %q, want original %q", again.ID, first.ID)
	}

	found, err := db.GetUserByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Login != "renamed" {
		t.Errorf("Login = %q, want %q", found.Login, "renamed")
	}
	if found.Email != "new@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "new@example.com")
	}
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, 555, "lookup")

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.GitHubID != 555 {
		t.Errorf("GitHubID = %d, want 555", found.GitHubID)
	}
	if found.Login != "lookup" {
		t.Errorf("Login = %q, want %q", found.Login, "lookup")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}
