// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the implementation; tests use
// in-memory mocks.
package repository

import (
	"context"

	"github.com/nadim/script-playground/internal/model"
)

// ListOptions controls pagination and scoping for snippet listings.
// An empty UserID lists snippets for everyone.
type ListOptions struct {
	Limit  int
	Offset int
	UserID string
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	// Upsert inserts a new user or refreshes the profile of an existing one,
	// keyed on the GitHub ID. On return user.ID is populated either way.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
