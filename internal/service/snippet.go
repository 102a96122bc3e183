// Package service contains the business logic layer. Handlers parse HTTP
// and delegate here; services validate, enforce ownership rules and talk
// to the repositories through their interfaces. Nothing in this package
// knows about status codes or SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadim/script-playground/internal/apperror"
	"github.com/nadim/script-playground/internal/model"
	"github.com/nadim/script-playground/internal/repository"
)

const (
	MaxSnippetNameLength = 100
	MaxSourceLength      = 100000 // ~100KB of script source
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// SnippetService handles business logic for saved snippets.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new snippet. userID may be empty for
// anonymous saves; when set, the snippet belongs to that user.
func (s *SnippetService) Create(ctx context.Context, userID, name, source, description string) (*model.Snippet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "snippet name is required")
	}
	if len(name) > MaxSnippetNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
	}
	if len(source) > MaxSourceLength {
		return nil, apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxSourceLength))
	}

	snippet := &model.Snippet{
		UserID:      userID,
		Name:        name,
		Source:      source,
		Description: strings.TrimSpace(description),
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("name", snippet.Name),
	)

	return snippet, nil
}

// GetByID retrieves a snippet by its ID.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	return s.repo.GetByID(ctx, id)
}

// List retrieves snippets with pagination, newest first. A non-empty
// userID restricts the listing to that user's snippets.
func (s *SnippetService) List(ctx context.Context, limit, offset int, userID string) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
		UserID: userID,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update modifies an existing snippet. The caller must own it; snippets
// without an owner (legacy anonymous rows) can be edited by anyone.
// An empty name means "keep the current one"; source is always replaced
// since clearing it is a valid edit.
func (s *SnippetService) Update(ctx context.Context, userID, id, name, source, description string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(snippet, userID); err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxSnippetNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
		}
		snippet.Name = name
	}
	if len(source) > MaxSourceLength {
		return nil, apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxSourceLength))
	}
	snippet.Source = source
	snippet.Description = strings.TrimSpace(description)

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("name", snippet.Name),
	)

	return snippet, nil
}

// Delete removes a snippet. Same ownership rule as Update.
func (s *SnippetService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(snippet, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

func checkOwnership(snippet *model.Snippet, userID string) error {
	if snippet.UserID != "" && snippet.UserID != userID {
		return apperror.Forbidden("you do not own this snippet")
	}
	return nil
}
