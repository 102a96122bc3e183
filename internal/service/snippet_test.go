package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/nadim/script-playground/internal/apperror"
	"github.com/nadim/script-playground/internal/model"
	"github.com/nadim/script-playground/internal/repository"
)

// mockSnippetRepo is an in-memory repository.SnippetRepository. Hand
// written rather than generated so failure modes are easy to inject.
type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	nextID   int
	failWith error // when set, every call returns this error
}

func newMockRepo() *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets: make(map[string]*model.Snippet),
	}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	snippet.ID = fmt.Sprintf("mock-%d", m.nextID)
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := *snippet
	return &result, nil
}

func (m *mockSnippetRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := make([]model.Snippet, 0, len(m.snippets))
	for _, s := range m.snippets {
		if opts.UserID != "" && s.UserID != opts.UserID {
			continue
		}
		result = append(result, *s)
	}
	if opts.Offset >= len(result) {
		return []model.Snippet{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T) (*SnippetService, *mockSnippetRepo) {
	t.Helper()
	repo := newMockRepo()
	return NewSnippetService(repo, testLogger()), repo
}

func TestSnippetCreate(t *testing.T) {
	svc, _ := newTestService(t)

	snippet, err := svc.Create(context.Background(), "user-1", "greeting", "log('hi');", "says hi")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if snippet.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", snippet.UserID, "user-1")
	}
}

func TestSnippetCreate_TrimsName(t *testing.T) {
	svc, _ := newTestService(t)

	snippet, err := svc.Create(context.Background(), "", "  padded  ", "log(1);", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.Name != "padded" {
		t.Errorf("Name = %q, want %q", snippet.Name, "padded")
	}
}

func TestSnippetCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name        string
		snippetName string
		source      string
	}{
		{"empty name", "", "log(1);"},
		{"whitespace name", "   ", "log(1);"},
		{"name too long", strings.Repeat("x", MaxSnippetNameLength+1), "log(1);"},
		{"source too long", "ok", strings.Repeat("x", MaxSourceLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "", tt.snippetName, tt.source, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSnippetCreate_RepoError(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failWith = errors.New("disk full")

	if _, err := svc.Create(context.Background(), "", "name", "log(1);", ""); err == nil {
		t.Fatal("Create() should propagate repository errors")
	}
}

func TestSnippetGetByID(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "", "find-me", "return 1;", "")

	found, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "find-me" {
		t.Errorf("Name = %q, want %q", found.Name, "find-me")
	}
}

func TestSnippetGetByID_EmptyID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetByID() error = %v, want ErrValidation", err)
	}
}

func TestSnippetGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSnippetList_ScopedToUser(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Create(context.Background(), "user-1", "mine", "return 1;", "")
	svc.Create(context.Background(), "user-2", "theirs", "return 2;", "")

	snippets, err := svc.List(context.Background(), 0, 0, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("List() returned %d snippets, want 1", len(snippets))
	}
	if snippets[0].Name != "mine" {
		t.Errorf("Name = %q, want %q", snippets[0].Name, "mine")
	}
}

func TestSnippetUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-1", "before", "log('v1');", "")

	updated, err := svc.Update(context.Background(), "user-1", created.ID, "after", "log('v2');", "second draft")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "after" {
		t.Errorf("Name = %q, want %q", updated.Name, "after")
	}
	if updated.Source != "log('v2');" {
		t.Errorf("Source = %q, want %q", updated.Source, "log('v2');")
	}
}

func TestSnippetUpdate_EmptyNameKeepsExisting(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "", "keep-me", "log(1);", "")

	updated, err := svc.Update(context.Background(), "", created.ID, "", "log(2);", "")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "keep-me" {
		t.Errorf("Name = %q, want %q", updated.Name, "keep-me")
	}
}

func TestSnippetUpdate_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-1", "locked", "return 1;", "")

	_, err := svc.Update(context.Background(), "user-2", created.ID, "stolen", "return 2;", "")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() error = %v, want ErrForbidden", err)
	}
}

func TestSnippetDelete(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-1", "doomed", "return 1;", "")

	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.GetByID(context.Background(), created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSnippetDelete_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-1", "locked", "return 1;", "")

	err := svc.Delete(context.Background(), "user-2", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() error = %v, want ErrForbidden", err)
	}
}

func TestSnippetDelete_AnonymousSnippetEditableByAnyone(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "", "shared", "return 1;", "")

	if err := svc.Delete(context.Background(), "user-9", created.ID); err != nil {
		t.Errorf("Delete() error = %v, want nil for unowned snippet", err)
	}
}
