package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/model"
	"github.com/sakif/dev-directory/internal/query"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================

type mockDeveloperRepo struct {
	developers map[string]*model.Developer
	nextID     int
}

func newMockDeveloperRepo() *mockDeveloperRepo {
	return &mockDeveloperRepo{developers: make(map[string]*model.Developer)}
}

func (m *mockDeveloperRepo) List(_ context.Context) ([]model.Developer, error) {
	result := make([]model.Developer, 0, len(m.developers))
	for _, d := range m.developers {
		result = append(result, d.Clone())
	}
	return result, nil
}

func (m *mockDeveloperRepo) GetByID(_ context.Context, id string) (*model.Developer, error) {
	dev, ok := m.developers[id]
	if !ok {
		return nil, apperror.NotFound("developer", id)
	}
	clone := dev.Clone()
	return &clone, nil
}

func (m *mockDeveloperRepo) Create(_ context.Context, dev *model.Developer) error {
	m.nextID++
	dev.ID = fmt.Sprintf("mock-%d", m.nextID)
	now := time.Now().UTC()
	dev.CreatedAt = now
	dev.UpdatedAt = now
	stored := dev.Clone()
	m.developers[dev.ID] = &stored
	return nil
}

func (m *mockDeveloperRepo) Update(_ context.Context, dev *model.Developer) error {
	if _, ok := m.developers[dev.ID]; !ok {
		return apperror.NotFound("developer", dev.ID)
	}
	dev.UpdatedAt = time.Now().UTC()
	stored := dev.Clone()
	m.developers[dev.ID] = &stored
	return nil
}

func (m *mockDeveloperRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.developers[id]; !ok {
		return apperror.NotFound("developer", id)
	}
	delete(m.developers, id)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestDirectory(t *testing.T) (*DirectoryService, *mockDeveloperRepo) {
	t.Helper()
	repo := newMockDeveloperRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewDirectoryService(repo, logger), repo
}

func validInput() CreateInput {
	return CreateInput{
		Name:       "Nina Alvarez",
		Role:       "Backend",
		TechStack:  []string{"Go", "Postgres"},
		Experience: 5,
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestDirectoryCreate_Valid(t *testing.T) {
	svc, _ := newTestDirectory(t)

	dev, err := svc.Create(context.Background(), validInput(), "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if dev.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if dev.CreatedBy != "user-1" {
		t.Errorf("CreatedBy = %q, want user-1", dev.CreatedBy)
	}
	if dev.Role != model.RoleBackend {
		t.Errorf("Role = %q, want %q", dev.Role, model.RoleBackend)
	}
}

func TestDirectoryCreate_TrimsFields(t *testing.T) {
	svc, _ := newTestDirectory(t)

	in := validInput()
	in.Name = "  Nina Alvarez  "
	in.TechStack = []string{" Go ", "", "  ", "Postgres"}

	dev, err := svc.Create(context.Background(), in, "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if dev.Name != "Nina Alvarez" {
		t.Errorf("Name = %q, want trimmed", dev.Name)
	}
	if len(dev.TechStack) != 2 || dev.TechStack[0] != "Go" || dev.TechStack[1] != "Postgres" {
		t.Errorf("TechStack = %v, want [Go Postgres]", dev.TechStack)
	}
}

func TestDirectoryCreate_Validation(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"empty name", func(in *CreateInput) { in.Name = "" }, "name"},
		{"one-character name", func(in *CreateInput) { in.Name = "A" }, "name"},
		{"whitespace name", func(in *CreateInput) { in.Name = "   " }, "name"},
		{"unknown role", func(in *CreateInput) { in.Role = "Wizard" }, "role"},
		{"empty role", func(in *CreateInput) { in.Role = "" }, "role"},
		{"empty tech stack", func(in *CreateInput) { in.TechStack = nil }, "techStack"},
		{"blank-only tech stack", func(in *CreateInput) { in.TechStack = []string{"  ", ""} }, "techStack"},
		{"negative experience", func(in *CreateInput) { in.Experience = -1 }, "experience"},
		{"malformed joining date", func(in *CreateInput) { in.JoiningDate = "01/02/2024" }, "joiningDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(ctx, in, "user-1")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}

			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestDirectoryCreate_InvalidRecordNotStored(t *testing.T) {
	svc, repo := newTestDirectory(t)

	in := validInput()
	in.TechStack = nil
	if _, err := svc.Create(context.Background(), in, "user-1"); err == nil {
		t.Fatal("expected validation error")
	}
	if len(repo.developers) != 0 {
		t.Error("rejected record reached the repository")
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestDirectoryList_FiltersThroughQueryEngine(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	roles := []string{"Backend", "Frontend", "Backend", "Full-Stack"}
	for i, role := range roles {
		in := validInput()
		in.Name = fmt.Sprintf("Dev %d", i)
		in.Role = role
		if _, err := svc.Create(ctx, in, "user-1"); err != nil {
			t.Fatal(err)
		}
	}

	res, err := svc.List(ctx, query.Params{Role: "backend", PageSize: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
}

func TestDirectoryList_InvalidParams(t *testing.T) {
	svc, _ := newTestDirectory(t)

	_, err := svc.List(context.Background(), query.Params{Page: 0, PageSize: 9})
	if !errors.Is(err, apperror.ErrInvalidParameter) {
		t.Errorf("List() error = %v, want ErrInvalidParameter", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestDirectoryUpdate_Partial(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	dev, err := svc.Create(ctx, validInput(), "user-1")
	if err != nil {
		t.Fatal(err)
	}

	exp := 9
	updated, err := svc.Update(ctx, dev.ID, UpdateInput{Experience: &exp})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Experience != 9 {
		t.Errorf("Experience = %d, want 9", updated.Experience)
	}
	// Untouched fields survive a partial update.
	if updated.Name != dev.Name || updated.Role != dev.Role {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.CreatedBy != "user-1" {
		t.Errorf("CreatedBy changed to %q", updated.CreatedBy)
	}
}

func TestDirectoryUpdate_InvalidPatchRejected(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	dev, err := svc.Create(ctx, validInput(), "user-1")
	if err != nil {
		t.Fatal(err)
	}

	empty := []string{}
	_, err = svc.Update(ctx, dev.ID, UpdateInput{TechStack: &empty})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}

	// The stored record must be untouched by the rejected patch.
	stored, err := svc.GetByID(ctx, dev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.TechStack) != 2 {
		t.Errorf("stored TechStack = %v after rejected patch", stored.TechStack)
	}
}

func TestDirectoryUpdate_NotFound(t *testing.T) {
	svc, _ := newTestDirectory(t)

	name := "Ghost"
	_, err := svc.Update(context.Background(), "missing", UpdateInput{Name: &name})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GET / DELETE TESTS
// =========================================================================

func TestDirectoryGetByID_NotFound(t *testing.T) {
	svc, _ := newTestDirectory(t)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDirectoryDelete(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	dev, err := svc.Create(ctx, validInput(), "user-1")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, dev.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(ctx, dev.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, dev.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
