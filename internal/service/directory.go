// Package service contains the business logic layer. Handlers parse
// HTTP and delegate here; this package validates, enforces rules, and
// orchestrates the repositories. It returns domain errors from
// apperror and never touches HTTP types.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/model"
	"github.com/sakif/dev-directory/internal/query"
	"github.com/sakif/dev-directory/internal/repository"
)

// Validation constants for developer records.
const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MaxAboutLength = 1000

	// JoiningDate is stored as a plain calendar date string.
	JoiningDateLayout = "2006-01-02"
)

// DirectoryService handles business logic for the developer directory.
type DirectoryService struct {
	repo   repository.DeveloperRepository
	logger *slog.Logger
}

func NewDirectoryService(repo repository.DeveloperRepository, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput carries the caller-supplied fields of a new developer.
// ID, ownership, and timestamps are assigned by the system.
type CreateInput struct {
	Name        string
	Role        string
	TechStack   []string
	Experience  int
	About       string
	JoiningDate string
}

// UpdateInput is a partial update. Nil fields are left unchanged;
// present fields replace the stored value and are validated against
// the same rules as Create.
type UpdateInput struct {
	Name        *string
	Role        *string
	TechStack   *[]string
	Experience  *int
	About       *string
	JoiningDate *string
}

// List returns one page of the directory after filtering and sorting.
// The repository hands over the full snapshot; the query engine does
// the rest in memory.
func (s *DirectoryService) List(ctx context.Context, params query.Params) (*query.Result, error) {
	devs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list developers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing developers: %w", err)
	}

	return query.Run(devs, params)
}

// GetByID retrieves a single developer.
// Returns apperror.ErrNotFound if no record has the given id.
func (s *DirectoryService) GetByID(ctx context.Context, id string) (*model.Developer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "developer ID is required")
	}

	return s.repo.GetByID(ctx, id)
}

// Create validates and saves a new developer, owned by the given user.
func (s *DirectoryService) Create(ctx context.Context, in CreateInput, createdBy string) (*model.Developer, error) {
	dev := &model.Developer{
		Name:        strings.TrimSpace(in.Name),
		Role:        model.Role(strings.TrimSpace(in.Role)),
		TechStack:   normalizeStack(in.TechStack),
		Experience:  in.Experience,
		About:       strings.TrimSpace(in.About),
		JoiningDate: strings.TrimSpace(in.JoiningDate),
		CreatedBy:   createdBy,
	}

	if err := validateDeveloper(dev); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, dev); err != nil {
		s.logger.Error("failed to create developer",
			slog.String("name", dev.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating developer: %w", err)
	}

	s.logger.Info("developer created",
		slog.String("id", dev.ID),
		slog.String("name", dev.Name),
		slog.String("createdBy", createdBy),
	)

	return dev, nil
}

// Update applies a partial update to an existing developer.
//
// Fetch then update: the stored record is loaded, present fields from
// the input replace the stored values, and the merged record is
// validated as a whole before being written back. A patch can never
// leave a record in a state that Create would have rejected.
func (s *DirectoryService) Update(ctx context.Context, id string, in UpdateInput) (*model.Developer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "developer ID is required")
	}

	dev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		dev.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		dev.Role = model.Role(strings.TrimSpace(*in.Role))
	}
	if in.TechStack != nil {
		dev.TechStack = normalizeStack(*in.TechStack)
	}
	if in.Experience != nil {
		dev.Experience = *in.Experience
	}
	if in.About != nil {
		dev.About = strings.TrimSpace(*in.About)
	}
	if in.JoiningDate != nil {
		dev.JoiningDate = strings.TrimSpace(*in.JoiningDate)
	}

	if err := validateDeveloper(dev); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, dev); err != nil {
		s.logger.Error("failed to update developer",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating developer: %w", err)
	}

	s.logger.Info("developer updated",
		slog.String("id", dev.ID),
		slog.String("name", dev.Name),
	)

	return dev, nil
}

// Delete removes a developer by id.
// Returns apperror.ErrNotFound if the record doesn't exist.
func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "developer ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("developer deleted", slog.String("id", id))
	return nil
}

// normalizeStack trims each entry and drops empty ones.
func normalizeStack(stack []string) []string {
	out := make([]string, 0, len(stack))
	for _, tech := range stack {
		if tech = strings.TrimSpace(tech); tech != "" {
			out = append(out, tech)
		}
	}
	return out
}

// validateDeveloper enforces the record rules shared by Create and
// Update. The record must already be trimmed and normalized.
func validateDeveloper(dev *model.Developer) error {
	if len(dev.Name) < MinNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be at least %d characters", MinNameLength))
	}
	if len(dev.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if !dev.Role.Valid() {
		return apperror.ValidationFailed("role",
			fmt.Sprintf("role must be one of %v", model.Roles))
	}
	if len(dev.TechStack) == 0 {
		return apperror.ValidationFailed("techStack", "at least one technology is required")
	}
	if dev.Experience < 0 {
		return apperror.ValidationFailed("experience", "experience cannot be negative")
	}
	if len(dev.About) > MaxAboutLength {
		return apperror.ValidationFailed("about",
			fmt.Sprintf("about must be %d characters or less", MaxAboutLength))
	}
	if dev.JoiningDate != "" {
		if _, err := time.Parse(JoiningDateLayout, dev.JoiningDate); err != nil {
			return apperror.ValidationFailed("joiningDate", "joining date must be in YYYY-MM-DD format")
		}
	}
	return nil
}
