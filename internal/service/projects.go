package service

import (
	"context"
	"errors"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/repository"
)

// ProjectRepository defines persistence for shared projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, in models.NewProject) (*models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context, page models.Page) ([]models.Project, int, error)
	UpdateProject(ctx context.Context, id int64, p models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// ProjectService implements project operations. Authorization of writes is
// left to the router's role guard.
type ProjectService struct {
	repo ProjectRepository
}

// NewProjectService constructs a ProjectService.
func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func projectErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Project not found")
	}
	return apperr.Internal(err)
}

// Create stores a new project.
func (s *ProjectService) Create(ctx context.Context, in models.NewProject) (*models.Project, error) {
	p, err := s.repo.CreateProject(ctx, in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, projectErr(err)
	}
	return p, nil
}

// List returns a page of projects and the total count.
func (s *ProjectService) List(ctx context.Context, page models.Page) ([]models.Project, int, error) {
	list, total, err := s.repo.ListProjects(ctx, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// Update applies a non-empty partial update to a project.
func (s *ProjectService) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Empty() {
		return nil, apperr.Validation("At least one field must be provided")
	}
	p, err := s.repo.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, projectErr(err)
	}
	return p, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return projectErr(err)
	}
	return nil
}
