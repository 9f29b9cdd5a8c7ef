package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
)

// ProjectService owns project reads and writes.
type ProjectService struct {
	Projects *repository.ProjectRepo
	Events   broadcast.Publisher
}

func (s *ProjectService) List(ctx context.Context) ([]repository.Project, error) {
	out, err := s.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (repository.Project, error) {
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return repository.Project{}, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return repository.Project{}, notFound("project", id)
	}
	return *p, nil
}

// Save inserts p when it has no ID and updates it otherwise.
func (s *ProjectService) Save(ctx context.Context, p repository.Project) (repository.Project, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return repository.Project{}, invalid("project name is required")
	}
	if p.StartDate.IsZero() {
		return repository.Project{}, invalid("project start date is required")
	}
	if p.GoalEndDate != nil && p.GoalEndDate.Before(p.StartDate) {
		return repository.Project{}, invalid("goal end date is before start date")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.Projects.Upsert(ctx, p); err != nil {
		return repository.Project{}, fmt.Errorf("save project: %w", err)
	}
	saved, err := s.Get(ctx, p.ID)
	if err != nil {
		return repository.Project{}, err
	}
	publish(s.Events, broadcast.KindProject, p.ID, broadcast.OpSaved)
	return saved, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	ok, err := s.Projects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !ok {
		return notFound("project", id)
	}
	publish(s.Events, broadcast.KindProject, id, broadcast.OpDeleted)
	return nil
}
