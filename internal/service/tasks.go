package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
)

// Priorities lists the valid task priorities from lowest to highest.
var Priorities = []string{
	repository.PriorityLow,
	repository.PriorityMedium,
	repository.PriorityHigh,
	repository.PriorityCritical,
}

// TaskService owns task reads and writes.
type TaskService struct {
	Tasks  *repository.TaskRepo
	Events broadcast.Publisher
}

func (s *TaskService) List(ctx context.Context, f repository.TaskFilters) ([]repository.Task, error) {
	out, err := s.Tasks.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (repository.Task, error) {
	t, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return repository.Task{}, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return repository.Task{}, notFound("task", id)
	}
	return *t, nil
}

// Save inserts t when it has no ID and updates it otherwise. A task at 100%
// progress is completed.
func (s *TaskService) Save(ctx context.Context, t repository.Task) (repository.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return repository.Task{}, invalid("task title is required")
	}
	if blank(t.SubsystemID) || blank(t.ProjectID) {
		return repository.Task{}, invalid("task needs a project and a subsystem")
	}
	if t.Progress < 0 || t.Progress > 100 {
		return repository.Task{}, invalid("progress %d is out of range", t.Progress)
	}
	if t.Priority == "" {
		t.Priority = repository.PriorityMedium
	}
	if !slices.Contains(Priorities, t.Priority) {
		return repository.Task{}, invalid("unknown priority %q", t.Priority)
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return repository.Task{}, invalid("end date is before start date")
	}
	if t.Progress == 100 {
		t.Completed = true
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.Tasks.Upsert(ctx, t); err != nil {
		return repository.Task{}, fmt.Errorf("save task: %w", err)
	}
	saved, err := s.Get(ctx, t.ID)
	if err != nil {
		return repository.Task{}, err
	}
	publish(s.Events, broadcast.KindTask, t.ID, broadcast.OpSaved)
	return saved, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	ok, err := s.Tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !ok {
		return notFound("task", id)
	}
	publish(s.Events, broadcast.KindTask, id, broadcast.OpDeleted)
	return nil
}

// Progress averages task progress per subsystem of a project.
func (s *TaskService) Progress(ctx context.Context, projectID string) (map[string]int, error) {
	out, err := s.Tasks.ProgressBySubsystem(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("task progress: %w", err)
	}
	return out, nil
}
