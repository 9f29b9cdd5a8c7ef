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

// Statuses lists the valid subsystem statuses in display order.
var Statuses = []string{
	repository.StatusNotStarted,
	repository.StatusInProgress,
	repository.StatusComplete,
	repository.StatusBlocked,
}

// SubsystemService owns subsystem reads and writes.
type SubsystemService struct {
	Subsystems *repository.SubsystemRepo
	Events     broadcast.Publisher
}

func (s *SubsystemService) List(ctx context.Context, projectID string) ([]repository.Subsystem, error) {
	out, err := s.Subsystems.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list subsystems: %w", err)
	}
	return out, nil
}

func (s *SubsystemService) Get(ctx context.Context, id string) (repository.Subsystem, error) {
	sub, err := s.Subsystems.Get(ctx, id)
	if err != nil {
		return repository.Subsystem{}, fmt.Errorf("get subsystem: %w", err)
	}
	if sub == nil {
		return repository.Subsystem{}, notFound("subsystem", id)
	}
	return *sub, nil
}

// Save inserts sub when it has no ID and updates it otherwise.
func (s *SubsystemService) Save(ctx context.Context, sub repository.Subsystem) (repository.Subsystem, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return repository.Subsystem{}, invalid("subsystem name is required")
	}
	if blank(sub.ProjectID) {
		return repository.Subsystem{}, invalid("subsystem needs a project")
	}
	if sub.Status == "" {
		sub.Status = repository.StatusNotStarted
	}
	if !slices.Contains(Statuses, sub.Status) {
		return repository.Subsystem{}, invalid("unknown status %q", sub.Status)
	}
	if sub.ResponsibleMemberID != nil && blank(*sub.ResponsibleMemberID) {
		sub.ResponsibleMemberID = nil
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if err := s.Subsystems.Upsert(ctx, sub); err != nil {
		return repository.Subsystem{}, fmt.Errorf("save subsystem: %w", err)
	}
	saved, err := s.Get(ctx, sub.ID)
	if err != nil {
		return repository.Subsystem{}, err
	}
	publish(s.Events, broadcast.KindSubsystem, sub.ID, broadcast.OpSaved)
	return saved, nil
}

func (s *SubsystemService) Delete(ctx context.Context, id string) error {
	ok, err := s.Subsystems.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete subsystem: %w", err)
	}
	if !ok {
		return notFound("subsystem", id)
	}
	publish(s.Events, broadcast.KindSubsystem, id, broadcast.OpDeleted)
	return nil
}
