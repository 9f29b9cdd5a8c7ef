// Package screens holds the per-screen ViewModels. Each one is a small
// configuration of the generic vm.Editor or vm.ListView: its fields, its
// validation rules and the service calls behind load, save and delete.
package screens

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/vm"
)

// SlotOptions loads the choices for a picker field.
const SlotOptions = "options"

type ProjectStore interface {
	List(ctx context.Context) ([]repository.Project, error)
	Get(ctx context.Context, id string) (repository.Project, error)
	Save(ctx context.Context, p repository.Project) (repository.Project, error)
	Delete(ctx context.Context, id string) error
}

type SubsystemStore interface {
	List(ctx context.Context, projectID string) ([]repository.Subsystem, error)
	Get(ctx context.Context, id string) (repository.Subsystem, error)
	Save(ctx context.Context, s repository.Subsystem) (repository.Subsystem, error)
	Delete(ctx context.Context, id string) error
}

type MemberStore interface {
	List(ctx context.Context, projectID string) ([]repository.Member, error)
	Get(ctx context.Context, id string) (repository.Member, error)
	Save(ctx context.Context, m repository.Member) (repository.Member, error)
	Delete(ctx context.Context, id string) error
}

type TaskStore interface {
	List(ctx context.Context, f repository.TaskFilters) ([]repository.Task, error)
	Get(ctx context.Context, id string) (repository.Task, error)
	Save(ctx context.Context, t repository.Task) (repository.Task, error)
	Delete(ctx context.Context, id string) error
	Progress(ctx context.Context, projectID string) (map[string]int, error)
}

func newDate(name string) *vm.Property[time.Time] {
	return vm.NewPropertyFunc(name, time.Time{}, func(a, b time.Time) bool { return a.Equal(b) })
}

func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func dateVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sameMember(a, b repository.Member) bool {
	return a.ID == b.ID && a.UpdatedAt.Equal(b.UpdatedAt)
}

func sameSubsystem(a, b repository.Subsystem) bool {
	return a.ID == b.ID && a.UpdatedAt.Equal(b.UpdatedAt)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

// reloadOn returns the list's load command when msg announces a change to
// one of kinds.
func reloadOn[T any](l *vm.ListView[T], msg broadcast.ChangedMsg, kinds ...string) tea.Cmd {
	if l.Disposed() {
		return nil
	}
	for _, k := range kinds {
		if msg.Kind == k {
			return l.Load()
		}
	}
	return nil
}
