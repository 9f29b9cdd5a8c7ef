package screens

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/service"
	"github.com/jask/projdesk/internal/vm"
)

// TaskEditor creates and edits a task. Reaching 100% progress completes
// the task.
type TaskEditor struct {
	*vm.Editor[repository.Task]

	Title       *vm.Property[string]
	Description *vm.Property[string]
	SubsystemID *vm.Property[string]
	Priority    *vm.Property[string]
	Progress    *vm.Property[int]
	StartDate   *vm.Property[time.Time]
	EndDate     *vm.Property[time.Time]
	Completed   *vm.Property[bool]

	// Subsystems are the choices for SubsystemID.
	Subsystems *vm.List[repository.Subsystem]

	subsystems SubsystemStore
	projectID  string
}

func NewTaskEditor(tasks TaskStore, subsystems SubsystemStore, projectID string, opts ...vm.Option) *TaskEditor {
	e := &TaskEditor{
		Title:       vm.NewProperty("title", ""),
		Description: vm.NewProperty("description", ""),
		SubsystemID: vm.NewProperty("subsystemId", ""),
		Priority:    vm.NewProperty("priority", repository.PriorityMedium),
		Progress:    vm.NewProperty("progress", 0),
		StartDate:   newDate("startDate"),
		EndDate:     newDate("endDate"),
		Completed:   vm.NewProperty("completed", false),
		Subsystems:  vm.NewListFunc("subsystems", sameSubsystem),
		subsystems:  subsystems,
		projectID:   projectID,
	}
	e.Editor = vm.NewEditor(vm.EditorConfig[repository.Task]{
		Noun: "task",
		Blank: func() repository.Task {
			return repository.Task{ProjectID: projectID, Priority: repository.PriorityMedium}
		},
		Fill: func(t repository.Task) {
			e.Title.Set(t.Title)
			e.Description.Set(t.Description)
			e.SubsystemID.Set(t.SubsystemID)
			e.Priority.Set(t.Priority)
			e.Progress.Set(t.Progress)
			e.StartDate.Set(dateVal(t.StartDate))
			e.EndDate.Set(dateVal(t.EndDate))
			e.Completed.Set(t.Completed)
		},
		Build: func(t repository.Task) repository.Task {
			t.Title = e.Title.Get()
			t.Description = e.Description.Get()
			t.SubsystemID = e.SubsystemID.Get()
			t.Priority = e.Priority.Get()
			t.Progress = e.Progress.Get()
			t.StartDate = datePtr(e.StartDate.Get())
			t.EndDate = datePtr(e.EndDate.Get())
			t.Completed = e.Completed.Get()
			return t
		},
		Save: tasks.Save,
		Load: tasks.Get,
	}, opts...)
	e.Track(e.Title, e.Description, e.SubsystemID, e.Priority, e.Progress, e.StartDate, e.EndDate, e.Completed)
	e.Own(e.Subsystems)
	e.Watch(e.Progress, func() {
		if e.Progress.Get() == 100 {
			e.Completed.Set(true)
		}
	})
	e.Rules(
		vm.Required("title", e.Title),
		vm.MaxLength("title", e.Title, 120),
		vm.Selected("subsystem", e.SubsystemID),
		vm.IntRange("progress", e.Progress, 0, 100),
		vm.OneOf("priority", e.Priority, service.Priorities...),
		vm.NotBefore("end date", e.EndDate, e.StartDate, "start date"),
	)
	return e
}

// InitNewIn starts a new task in the given subsystem.
func (e *TaskEditor) InitNewIn(subsystemID string) {
	e.InitNew()
	e.Init(func() { e.SubsystemID.Set(subsystemID) })
}

// LoadSubsystems fetches the choices for the subsystem picker.
func (e *TaskEditor) LoadSubsystems() tea.Cmd {
	subsystems, projectID := e.subsystems, e.projectID
	cmd := vm.Run(e.Runner(), vm.Op{Slot: SlotOptions, Verb: "load", Noun: "subsystems"},
		func(ctx context.Context) ([]repository.Subsystem, error) { return subsystems.List(ctx, projectID) },
		func(subs []repository.Subsystem) { e.Subsystems.Set(subs) }, nil)
	e.Validate()
	return cmd
}

// Nudge moves Progress by delta, clamped to 0..100.
func (e *TaskEditor) Nudge(delta int) {
	e.Progress.Update(func(p int) int { return max(0, min(100, p+delta)) })
}

// TaskList lists a project's tasks. Filter holds a subsystem ID, Search
// matches titles.
type TaskList struct {
	*vm.ListView[repository.Task]
}

func NewTaskList(tasks TaskStore, projectID string, opts ...vm.Option) *TaskList {
	return &TaskList{ListView: vm.NewListView(vm.ListConfig[repository.Task]{
		Noun:     "tasks",
		ItemNoun: "task",
		Key:      func(t repository.Task) string { return t.ID },
		Load: func(ctx context.Context, q vm.Query) ([]repository.Task, error) {
			return tasks.List(ctx, repository.TaskFilters{ProjectID: projectID, SubsystemID: q.Filter, Search: q.Search})
		},
		Delete: func(ctx context.Context, t repository.Task) error { return tasks.Delete(ctx, t.ID) },
	}, opts...)}
}

// FilterSubsystem shows only the tasks of subsystem id; empty shows all.
// The latest filter wins when loads overlap.
func (l *TaskList) FilterSubsystem(id string) tea.Cmd {
	return l.SetFilter(id)
}

func (l *TaskList) Changed(msg broadcast.ChangedMsg) tea.Cmd {
	return reloadOn(l.ListView, msg, broadcast.KindTask, broadcast.KindSubsystem)
}
