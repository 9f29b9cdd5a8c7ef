package screens

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/vm"
)

// ProjectEditor creates and edits a project and its schedule.
type ProjectEditor struct {
	*vm.Editor[repository.Project]

	Name         *vm.Property[string]
	Description  *vm.Property[string]
	StartDate    *vm.Property[time.Time]
	GoalEndDate  *vm.Property[time.Time]
	HardDeadline *vm.Property[time.Time]
}

// NewProjectEditor builds the editor. now supplies the start date of a new
// project.
func NewProjectEditor(projects ProjectStore, now func() time.Time, opts ...vm.Option) *ProjectEditor {
	e := &ProjectEditor{
		Name:         vm.NewProperty("name", ""),
		Description:  vm.NewProperty("description", ""),
		StartDate:    newDate("startDate"),
		GoalEndDate:  newDate("goalEndDate"),
		HardDeadline: newDate("hardDeadline"),
	}
	e.Editor = vm.NewEditor(vm.EditorConfig[repository.Project]{
		Noun:  "project",
		Blank: func() repository.Project { return repository.Project{StartDate: now()} },
		Fill: func(p repository.Project) {
			e.Name.Set(p.Name)
			e.Description.Set(p.Description)
			e.StartDate.Set(p.StartDate)
			e.GoalEndDate.Set(dateVal(p.GoalEndDate))
			e.HardDeadline.Set(dateVal(p.HardDeadline))
		},
		Build: func(p repository.Project) repository.Project {
			p.Name = e.Name.Get()
			p.Description = e.Description.Get()
			p.StartDate = e.StartDate.Get()
			p.GoalEndDate = datePtr(e.GoalEndDate.Get())
			p.HardDeadline = datePtr(e.HardDeadline.Get())
			return p
		},
		Save: projects.Save,
		Load: projects.Get,
	}, opts...)
	e.Track(e.Name, e.Description, e.StartDate, e.GoalEndDate, e.HardDeadline)
	e.Rules(
		vm.Required("name", e.Name),
		vm.MaxLength("name", e.Name, 80),
		vm.RequiredTime("start date", e.StartDate),
		vm.NotBefore("goal end date", e.GoalEndDate, e.StartDate, "start date"),
		vm.NotBefore("hard deadline", e.HardDeadline, e.GoalEndDate, "goal end date"),
	)
	return e
}

// ProjectList lists every project; Search matches names.
type ProjectList struct {
	*vm.ListView[repository.Project]
}

func NewProjectList(projects ProjectStore, opts ...vm.Option) *ProjectList {
	return &ProjectList{ListView: vm.NewListView(vm.ListConfig[repository.Project]{
		Noun:     "projects",
		ItemNoun: "project",
		Key:      func(p repository.Project) string { return p.ID },
		Load: func(ctx context.Context, q vm.Query) ([]repository.Project, error) {
			all, err := projects.List(ctx)
			if err != nil || q.Search == "" {
				return all, err
			}
			var out []repository.Project
			for _, p := range all {
				if containsFold(p.Name, q.Search) {
					out = append(out, p)
				}
			}
			return out, nil
		},
		Delete: func(ctx context.Context, p repository.Project) error { return projects.Delete(ctx, p.ID) },
	}, opts...)}
}

func (l *ProjectList) Changed(msg broadcast.ChangedMsg) tea.Cmd {
	return reloadOn(l.ListView, msg, broadcast.KindProject)
}
