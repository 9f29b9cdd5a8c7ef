package screens

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/service"
	"github.com/jask/projdesk/internal/vm"
)

// SubsystemEditor creates and edits one subsystem.
type SubsystemEditor struct {
	*vm.Editor[repository.Subsystem]

	Name                *vm.Property[string]
	Description         *vm.Property[string]
	Status              *vm.Property[string]
	ResponsibleMemberID *vm.Property[string]

	// Members are the choices for ResponsibleMemberID.
	Members *vm.List[repository.Member]

	members   MemberStore
	projectID string
}

func NewSubsystemEditor(subsystems SubsystemStore, members MemberStore, projectID string, opts ...vm.Option) *SubsystemEditor {
	e := &SubsystemEditor{
		Name:                vm.NewProperty("name", ""),
		Description:         vm.NewProperty("description", ""),
		Status:              vm.NewProperty("status", repository.StatusNotStarted),
		ResponsibleMemberID: vm.NewProperty("responsibleMemberId", ""),
		Members:             vm.NewListFunc("members", sameMember),
		members:             members,
		projectID:           projectID,
	}
	e.Editor = vm.NewEditor(vm.EditorConfig[repository.Subsystem]{
		Noun: "subsystem",
		Blank: func() repository.Subsystem {
			return repository.Subsystem{ProjectID: projectID, Status: repository.StatusNotStarted}
		},
		Fill: func(s repository.Subsystem) {
			e.Name.Set(s.Name)
			e.Description.Set(s.Description)
			e.Status.Set(s.Status)
			e.ResponsibleMemberID.Set(strVal(s.ResponsibleMemberID))
		},
		Build: func(s repository.Subsystem) repository.Subsystem {
			s.Name = e.Name.Get()
			s.Description = e.Description.Get()
			s.Status = e.Status.Get()
			s.ResponsibleMemberID = strPtr(e.ResponsibleMemberID.Get())
			return s
		},
		Save: subsystems.Save,
		Load: subsystems.Get,
	}, opts...)
	e.Track(e.Name, e.Description, e.Status, e.ResponsibleMemberID)
	e.Own(e.Members)
	e.Rules(
		vm.Required("name", e.Name),
		vm.MaxLength("name", e.Name, 80),
		vm.MaxLength("description", e.Description, 500),
		vm.OneOf("status", e.Status, service.Statuses...),
		vm.Check("responsible member is not on this team", e.memberKnown),
	)
	e.Watch(e.Members, func() { e.Validate() })
	return e
}

// memberKnown passes until the member options have been loaded.
func (e *SubsystemEditor) memberKnown() bool {
	id := e.ResponsibleMemberID.Get()
	if id == "" || e.Members.Len() == 0 {
		return true
	}
	return e.Members.IndexFunc(func(m repository.Member) bool { return m.ID == id }) >= 0
}

// LoadMembers fetches the project's team for the responsible member picker.
func (e *SubsystemEditor) LoadMembers() tea.Cmd {
	members, projectID := e.members, e.projectID
	cmd := vm.Run(e.Runner(), vm.Op{Slot: SlotOptions, Verb: "load", Noun: "members"},
		func(ctx context.Context) ([]repository.Member, error) { return members.List(ctx, projectID) },
		func(ms []repository.Member) { e.Members.Set(ms) }, nil)
	e.Validate()
	return cmd
}

// CycleStatus advances Status to the next value in display order.
func (e *SubsystemEditor) CycleStatus() {
	i := slices.Index(service.Statuses, e.Status.Get())
	e.Status.Set(service.Statuses[(i+1)%len(service.Statuses)])
}

// SubsystemRow is a subsystem with the figures the list shows next to it.
type SubsystemRow struct {
	repository.Subsystem
	Progress int
	Owner    string
}

// SubsystemList lists the subsystems of a project. Filter holds a status,
// Search matches names.
type SubsystemList struct {
	*vm.ListView[SubsystemRow]
}

func NewSubsystemList(subsystems SubsystemStore, members MemberStore, tasks TaskStore, projectID string, opts ...vm.Option) *SubsystemList {
	load := func(ctx context.Context, q vm.Query) ([]SubsystemRow, error) {
		subs, err := subsystems.List(ctx, projectID)
		if err != nil {
			return nil, err
		}
		progress, err := tasks.Progress(ctx, projectID)
		if err != nil {
			return nil, err
		}
		team, err := members.List(ctx, projectID)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(team))
		for _, m := range team {
			names[m.ID] = m.FullName()
		}
		var rows []SubsystemRow
		for _, s := range subs {
			if q.Filter != "" && s.Status != q.Filter {
				continue
			}
			if q.Search != "" && !containsFold(s.Name, q.Search) {
				continue
			}
			rows = append(rows, SubsystemRow{
				Subsystem: s,
				Progress:  progress[s.ID],
				Owner:     names[strVal(s.ResponsibleMemberID)],
			})
		}
		return rows, nil
	}
	return &SubsystemList{ListView: vm.NewListView(vm.ListConfig[SubsystemRow]{
		Noun:     "subsystems",
		ItemNoun: "subsystem",
		Key:      func(r SubsystemRow) string { return r.ID },
		Load:     load,
		Delete:   func(ctx context.Context, r SubsystemRow) error { return subsystems.Delete(ctx, r.ID) },
	}, opts...)}
}

// Changed reloads when subsystems, their tasks or their owners change.
func (l *SubsystemList) Changed(msg broadcast.ChangedMsg) tea.Cmd {
	return reloadOn(l.ListView, msg, broadcast.KindSubsystem, broadcast.KindTask, broadcast.KindMember)
}
