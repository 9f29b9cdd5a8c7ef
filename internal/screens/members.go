package screens

import (
	"context"
	"regexp"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/vm"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// MemberEditor creates and edits a team member.
type MemberEditor struct {
	*vm.Editor[repository.Member]

	Username  *vm.Property[string]
	FirstName *vm.Property[string]
	LastName  *vm.Property[string]
	Email     *vm.Property[string]
	Leader    *vm.Property[bool]
}

func NewMemberEditor(members MemberStore, projectID string, opts ...vm.Option) *MemberEditor {
	e := &MemberEditor{
		Username:  vm.NewProperty("username", ""),
		FirstName: vm.NewProperty("firstName", ""),
		LastName:  vm.NewProperty("lastName", ""),
		Email:     vm.NewProperty("email", ""),
		Leader:    vm.NewProperty("leader", false),
	}
	e.Editor = vm.NewEditor(vm.EditorConfig[repository.Member]{
		Noun:  "member",
		Blank: func() repository.Member { return repository.Member{ProjectID: projectID} },
		Fill: func(m repository.Member) {
			e.Username.Set(m.Username)
			e.FirstName.Set(m.FirstName)
			e.LastName.Set(m.LastName)
			e.Email.Set(m.Email)
			e.Leader.Set(m.Leader)
		},
		Build: func(m repository.Member) repository.Member {
			m.Username = e.Username.Get()
			m.FirstName = e.FirstName.Get()
			m.LastName = e.LastName.Get()
			m.Email = e.Email.Get()
			m.Leader = e.Leader.Get()
			return m
		},
		Save: members.Save,
		Load: members.Get,
	}, opts...)
	e.Track(e.Username, e.FirstName, e.LastName, e.Email, e.Leader)
	e.Rules(
		vm.Required("username", e.Username),
		vm.Matches("username", e.Username, usernamePattern, "username may only use a-z, 0-9 and _ . -"),
		vm.Required("first name", e.FirstName),
		vm.Matches("email", e.Email, emailPattern, ""),
	)
	return e
}

// MemberList lists a project's team; Search matches names and usernames.
type MemberList struct {
	*vm.ListView[repository.Member]
}

func NewMemberList(members MemberStore, projectID string, opts ...vm.Option) *MemberList {
	return &MemberList{ListView: vm.NewListView(vm.ListConfig[repository.Member]{
		Noun:     "members",
		ItemNoun: "member",
		Key:      func(m repository.Member) string { return m.ID },
		Load: func(ctx context.Context, q vm.Query) ([]repository.Member, error) {
			all, err := members.List(ctx, projectID)
			if err != nil || q.Search == "" {
				return all, err
			}
			var out []repository.Member
			for _, m := range all {
				if containsFold(m.FullName(), q.Search) || containsFold(m.Username, q.Search) {
					out = append(out, m)
				}
			}
			return out, nil
		},
		Delete: func(ctx context.Context, m repository.Member) error { return members.Delete(ctx, m.ID) },
	}, opts...)}
}

func (l *MemberList) Changed(msg broadcast.ChangedMsg) tea.Cmd {
	return reloadOn(l.ListView, msg, broadcast.KindMember)
}
