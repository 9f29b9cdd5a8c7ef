package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/screens"
	"github.com/jask/projdesk/internal/vm"
)

const (
	fieldName = iota
	fieldDescription
	fieldStatus
	fieldOwner
	fieldCount
)

// subsystemForm binds a SubsystemEditor to text inputs. Inputs write
// through to the editor's properties on every keystroke; sync copies the
// properties back after the editor loads or saves.
type subsystemForm struct {
	ed    *screens.SubsystemEditor
	name  textinput.Model
	desc  textinput.Model
	focus int
	keys  KeyMap
}

func newSubsystemForm(ed *screens.SubsystemEditor, keys KeyMap) *subsystemForm {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Drive Motors"
	name.CharLimit = 80
	desc := textinput.New()
	desc.Prompt = ""
	desc.Placeholder = "what this subsystem covers"
	desc.CharLimit = 500
	name.Cursor.SetMode(cursor.CursorStatic)
	desc.Cursor.SetMode(cursor.CursorStatic)
	f := &subsystemForm{ed: ed, name: name, desc: desc, keys: keys}
	f.sync()
	return f
}

func (f *subsystemForm) sync() {
	f.name.SetValue(f.ed.Name.Get())
	f.desc.SetValue(f.ed.Description.Get())
}

func (f *subsystemForm) focusCmd() tea.Cmd {
	f.name.Blur()
	f.desc.Blur()
	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldDescription:
		return f.desc.Focus()
	}
	return nil
}

func (f *subsystemForm) move(delta int) tea.Cmd {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.focusCmd()
}

// update handles keys that belong to the focused field.
func (f *subsystemForm) update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, f.keys.NextField):
		return f.move(1)
	case key.Matches(msg, f.keys.PrevField):
		return f.move(-1)
	}
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
		f.ed.Name.Set(f.name.Value())
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
		f.ed.Description.Set(f.desc.Value())
	case fieldStatus:
		if key.Matches(msg, f.keys.Cycle) {
			f.ed.CycleStatus()
		}
	case fieldOwner:
		if key.Matches(msg, f.keys.Cycle) {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			f.cycleOwner(delta)
		}
	}
	return cmd
}

// cycleOwner steps through "nobody" followed by every loaded member.
func (f *subsystemForm) cycleOwner(delta int) {
	ids := []string{""}
	for _, m := range f.ed.Members.Items() {
		ids = append(ids, m.ID)
	}
	cur := 0
	for i, id := range ids {
		if id == f.ed.ResponsibleMemberID.Get() {
			cur = i
		}
	}
	f.ed.ResponsibleMemberID.Set(ids[(cur+delta+len(ids))%len(ids)])
}

func (f *subsystemForm) ownerLabel() string {
	id := f.ed.ResponsibleMemberID.Get()
	if id == "" {
		return "nobody"
	}
	for _, m := range f.ed.Members.Items() {
		if m.ID == id {
			return m.FullName()
		}
	}
	return id
}

func (f *subsystemForm) view(st styles) string {
	title := "New subsystem"
	if !f.ed.IsNew() {
		title = "Edit " + f.ed.Entity().Name
	}
	rows := []struct {
		label string
		value string
	}{
		{"Name", f.name.View()},
		{"Description", f.desc.View()},
		{"Status", statusLabel(f.ed.Status.Get())},
		{"Owner", f.ownerLabel()},
	}
	var b strings.Builder
	b.WriteString(st.title.Render(title))
	b.WriteString("\n")
	for i, r := range rows {
		marker := "  "
		if i == f.focus {
			marker = st.selected.Render("▶ ")
		}
		fmt.Fprintf(&b, "%s%-12s %s\n", marker, r.label, r.value)
	}
	b.WriteString(stateLine(st, f.ed.State(), f.ed.SaveCommand))
	return b.String()
}

func statusLabel(s string) string {
	switch s {
	case repository.StatusNotStarted:
		return "not started"
	case repository.StatusInProgress:
		return "in progress"
	}
	return s
}

func stateLine(st styles, s vm.State, save *vm.Command) string {
	var parts []string
	if s.Dirty {
		parts = append(parts, "modified")
	}
	if s.Loading {
		parts = append(parts, "working")
	}
	if r := save.Reason(); r != "" && r != s.ErrorMessage {
		parts = append(parts, st.muted.Render("save: "+r))
	}
	line := strings.Join(parts, " · ")
	if s.ErrorMessage != "" {
		line += "\n" + st.err.Render(s.ErrorMessage)
	}
	return line
}
