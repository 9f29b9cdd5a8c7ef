package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/vm"
)

const paletteRows = 8

// palette is the ":" command prompt over a CommandRegistry.
type palette struct {
	input   textinput.Model
	reg     *vm.CommandRegistry
	scope   string
	results []vm.CommandResult
	cursor  int
}

func newPalette(reg *vm.CommandRegistry, scope string) (*palette, tea.Cmd) {
	in := textinput.New()
	in.Prompt = ": "
	in.Placeholder = "command"
	in.Cursor.SetMode(cursor.CursorStatic)
	p := &palette{input: in, reg: reg, scope: scope}
	p.refresh()
	return p, p.input.Focus()
}

func (p *palette) refresh() {
	p.results = p.reg.Search(p.input.Value(), p.scope)
	if p.cursor >= len(p.results) {
		p.cursor = max(0, len(p.results)-1)
	}
}

// update returns done when the palette should close, along with the
// command to run.
func (p *palette) update(msg tea.KeyMsg, keys KeyMap) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Back):
		return nil, true
	case key.Matches(msg, keys.Run):
		if len(p.results) == 0 {
			return vm.StatusCmd("No matching command"), true
		}
		return p.reg.Execute(p.results[p.cursor].CommandID), true
	case msg.String() == "up" || msg.String() == "ctrl+k":
		if p.cursor > 0 {
			p.cursor--
		}
		return nil, false
	case msg.String() == "down" || msg.String() == "ctrl+j":
		if p.cursor < len(p.results)-1 {
			p.cursor++
		}
		return nil, false
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.cursor = 0
	p.refresh()
	return cmd, false
}

func (p *palette) view(st styles) string {
	var b strings.Builder
	b.WriteString(p.input.View())
	for i, r := range p.results {
		if i == paletteRows {
			fmt.Fprintf(&b, "\n  %s", st.muted.Render(fmt.Sprintf("+%d more", len(p.results)-paletteRows)))
			break
		}
		line := fmt.Sprintf("%-24s %s", r.Name, st.muted.Render(r.Desc))
		if r.Disabled {
			line = st.disabled.Render(r.Name) + " " + st.muted.Render(r.Reason)
		}
		marker := "  "
		if i == p.cursor {
			marker = st.selected.Render("▶ ")
		}
		b.WriteString("\n" + marker + line)
	}
	return b.String()
}
