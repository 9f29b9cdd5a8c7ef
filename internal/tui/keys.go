package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the host. List bindings apply on the
// subsystem and task views; form bindings while the editor is open.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reload key.Binding
	Tasks  key.Binding
	All    key.Binding
	Back   key.Binding

	NextField key.Binding
	PrevField key.Binding
	Cycle     key.Binding
	Save      key.Binding
	Revert    key.Binding

	Palette   key.Binding
	Run       key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("enter", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Tasks: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tasks"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all tasks"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "prev field"),
	),
	Cycle: key.NewBinding(
		key.WithKeys(" ", "right", "left"),
		key.WithHelp("space/←/→", "change"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	Revert: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("C-z", "revert"),
	),
	Palette: key.NewBinding(
		key.WithKeys(":", "ctrl+p"),
		key.WithHelp(":", "commands"),
	),
	Run: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func (k KeyMap) subsystemHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Delete, k.Tasks, k.Reload, k.Palette, k.Quit}
}

func (k KeyMap) taskHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.All, k.Reload, k.Back, k.Palette, k.Quit}
}

func (k KeyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.Cycle, k.Save, k.Revert, k.Back}
}
