package vm

import tea "github.com/charmbracelet/bubbletea"

// Command is an action guarded by a predicate over the owning ViewModel's
// current state. The predicate is evaluated on every query.
type Command struct {
	canExecute func() bool
	action     func() tea.Cmd
	reason     func() string
}

// NewCommand panics on nil arguments; a command without a guard or action
// is a wiring mistake.
func NewCommand(canExecute func() bool, action func() tea.Cmd) *Command {
	if canExecute == nil || action == nil {
		panic("vm: NewCommand requires a predicate and an action")
	}
	return &Command{canExecute: canExecute, action: action}
}

// Always returns a command whose predicate is constant true.
func Always(action func() tea.Cmd) *Command {
	return NewCommand(func() bool { return true }, action)
}

// WithReason attaches an explanation shown when the command is disabled.
func (c *Command) WithReason(fn func() string) *Command {
	c.reason = fn
	return c
}

func (c *Command) Executable() bool { return c.canExecute() }

// Reason returns why the command is disabled, or "" when it is executable.
func (c *Command) Reason() string {
	if c.Executable() {
		return ""
	}
	if c.reason != nil {
		if r := c.reason(); r != "" {
			return r
		}
	}
	return "command is disabled"
}

// Execute runs the action when the guard holds at call time. Key events
// can arrive after state changed, so the guard is checked again here.
func (c *Command) Execute() tea.Cmd {
	if !c.canExecute() {
		return nil
	}
	return c.action()
}
