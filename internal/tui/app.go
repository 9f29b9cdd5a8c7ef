// Package tui is the bubbletea host. It owns no screen state of its own:
// every keystroke is turned into a property edit or a command on one of the
// screens ViewModels, and every message is offered to them first.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/config"
	"github.com/jask/projdesk/internal/screens"
	"github.com/jask/projdesk/internal/vm"
)

// Resetter wipes project data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Services are the backends the screens talk to.
type Services struct {
	Subsystems  screens.SubsystemStore
	Members     screens.MemberStore
	Tasks       screens.TaskStore
	Maintenance Resetter
}

type appView string

const (
	viewSubsystems appView = "subsystems"
	viewTasks      appView = "tasks"
	viewEditor     appView = "editor"
)

type statusFadeMsg struct{ gen int }

type resetDoneMsg struct{ err error }

// App ties the screens together.
type App struct {
	ctx       context.Context
	cfg       config.Config
	svc       Services
	projectID string
	hub       *broadcast.Hub
	log       *slog.Logger
	opts      []vm.Option

	keys     KeyMap
	styles   styles
	help     help.Model
	spinner  spinner.Model
	spinning bool

	view       appView
	subsystems *screens.SubsystemList
	tasks      *screens.TaskList
	form       *subsystemForm
	palette    *palette
	registry   *vm.CommandRegistry

	status    string
	statusErr bool
	statusGen int
	width     int
}

// New builds the App. hub may be nil, in which case lists only refresh on
// their own writes.
func New(ctx context.Context, cfg config.Config, projectID string, svc Services, hub *broadcast.Hub, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []vm.Option{vm.WithContext(ctx), vm.WithLogger(logger)}
	a := &App{
		ctx:        ctx,
		cfg:        cfg,
		svc:        svc,
		projectID:  projectID,
		hub:        hub,
		log:        logger,
		opts:       opts,
		keys:       DefaultKeyMap,
		styles:     defaultStyles(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		view:       viewSubsystems,
		subsystems: screens.NewSubsystemList(svc.Subsystems, svc.Members, svc.Tasks, projectID, opts...),
		tasks:      screens.NewTaskList(svc.Tasks, projectID, opts...),
	}
	a.registry = vm.NewCommandRegistry(a.baseCommands()...)
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.subsystems.Load(), a.tasks.Load()}
	if a.hub != nil {
		cmds = append(cmds, broadcast.Listen(a.hub.Subscribe()))
	}
	return tea.Batch(append(cmds, a.spin())...)
}

func (a *App) baseCommands() []vm.NamedCommand {
	hasSelection := func() bool { return a.subsystems.SelectedIndex() >= 0 }
	noSelection := func() string {
		if hasSelection() {
			return ""
		}
		return "no subsystem selected"
	}
	return []vm.NamedCommand{
		{
			ID: "subsystem.new", Name: "New Subsystem", Description: "create a subsystem",
			Scopes: []string{string(viewSubsystems), string(viewTasks)}, Command: vm.Always(a.newSubsystem),
		},
		{
			ID: "subsystem.edit", Name: "Edit Subsystem", Description: "open the selected subsystem",
			Scopes:  []string{string(viewSubsystems)},
			Command: vm.NewCommand(hasSelection, a.editSelected).WithReason(noSelection),
		},
		{
			ID: "subsystem.delete", Name: "Delete Subsystem", Description: "delete the selected subsystem and its tasks",
			Scopes: []string{string(viewSubsystems)}, Command: a.subsystems.DeleteCommand,
		},
		{
			ID: "subsystem.tasks", Name: "Show Subsystem Tasks", Description: "tasks of the selected subsystem",
			Scopes:  []string{string(viewSubsystems)},
			Command: vm.NewCommand(hasSelection, a.showSelectedTasks).WithReason(noSelection),
		},
		{
			ID: "subsystems.reload", Name: "Reload Subsystems", Description: "fetch subsystems again",
			Scopes: []string{string(viewSubsystems)}, Command: a.subsystems.LoadCommand,
		},
		{
			ID: "tasks.all", Name: "Show All Tasks", Description: "tasks of every subsystem",
			Scopes: []string{string(viewSubsystems), string(viewTasks)}, Command: vm.Always(a.showAllTasks),
		},
		{
			ID: "tasks.delete", Name: "Delete Task", Description: "delete the selected task",
			Scopes: []string{string(viewTasks)}, Command: a.tasks.DeleteCommand,
		},
		{
			ID: "db.reset", Name: "Reset Database", Description: "wipe every project and start over",
			Scopes: []string{"*"},
			Command: vm.NewCommand(func() bool { return a.svc.Maintenance != nil }, a.reset).
				WithReason(func() string {
					if a.svc.Maintenance == nil {
						return "maintenance is not configured"
					}
					return ""
				}),
		},
		{
			ID: "app.quit", Name: "Quit", Description: "leave projdesk",
			Scopes: []string{"*"}, Command: vm.Always(func() tea.Cmd { return tea.Quit }),
		},
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.spin())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		return nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case vm.StatusMsg:
		return a.setStatus(m.Text, m.IsErr)
	case logRecordMsg:
		return a.setStatus(m.Summary, m.Level >= slog.LevelError)
	case statusFadeMsg:
		if m.gen == a.statusGen {
			a.status, a.statusErr = "", false
		}
		return nil
	case broadcast.ChangedMsg:
		return a.changed(m)
	case resetDoneMsg:
		if m.err != nil {
			return a.setStatus("reset failed: "+m.err.Error(), true)
		}
		return tea.Batch(a.setStatus("database reset", false), a.subsystems.Load(), a.tasks.Load())
	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return cmd
	}
	return a.complete(msg)
}

// complete offers an async completion to each screen.
func (a *App) complete(msg tea.Msg) tea.Cmd {
	if a.form != nil {
		ed := a.form.ed
		saving := ed.Runner().Busy(vm.SlotSave)
		if ed.Update(msg) {
			a.form.sync()
			if saving && !ed.Runner().Busy(vm.SlotSave) && ed.ErrorMessage() == "" && !ed.IsNew() {
				return a.setStatus("Saved subsystem "+ed.Entity().Name, false)
			}
			return nil
		}
	}
	if a.subsystems.Update(msg) {
		return nil
	}
	a.tasks.Update(msg)
	return nil
}

func (a *App) changed(m broadcast.ChangedMsg) tea.Cmd {
	a.log.Debug("entity changed", "kind", m.Kind, "id", m.ID, "op", m.Op)
	cmds := []tea.Cmd{a.subsystems.Changed(m), a.tasks.Changed(m)}
	if m.Sub != nil {
		cmds = append(cmds, broadcast.Listen(m.Sub))
	}
	return tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	if key.Matches(m, a.keys.ForceQuit) {
		return tea.Quit
	}
	if a.palette != nil {
		cmd, done := a.palette.update(m, a.keys)
		if done {
			a.palette = nil
		}
		return cmd
	}
	if key.Matches(m, a.keys.Palette) && (a.view != viewEditor || m.String() != ":") {
		var cmd tea.Cmd
		a.palette, cmd = newPalette(a.registry, string(a.view))
		return cmd
	}
	switch a.view {
	case viewEditor:
		return a.handleEditorKey(m)
	case viewTasks:
		return a.handleTaskKey(m)
	}
	return a.handleSubsystemKey(m)
}

func (a *App) handleSubsystemKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Quit):
		return tea.Quit
	case key.Matches(m, a.keys.Up):
		moveSelection(a.subsystems.ListView, -1)
	case key.Matches(m, a.keys.Down):
		moveSelection(a.subsystems.ListView, 1)
	case key.Matches(m, a.keys.New):
		return a.registry.Execute("subsystem.new")
	case key.Matches(m, a.keys.Edit):
		return a.registry.Execute("subsystem.edit")
	case key.Matches(m, a.keys.Delete):
		return a.registry.Execute("subsystem.delete")
	case key.Matches(m, a.keys.Reload):
		return a.registry.Execute("subsystems.reload")
	case key.Matches(m, a.keys.Tasks):
		return a.registry.Execute("subsystem.tasks")
	case key.Matches(m, a.keys.All):
		return a.registry.Execute("tasks.all")
	}
	return nil
}

func (a *App) handleTaskKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Quit):
		return tea.Quit
	case key.Matches(m, a.keys.Back):
		a.view = viewSubsystems
	case key.Matches(m, a.keys.Up):
		moveSelection(a.tasks.ListView, -1)
	case key.Matches(m, a.keys.Down):
		moveSelection(a.tasks.ListView, 1)
	case key.Matches(m, a.keys.Delete):
		return a.registry.Execute("tasks.delete")
	case key.Matches(m, a.keys.All):
		return a.registry.Execute("tasks.all")
	case key.Matches(m, a.keys.Reload):
		return a.tasks.LoadCommand.Execute()
	case key.Matches(m, a.keys.New):
		return a.registry.Execute("subsystem.new")
	}
	return nil
}

func (a *App) handleEditorKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Save):
		return a.registry.Execute("editor.save")
	case key.Matches(m, a.keys.Revert):
		cmd := a.registry.Execute("editor.revert")
		a.form.sync()
		return cmd
	case key.Matches(m, a.keys.Back):
		return a.closeEditor()
	}
	return a.form.update(m)
}

func moveSelection[T any](l *vm.ListView[T], delta int) {
	i := l.SelectedIndex()
	if i < 0 {
		l.SelectIndex(0)
		return
	}
	l.SelectIndex(i + delta)
}

func (a *App) newSubsystem() tea.Cmd {
	ed := a.openEditor()
	ed.InitNew()
	a.form.sync()
	return tea.Batch(ed.LoadMembers(), a.form.focusCmd())
}

func (a *App) editSelected() tea.Cmd {
	row, ok := a.subsystems.SelectedItem()
	if !ok {
		return nil
	}
	ed := a.openEditor()
	return tea.Batch(ed.Open(row.ID), ed.LoadMembers(), a.form.focusCmd())
}

func (a *App) openEditor() *screens.SubsystemEditor {
	if a.form != nil {
		a.form.ed.Dispose()
	}
	ed := screens.NewSubsystemEditor(a.svc.Subsystems, a.svc.Members, a.projectID, a.opts...)
	a.form = newSubsystemForm(ed, a.keys)
	a.view = viewEditor
	a.registry.Register(vm.NamedCommand{
		ID: "editor.save", Name: "Save Subsystem", Description: "write the form",
		Scopes: []string{string(viewEditor)}, Command: ed.SaveCommand,
	})
	a.registry.Register(vm.NamedCommand{
		ID: "editor.revert", Name: "Revert Changes", Description: "discard edits",
		Scopes: []string{string(viewEditor)}, Command: ed.RevertCommand,
	})
	a.registry.Register(vm.NamedCommand{
		ID: "editor.close", Name: "Close Editor", Description: "back to the subsystem list",
		Scopes: []string{string(viewEditor)}, Command: vm.Always(a.closeEditor),
	})
	return ed
}

// closeEditor disposes the editor, discarding unsaved edits, and refreshes
// the list behind it.
func (a *App) closeEditor() tea.Cmd {
	if a.form == nil {
		return nil
	}
	if a.form.ed.Dirty() {
		a.log.Info("discarded unsaved subsystem edits", "subsystem", a.form.ed.Entity().ID)
	}
	a.form.ed.Dispose()
	a.form = nil
	a.registry.Unregister("editor.save", "editor.revert", "editor.close")
	a.view = viewSubsystems
	return a.subsystems.Load()
}

func (a *App) showSelectedTasks() tea.Cmd {
	row, ok := a.subsystems.SelectedItem()
	if !ok {
		return nil
	}
	a.view = viewTasks
	return a.tasks.FilterSubsystem(row.ID)
}

func (a *App) showAllTasks() tea.Cmd {
	a.view = viewTasks
	return a.tasks.FilterSubsystem("")
}

func (a *App) reset() tea.Cmd {
	svc, ctx := a.svc.Maintenance, a.ctx
	return func() tea.Msg {
		return resetDoneMsg{err: svc.Reset(ctx)}
	}
}

func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.status, a.statusErr = text, isErr
	a.statusGen++
	if a.cfg.UI.StatusFade <= 0 || text == "" {
		return nil
	}
	gen := a.statusGen
	return tea.Tick(a.cfg.UI.StatusFade, func(time.Time) tea.Msg { return statusFadeMsg{gen: gen} })
}

func (a *App) busy() bool {
	if a.form != nil && a.form.ed.Loading() {
		return true
	}
	return a.subsystems.Loading() || a.tasks.Loading()
}

// spin starts the spinner when something went in flight.
func (a *App) spin() tea.Cmd {
	if a.spinning || !a.busy() {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// Close releases every screen and the broadcast hub.
func (a *App) Close() {
	if a.form != nil {
		a.form.ed.Dispose()
		a.form = nil
	}
	a.subsystems.Dispose()
	a.tasks.Dispose()
	if a.hub != nil {
		a.hub.Close()
	}
}

func (a *App) View() string {
	var body string
	var bindings []key.Binding
	switch a.view {
	case viewEditor:
		body = a.form.view(a.styles)
		bindings = a.keys.formHelp()
	case viewTasks:
		body = a.renderTasks()
		bindings = a.keys.taskHelp()
	default:
		body = a.renderSubsystems()
		bindings = a.keys.subsystemHelp()
	}
	if a.palette != nil {
		body += "\n\n" + a.palette.view(a.styles)
	}
	footer := a.help.ShortHelpView(bindings)
	if a.busy() {
		footer = a.spinner.View() + " " + footer
	}
	if a.status != "" {
		style := a.styles.status
		if a.statusErr {
			style = a.styles.err
		}
		footer = style.Render(a.status) + "\n" + footer
	}
	return body + "\n\n" + footer
}

func (a *App) renderSubsystems() string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Subsystems"))
	if f := a.subsystems.Filter.Get(); f != "" {
		b.WriteString(a.styles.muted.Render("  status: " + statusLabel(f)))
	}
	b.WriteString("\n")
	rows := a.subsystems.Items.Items()
	if len(rows) == 0 && !a.subsystems.Loading() {
		b.WriteString(a.styles.muted.Render("No subsystems yet. Press n to add one.") + "\n")
	}
	sel := a.subsystems.Selected.Get()
	for _, r := range rows {
		marker := "  "
		if r.ID == sel {
			marker = a.styles.selected.Render("▶ ")
		}
		owner := r.Owner
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(&b, "%s%-24s %-12s %3d%%  %s\n", marker, r.Name, statusLabel(r.Status), r.Progress, owner)
	}
	if msg := a.subsystems.ErrorMessage(); msg != "" {
		b.WriteString(a.styles.err.Render(msg) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderTasks() string {
	var b strings.Builder
	title := "All tasks"
	if id := a.tasks.Filter.Get(); id != "" {
		title = "Tasks"
		for _, r := range a.subsystems.Items.Items() {
			if r.ID == id {
				title = "Tasks · " + r.Name
			}
		}
	}
	b.WriteString(a.styles.title.Render(title) + "\n")
	sel := a.tasks.Selected.Get()
	for _, t := range a.tasks.Items.Items() {
		marker := "  "
		if t.ID == sel {
			marker = a.styles.selected.Render("▶ ")
		}
		due := ""
		if t.EndDate != nil {
			due = t.EndDate.In(a.cfg.Location()).Format(a.cfg.UI.DateFormat)
		}
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %-32s %-8s %3d%%  %s\n", marker, check, t.Title, t.Priority, t.Progress, due)
	}
	if msg := a.tasks.ErrorMessage(); msg != "" {
		b.WriteString(a.styles.err.Render(msg) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

