package vm

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	SlotLoad   = "load"
	SlotSave   = "save"
	SlotList   = "list"
	SlotDelete = "delete"
)

// EditorConfig describes one entity form. Fill and Build run on the UI
// loop; Load and Save run off it and must not touch properties.
type EditorConfig[T any] struct {
	// Noun appears in failure messages, e.g. "Failed to save subsystem: ...".
	Noun string
	// Blank returns the entity used by InitNew. Nil means the zero value.
	Blank func() T
	// Fill copies an entity into the screen's properties.
	Fill func(entity T)
	// Build returns base updated with the current property values.
	Build func(base T) T
	Save  func(ctx context.Context, entity T) (T, error)
	// Load fetches an entity by key for Open. Optional.
	Load func(ctx context.Context, key string) (T, error)
}

// Editor is the generic create/edit form. Entity screens embed it and
// declare their fields with Track.
type Editor[T any] struct {
	*Core
	cfg    EditorConfig[T]
	entity T
	isNew  *Property[bool]

	SaveCommand   *Command
	RevertCommand *Command
}

func NewEditor[T any](cfg EditorConfig[T], opts ...Option) *Editor[T] {
	if cfg.Fill == nil || cfg.Build == nil || cfg.Save == nil {
		panic("vm: EditorConfig requires Fill, Build and Save")
	}
	e := &Editor[T]{
		Core:  NewCore(opts...),
		cfg:   cfg,
		isNew: NewProperty("isNew", true),
	}
	e.Own(e.isNew)
	e.SaveCommand = NewCommand(e.canSave, e.Save).WithReason(e.saveBlocked)
	e.RevertCommand = NewCommand(
		func() bool { return e.Dirty() && !e.Loading() },
		func() tea.Cmd { e.Revert(); return nil },
	)
	return e
}

// InitNew resets the form to a blank entity. A save still in flight for
// the previous entity is discarded.
func (e *Editor[T]) InitNew() {
	e.Runner().Supersede(SlotSave)
	var blank T
	if e.cfg.Blank != nil {
		blank = e.cfg.Blank()
	}
	e.entity = blank
	e.isNew.Set(true)
	e.Init(func() { e.cfg.Fill(blank) })
}

// InitExisting loads entity into the form. A save still in flight for
// the previous entity is discarded.
func (e *Editor[T]) InitExisting(entity T) {
	e.Runner().Supersede(SlotSave)
	e.entity = entity
	e.isNew.Set(false)
	e.Init(func() { e.cfg.Fill(entity) })
}

// Open fetches the entity identified by key and initialises the form with
// it. Opening again before the first fetch returns discards the earlier one.
func (e *Editor[T]) Open(key string) tea.Cmd {
	if e.cfg.Load == nil {
		panic("vm: Editor.Open without EditorConfig.Load")
	}
	load := e.cfg.Load
	return Run(e.Runner(), Op{Slot: SlotLoad, Verb: "load", Noun: e.cfg.Noun},
		func(ctx context.Context) (T, error) { return load(ctx, key) },
		e.InitExisting, nil)
}

// Save dispatches the backing save. Use SaveCommand from key handlers; Save
// itself does not check the guard.
func (e *Editor[T]) Save() tea.Cmd {
	candidate := e.cfg.Build(e.entity)
	rev := e.Revision()
	save := e.cfg.Save
	return Run(e.Runner(), Op{Slot: SlotSave, Verb: "save", Noun: e.cfg.Noun},
		func(ctx context.Context) (T, error) { return save(ctx, candidate) },
		func(saved T) { e.saved(saved, rev) }, nil)
}

// saved keeps edits made while the save was in flight: the form is only
// refreshed and marked clean when nothing changed since dispatch.
func (e *Editor[T]) saved(entity T, rev uint64) {
	e.entity = entity
	e.isNew.Set(false)
	if e.Revision() != rev {
		return
	}
	e.Init(func() { e.cfg.Fill(entity) })
}

// Revert discards edits and restores the last loaded or saved entity.
func (e *Editor[T]) Revert() {
	e.Init(func() { e.cfg.Fill(e.entity) })
}

func (e *Editor[T]) canSave() bool {
	return e.Valid() && e.Dirty() && !e.Loading() && !e.Disposed()
}

func (e *Editor[T]) saveBlocked() string {
	switch {
	case e.Loading():
		return "save already in progress"
	case !e.Valid():
		return e.ErrorMessage()
	case !e.Dirty():
		return "no changes to save"
	}
	return ""
}

// Dispose releases the held entity along with the core's state.
func (e *Editor[T]) Dispose() {
	e.Core.Dispose()
	var zero T
	e.entity = zero
}

func (e *Editor[T]) IsNew() bool { return e.isNew.Get() }

// Entity returns the last loaded or saved entity, not the pending edits.
func (e *Editor[T]) Entity() T { return e.entity }

// Draft returns the entity as it would be saved now.
func (e *Editor[T]) Draft() T { return e.cfg.Build(e.entity) }

func (e *Editor[T]) Noun() string { return e.cfg.Noun }
