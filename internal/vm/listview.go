package vm

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Query is the list request captured on the UI loop at dispatch time.
type Query struct {
	Filter string
	Search string
}

// ListConfig describes one list screen. Load and Delete run off the UI
// loop.
type ListConfig[T any] struct {
	// Noun is the plural used by load failures, ItemNoun the singular used
	// by delete failures.
	Noun     string
	ItemNoun string
	Key      func(T) string
	Load     func(ctx context.Context, q Query) ([]T, error)
	// Delete is optional; without it DeleteCommand is never executable.
	Delete func(ctx context.Context, item T) error
}

// ListView holds a loaded collection with a single selection.
type ListView[T any] struct {
	*Core
	cfg ListConfig[T]

	Items    *List[T]
	Selected *Property[string]
	Filter   *Property[string]
	Search   *Property[string]

	LoadCommand   *Command
	DeleteCommand *Command
}

func NewListView[T any](cfg ListConfig[T], opts ...Option) *ListView[T] {
	if cfg.Key == nil || cfg.Load == nil {
		panic("vm: ListConfig requires Key and Load")
	}
	if cfg.ItemNoun == "" {
		cfg.ItemNoun = cfg.Noun
	}
	l := &ListView[T]{
		Core:     NewCore(opts...),
		cfg:      cfg,
		Items:    NewList[T](cfg.Noun),
		Selected: NewProperty("selected", ""),
		Filter:   NewProperty("filter", ""),
		Search:   NewProperty("search", ""),
	}
	l.Own(l.Items, l.Selected, l.Filter, l.Search)
	l.LoadCommand = NewCommand(func() bool { return !l.Disposed() }, l.Load)
	l.DeleteCommand = NewCommand(l.canDelete, l.DeleteSelected).WithReason(func() string {
		switch {
		case l.cfg.Delete == nil:
			return "delete is not supported here"
		case l.Selected.Get() == "":
			return "nothing selected"
		case l.Runner().Busy(SlotDelete):
			return "delete already in progress"
		}
		return ""
	})
	return l
}

// Load fetches the list. A newer Load supersedes an older one still in
// flight.
func (l *ListView[T]) Load() tea.Cmd {
	q := Query{Filter: l.Filter.Get(), Search: l.Search.Get()}
	load := l.cfg.Load
	return Run(l.Runner(), Op{Slot: SlotList, Verb: "load", Noun: l.cfg.Noun},
		func(ctx context.Context) ([]T, error) { return load(ctx, q) },
		l.loaded, nil)
}

func (l *ListView[T]) loaded(items []T) {
	l.Items.Set(items)
	if sel := l.Selected.Get(); sel != "" && l.indexOf(sel) < 0 {
		l.Selected.Set("")
	}
}

// SetFilter changes the filter and reloads when it differs.
func (l *ListView[T]) SetFilter(filter string) tea.Cmd {
	if !l.Filter.Set(filter) {
		return nil
	}
	return l.Load()
}

func (l *ListView[T]) SetSearch(search string) tea.Cmd {
	if !l.Search.Set(search) {
		return nil
	}
	return l.Load()
}

// Select marks the item with key as selected. Unknown keys clear the
// selection.
func (l *ListView[T]) Select(key string) {
	if l.indexOf(key) < 0 {
		key = ""
	}
	l.Selected.Set(key)
}

// SelectIndex selects the item at i, clamped to the list bounds.
func (l *ListView[T]) SelectIndex(i int) {
	n := l.Items.Len()
	if n == 0 {
		l.Selected.Set("")
		return
	}
	i = max(0, min(i, n-1))
	item, _ := l.Items.At(i)
	l.Selected.Set(l.cfg.Key(item))
}

// SelectedIndex returns the position of the selection, or -1.
func (l *ListView[T]) SelectedIndex() int {
	sel := l.Selected.Get()
	if sel == "" {
		return -1
	}
	return l.indexOf(sel)
}

func (l *ListView[T]) SelectedItem() (T, bool) {
	return l.Items.At(l.SelectedIndex())
}

// DeleteSelected removes the selected item through the backend and drops
// it from Items on success.
func (l *ListView[T]) DeleteSelected() tea.Cmd {
	item, ok := l.SelectedItem()
	if !ok || l.cfg.Delete == nil {
		return nil
	}
	key := l.cfg.Key(item)
	del := l.cfg.Delete
	return Run(l.Runner(), Op{Slot: SlotDelete, Verb: "delete", Noun: l.cfg.ItemNoun},
		func(ctx context.Context) (struct{}, error) { return struct{}{}, del(ctx, item) },
		func(struct{}) {
			l.Items.RemoveFunc(func(t T) bool { return l.cfg.Key(t) == key })
			if l.Selected.Get() == key {
				l.Selected.Set("")
			}
		}, nil)
}

func (l *ListView[T]) canDelete() bool {
	return l.cfg.Delete != nil && l.Selected.Get() != "" && !l.Runner().Busy(SlotDelete) && !l.Disposed()
}

func (l *ListView[T]) indexOf(key string) int {
	return l.Items.IndexFunc(func(t T) bool { return l.cfg.Key(t) == key })
}
