package vm

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Observable is implemented by Property and List.
type Observable interface {
	OnChange(fn func()) func()
	Reset()
}

// State is the derived per-screen status.
type State struct {
	Dirty        bool
	Valid        bool
	Loading      bool
	ErrorMessage string
}

// Bindings exposes the core's own properties for a view to subscribe to.
type Bindings struct {
	Dirty        *Property[bool]
	Valid        *Property[bool]
	Loading      *Property[bool]
	ErrorMessage *Property[string]
}

type coreOptions struct {
	ctx    context.Context
	logger *slog.Logger
}

type Option func(*coreOptions)

// WithContext sets the parent of the context passed to work functions.
func WithContext(ctx context.Context) Option {
	return func(o *coreOptions) { o.ctx = ctx }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *coreOptions) { o.logger = l }
}

// Core aggregates dirty tracking, validation and async dispatch for one
// screen. Screens embed it and register their fields with Track.
type Core struct {
	dirty     *DirtyTracker
	validator *Validator
	runner    *Runner
	valid     *Property[bool]
	loading   *Property[bool]
	errMsg    *Property[string]
	log       *slog.Logger

	owned    []Observable
	unsubs   []func()
	revision uint64
	disposed bool
}

func NewCore(opts ...Option) *Core {
	o := coreOptions{ctx: context.Background(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Core{
		dirty:     NewDirtyTracker(),
		validator: NewValidator(),
		valid:     NewProperty("valid", true),
		loading:   NewProperty("loading", false),
		errMsg:    NewProperty("errorMessage", ""),
		log:       o.logger,
	}
	c.runner = NewRunner(o.ctx, c.loading, c.errMsg, o.logger)
	return c
}

// Track registers fields whose edits mark the screen dirty and trigger
// revalidation. Tracked fields are reset by Dispose.
func (c *Core) Track(props ...Observable) {
	for _, p := range props {
		c.owned = append(c.owned, p)
		c.unsubs = append(c.unsubs, p.OnChange(c.changed))
	}
}

// Own registers properties that Dispose resets but that do not affect the
// dirty flag, such as loaded lists or the current selection.
func (c *Core) Own(props ...Observable) {
	c.owned = append(c.owned, props...)
}

// Watch subscribes fn to p and removes the subscription on Dispose.
func (c *Core) Watch(p Observable, fn func()) {
	c.unsubs = append(c.unsubs, p.OnChange(fn))
}

// Rules appends validation rules in declaration order and revalidates.
func (c *Core) Rules(rules ...Rule) {
	c.validator.Register(rules...)
	c.Validate()
}

// Validate re-runs every rule and publishes the result. The message of the
// first failing rule replaces the current error message.
func (c *Core) Validate() ValidationResult {
	res := c.validator.Revalidate()
	c.valid.Set(res.Valid)
	c.errMsg.Set(res.Message)
	return res
}

// Init populates fields without marking the screen dirty. It revalidates
// and leaves the dirty flag clear.
func (c *Core) Init(populate func()) {
	if c.disposed {
		panic("vm: Init after Dispose")
	}
	c.dirty.Suspend(populate)
	c.Validate()
}

func (c *Core) changed() {
	c.revision++
	c.dirty.MarkDirty()
	c.Validate()
}

// Revision counts edits to tracked fields, including edits made during
// Init.
func (c *Core) Revision() uint64 { return c.revision }

func (c *Core) MarkClean() { c.dirty.MarkClean() }

func (c *Core) MarkDirty() { c.dirty.MarkDirty() }

func (c *Core) Dirty() bool { return c.dirty.Dirty() }

func (c *Core) Valid() bool { return c.valid.Get() }

func (c *Core) Loading() bool { return c.loading.Get() }

func (c *Core) ErrorMessage() string { return c.errMsg.Get() }

// SetErrorMessage shows a message that did not come from validation or an
// async failure, such as a confirmation refusal.
func (c *Core) SetErrorMessage(msg string) { c.errMsg.Set(msg) }

func (c *Core) ClearErrorMessage() { c.errMsg.Set("") }

func (c *Core) State() State {
	return State{
		Dirty:        c.Dirty(),
		Valid:        c.Valid(),
		Loading:      c.Loading(),
		ErrorMessage: c.ErrorMessage(),
	}
}

func (c *Core) Bindings() Bindings {
	return Bindings{
		Dirty:        c.dirty.Property(),
		Valid:        c.valid,
		Loading:      c.loading,
		ErrorMessage: c.errMsg,
	}
}

func (c *Core) Runner() *Runner { return c.runner }

func (c *Core) Logger() *slog.Logger { return c.log }

// Update routes completions dispatched by this core's runner. It reports
// whether msg was consumed.
func (c *Core) Update(msg tea.Msg) bool {
	return c.runner.Handle(msg)
}

func (c *Core) Disposed() bool { return c.disposed }

// Dispose drops every subscription the core made, resets owned properties
// and abandons in-flight work. It may be called more than once and before
// Init.
func (c *Core) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.runner.Dispose()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	for _, p := range c.owned {
		p.Reset()
	}
	c.dirty.MarkClean()
	c.valid.Reset()
	c.errMsg.Reset()
}
