package vm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Op names one asynchronous operation. Slot groups operations that
// supersede each other; Verb and Noun build the failure message.
type Op struct {
	Slot string
	Verb string
	Noun string
}

func (o Op) failure(err error) string {
	return fmt.Sprintf("Failed to %s %s: %s", o.Verb, o.Noun, err.Error())
}

// Completion carries the outcome of a dispatched operation back to the UI
// loop. Err == nil means success and Value holds the result.
type Completion struct {
	owner *Runner
	Slot  string
	Gen   uint64
	Value any
	Err   error
}

func (c Completion) Succeeded() bool { return c.Err == nil }

type pendingOp struct {
	gen     uint64
	op      Op
	deliver func(value any, err error)
}

// Runner dispatches work off the UI loop and applies completions in
// last-dispatch-wins order per slot.
type Runner struct {
	ctx      context.Context
	cancel   context.CancelFunc
	loading  *Property[bool]
	errMsg   *Property[string]
	gens     map[string]uint64
	inflight map[string]pendingOp
	log      *slog.Logger
	disposed bool
}

func NewRunner(parent context.Context, loading *Property[bool], errMsg *Property[string], logger *slog.Logger) *Runner {
	if parent == nil {
		parent = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Runner{
		ctx:      ctx,
		cancel:   cancel,
		loading:  loading,
		errMsg:   errMsg,
		gens:     map[string]uint64{},
		inflight: map[string]pendingOp{},
		log:      logger,
	}
}

// Run marks the runner loading, clears the error message and returns a
// tea.Cmd that executes work. The completion must be routed back through
// Handle on the UI loop. Exactly one of onSuccess or onError runs, and only
// if no newer operation was dispatched on the same slot meanwhile. Either
// callback may be nil. After Dispose, Run returns nil.
func Run[T any](r *Runner, op Op, work func(context.Context) (T, error), onSuccess func(T), onError func(error)) tea.Cmd {
	if work == nil {
		panic("vm: Run requires a work function")
	}
	if r.disposed {
		return nil
	}
	r.errMsg.Set("")
	r.gens[op.Slot]++
	gen := r.gens[op.Slot]
	r.inflight[op.Slot] = pendingOp{
		gen: gen,
		op:  op,
		deliver: func(value any, err error) {
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			if onSuccess != nil {
				v, _ := value.(T)
				onSuccess(v)
			}
		},
	}
	r.loading.Set(true)

	ctx := r.ctx
	return func() tea.Msg {
		v, err := protect(ctx, work)
		return Completion{owner: r, Slot: op.Slot, Gen: gen, Value: v, Err: err}
	}
}

// Handle applies msg if it is a Completion dispatched by this runner and
// reports whether the message belonged to it. Stale completions are
// dropped silently.
func (r *Runner) Handle(msg tea.Msg) bool {
	c, ok := msg.(Completion)
	if !ok || c.owner != r {
		return false
	}
	p, live := r.inflight[c.Slot]
	if r.disposed || !live || p.gen != c.Gen {
		r.log.Debug("discarding stale completion", "slot", c.Slot, "generation", c.Gen, "current", r.gens[c.Slot])
		return true
	}
	delete(r.inflight, c.Slot)
	r.loading.Set(len(r.inflight) > 0)
	if c.Err != nil {
		r.log.Warn("async operation failed", "slot", c.Slot, "verb", p.op.Verb, "noun", p.op.Noun, "err", c.Err)
		r.errMsg.Set(p.op.failure(c.Err))
	}
	p.deliver(c.Value, c.Err)
	return true
}

// Supersede invalidates any in-flight operation on slot without waiting
// for it. The background work keeps running; its result is discarded.
func (r *Runner) Supersede(slot string) {
	r.gens[slot]++
	if _, ok := r.inflight[slot]; !ok {
		return
	}
	delete(r.inflight, slot)
	r.loading.Set(len(r.inflight) > 0)
}

func (r *Runner) Generation(slot string) uint64 { return r.gens[slot] }

func (r *Runner) Busy(slot string) bool {
	_, ok := r.inflight[slot]
	return ok
}

func (r *Runner) Loading() bool { return r.loading.Get() }

// Context is cancelled by Dispose. Work functions should honour it.
func (r *Runner) Context() context.Context { return r.ctx }

// Dispose cancels the runner context and invalidates every slot. Further
// Run calls return nil. Safe to call repeatedly.
func (r *Runner) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.cancel()
	for slot := range r.inflight {
		r.gens[slot]++
	}
	clear(r.inflight)
	r.loading.Set(false)
}

func protect[T any](ctx context.Context, work func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return work(ctx)
}

// ErrNoResult is reported when a callback-style operation signals failure
// without an error value.
var ErrNoResult = errors.New("operation failed without an error")

// FromCallback adapts a service operation that reports through success and
// error callbacks into a work function for Run. Only the first callback
// invocation counts.
func FromCallback[T any](op func(ctx context.Context, onSuccess func(T), onError func(error))) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		type result struct {
			v   T
			err error
		}
		ch := make(chan result, 1)
		var once sync.Once
		op(ctx,
			func(v T) { once.Do(func() { ch <- result{v: v} }) },
			func(err error) {
				if err == nil {
					err = ErrNoResult
				}
				once.Do(func() { ch <- result{err: err} })
			},
		)
		select {
		case res := <-ch:
			return res.v, res.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
