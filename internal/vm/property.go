package vm

import "fmt"

// Listener receives the previous and current value of a Property.
type Listener[T any] func(old, new T)

type listenerEntry[T any] struct {
	id int
	fn Listener[T]
}

// Property is a single observable value cell. It is owned by one
// ViewModel and only touched on the UI loop.
type Property[T any] struct {
	name      string
	value     T
	equal     func(a, b T) bool
	listeners []listenerEntry[T]
	nextID    int
	notifying bool
}

// NewProperty returns a property compared with ==.
func NewProperty[T comparable](name string, initial T) *Property[T] {
	return NewPropertyFunc(name, initial, func(a, b T) bool { return a == b })
}

// NewPropertyFunc returns a property that uses equal to suppress redundant
// notifications.
func NewPropertyFunc[T any](name string, initial T, equal func(a, b T) bool) *Property[T] {
	if equal == nil {
		panic("vm: NewPropertyFunc requires an equality function")
	}
	return &Property[T]{name: name, value: initial, equal: equal}
}

func (p *Property[T]) Name() string { return p.name }

func (p *Property[T]) Get() T { return p.value }

// Set stores v and notifies listeners in subscription order. It reports
// whether the value changed. Setting a property from one of its own
// listeners panics.
func (p *Property[T]) Set(v T) bool {
	if p.notifying {
		panic(fmt.Sprintf("vm: reentrant Set on property %q", p.name))
	}
	if p.equal(p.value, v) {
		return false
	}
	old := p.value
	p.value = v
	p.notify(old, v)
	return true
}

// Update applies fn to the current value and stores the result.
func (p *Property[T]) Update(fn func(T) T) bool {
	return p.Set(fn(p.value))
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (p *Property[T]) Subscribe(fn Listener[T]) func() {
	if fn == nil {
		panic("vm: nil listener")
	}
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listenerEntry[T]{id: id, fn: fn})
	return func() { p.unsubscribe(id) }
}

// OnChange registers a listener that ignores the old and new values.
func (p *Property[T]) OnChange(fn func()) func() {
	return p.Subscribe(func(T, T) { fn() })
}

// Reset restores the zero value, notifying listeners when that is a change.
func (p *Property[T]) Reset() {
	var zero T
	p.Set(zero)
}

func (p *Property[T]) Listeners() int { return len(p.listeners) }

func (p *Property[T]) unsubscribe(id int) {
	for i, l := range p.listeners {
		if l.id == id {
			p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
			return
		}
	}
}

func (p *Property[T]) notify(old, v T) {
	p.notifying = true
	defer func() { p.notifying = false }()
	// Listeners may unsubscribe while we iterate.
	snapshot := append([]listenerEntry[T](nil), p.listeners...)
	for _, l := range snapshot {
		l.fn(old, v)
	}
}
