package vm

import "slices"

// List is a collection-typed property. Every mutation replaces the backing
// slice, so slices handed to listeners or returned by Items are never
// modified afterwards.
type List[T any] struct {
	prop *Property[[]T]
}

func NewList[T any](name string) *List[T] {
	return &List[T]{prop: NewPropertyFunc[[]T](name, nil, func(a, b []T) bool {
		return len(a) == 0 && len(b) == 0
	})}
}

// NewListFunc is NewList with element equality: setting contents equal to
// the current ones under eq does not notify.
func NewListFunc[T any](name string, eq func(a, b T) bool) *List[T] {
	return &List[T]{prop: NewPropertyFunc[[]T](name, nil, func(a, b []T) bool {
		return slices.EqualFunc(a, b, eq)
	})}
}

func (l *List[T]) Name() string { return l.prop.Name() }

// Items returns a copy of the current elements.
func (l *List[T]) Items() []T { return slices.Clone(l.prop.Get()) }

func (l *List[T]) Len() int { return len(l.prop.Get()) }

// At returns the element at i and false when i is out of range.
func (l *List[T]) At(i int) (T, bool) {
	items := l.prop.Get()
	if i < 0 || i >= len(items) {
		var zero T
		return zero, false
	}
	return items[i], true
}

// Set replaces the contents. Replacing an empty list with another empty
// list does not notify, nor does an equal list when built by NewListFunc.
func (l *List[T]) Set(items []T) bool {
	return l.prop.Set(slices.Clone(items))
}

func (l *List[T]) Append(items ...T) bool {
	if len(items) == 0 {
		return false
	}
	next := make([]T, 0, l.Len()+len(items))
	next = append(next, l.prop.Get()...)
	next = append(next, items...)
	return l.prop.Set(next)
}

// RemoveFunc drops every element for which del returns true.
func (l *List[T]) RemoveFunc(del func(T) bool) bool {
	cur := l.prop.Get()
	next := slices.DeleteFunc(slices.Clone(cur), del)
	if len(next) == len(cur) {
		return false
	}
	return l.prop.Set(next)
}

// IndexFunc reports the position of the first element matching fn, or -1.
func (l *List[T]) IndexFunc(fn func(T) bool) int {
	return slices.IndexFunc(l.prop.Get(), fn)
}

func (l *List[T]) Clear() bool { return l.prop.Set(nil) }

func (l *List[T]) Reset() { l.Clear() }

func (l *List[T]) Subscribe(fn Listener[[]T]) func() { return l.prop.Subscribe(fn) }

func (l *List[T]) OnChange(fn func()) func() { return l.prop.OnChange(fn) }

func (l *List[T]) Listeners() int { return l.prop.Listeners() }
