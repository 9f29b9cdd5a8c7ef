// Package broadcast fans entity change notifications out to every open
// screen in the process.
package broadcast

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Kinds of entity a change can refer to.
const (
	KindProject   = "project"
	KindSubsystem = "subsystem"
	KindMember    = "member"
	KindTask      = "task"
)

// Ops describe what happened to the entity.
const (
	OpSaved   = "saved"
	OpDeleted = "deleted"
)

// DefaultBuffer is the per-subscriber queue length used by Subscribe.
const DefaultBuffer = 16

// Event announces a committed write.
type Event struct {
	Kind string
	ID   string
	Op   string
}

// Publisher is the write side of a Hub.
type Publisher interface {
	Publish(Event)
}

// Hub delivers published events to subscribers without blocking the
// publisher. A subscriber whose queue is full misses the event and the hub
// counts it as dropped.
//
// Thread-safe: all methods may be called concurrently.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	buffer  int
	dropped uint64
	closed  bool
}

func NewHub() *Hub {
	return NewHubSize(DefaultBuffer)
}

// NewHubSize creates a hub whose subscriber queues hold size events.
func NewHubSize(size int) *Hub {
	if size < 1 {
		size = 1
	}
	return &Hub{subs: map[*Subscription]struct{}{}, buffer: size}
}

// Subscription receives the events of the kinds it asked for; no kinds
// means every kind.
type Subscription struct {
	hub   *Hub
	kinds map[string]bool
	ch    chan Event
	once  sync.Once
}

// Subscribe registers a new subscription. On a closed hub the returned
// subscription is already closed.
func (h *Hub) Subscribe(kinds ...string) *Subscription {
	s := &Subscription{hub: h, ch: make(chan Event, h.buffer)}
	if len(kinds) > 0 {
		s.kinds = make(map[string]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for s := range h.subs {
		if !s.wants(e.Kind) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// queue was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscription. Publishing afterwards is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}

func (s *Subscription) wants(kind string) bool {
	return s.kinds == nil || s.kinds[kind]
}

// Events is closed when the subscription or its hub is closed.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs, s)
	s.once.Do(func() { close(s.ch) })
}

// ChangedMsg carries an event into the bubbletea loop.
type ChangedMsg struct {
	Event
	Sub *Subscription
}

// Listen waits for the next event on sub. The receiver handles the
// ChangedMsg and calls Listen again to keep listening; once sub is closed
// the command yields nil.
func Listen(sub *Subscription) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sub.ch
		if !ok {
			return nil
		}
		return ChangedMsg{Event: e, Sub: sub}
	}
}
