// Package vmtest drives ViewModels in tests the way the bubbletea runtime
// does: commands run on their own goroutines and their messages are handed
// back to the test goroutine, which plays the UI loop.
package vmtest

import (
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTimeout bounds every wait for a message.
const DefaultTimeout = 2 * time.Second

type Driver struct {
	t        testing.TB
	msgs     chan tea.Msg
	inflight atomic.Int64
	Timeout  time.Duration
}

func New(t testing.TB) *Driver {
	return &Driver{t: t, msgs: make(chan tea.Msg, 64), Timeout: DefaultTimeout}
}

// Go runs cmd in the background. Batches are expanded and nil commands or
// nil messages are ignored, as bubbletea does.
func (d *Driver) Go(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Add(-1)
		d.route(cmd())
	}()
}

func (d *Driver) route(msg tea.Msg) {
	switch m := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range m {
			d.Go(c)
		}
	default:
		d.msgs <- msg
	}
}

// Next waits for the next message produced by a running command.
func (d *Driver) Next() tea.Msg {
	d.t.Helper()
	select {
	case msg := <-d.msgs:
		return msg
	case <-time.After(d.Timeout):
		d.t.Fatalf("vmtest: no message within %s", d.Timeout)
		return nil
	}
}

// Deliver waits for one message and hands it to update, running any
// command update returns.
func (d *Driver) Deliver(update func(tea.Msg) tea.Cmd) tea.Msg {
	d.t.Helper()
	msg := d.Next()
	d.Go(update(msg))
	return msg
}

// Pump delivers messages until no command is running and none is queued.
func (d *Driver) Pump(update func(tea.Msg) tea.Cmd) {
	d.t.Helper()
	deadline := time.Now().Add(d.Timeout)
	for d.inflight.Load() > 0 || len(d.msgs) > 0 {
		if time.Now().After(deadline) {
			d.t.Fatalf("vmtest: commands still running after %s", d.Timeout)
		}
		select {
		case msg := <-d.msgs:
			d.Go(update(msg))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Pending reports how many commands are still running.
func (d *Driver) Pending() int { return int(d.inflight.Load()) }

// Exec runs cmd synchronously and returns every message it produced,
// expanding batches depth-first.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, Exec(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// Handled adapts a ViewModel Update that reports consumption into the
// signature Pump expects.
func Handled(update func(tea.Msg) bool) func(tea.Msg) tea.Cmd {
	return func(msg tea.Msg) tea.Cmd {
		update(msg)
		return nil
	}
}
