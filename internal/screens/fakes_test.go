package screens

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/service"
	"github.com/jask/projdesk/internal/vm"
)

func quiet() vm.Option {
	return vm.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeSubsystems is an in-memory SubsystemStore. delay and saveErr shape
// Save; listGate, when set, hands out one release channel per List call.
type fakeSubsystems struct {
	mu       sync.Mutex
	rows     map[string]repository.Subsystem
	nextID   int
	delay    time.Duration
	saveErr  error
	saves    int
	listGate chan chan []repository.Subsystem
}

func newFakeSubsystems(rows ...repository.Subsystem) *fakeSubsystems {
	f := &fakeSubsystems{rows: map[string]repository.Subsystem{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeSubsystems) List(ctx context.Context, projectID string) ([]repository.Subsystem, error) {
	if f.listGate != nil {
		reply := make(chan []repository.Subsystem)
		f.listGate <- reply
		select {
		case rows := <-reply:
			return rows, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Subsystem
	for _, r := range f.rows {
		if projectID == "" || r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSubsystems) Get(_ context.Context, id string) (repository.Subsystem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.Subsystem{}, fmt.Errorf("subsystem %s: %w", id, service.ErrNotFound)
	}
	return r, nil
}

func (f *fakeSubsystems) Save(_ context.Context, s repository.Subsystem) (repository.Subsystem, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return repository.Subsystem{}, f.saveErr
	}
	if s.ID == "" {
		f.nextID++
		s.ID = fmt.Sprintf("sub-%d", f.nextID)
	}
	f.rows[s.ID] = s
	return s, nil
}

func (f *fakeSubsystems) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("subsystem %s: %w", id, service.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

type fakeMembers struct {
	rows []repository.Member
	err  error
}

func (f *fakeMembers) List(context.Context, string) ([]repository.Member, error) {
	return f.rows, f.err
}

func (f *fakeMembers) Get(_ context.Context, id string) (repository.Member, error) {
	for _, m := range f.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return repository.Member{}, service.ErrNotFound
}

func (f *fakeMembers) Save(_ context.Context, m repository.Member) (repository.Member, error) {
	if m.ID == "" {
		m.ID = fmt.Sprintf("m-%d", len(f.rows)+1)
	}
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeMembers) Delete(context.Context, string) error { return nil }

type fakeTasks struct {
	mu       sync.Mutex
	rows     []repository.Task
	progress map[string]int
	filters  []repository.TaskFilters
	gate     map[string]chan struct{}
}

func (f *fakeTasks) List(ctx context.Context, filt repository.TaskFilters) ([]repository.Task, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filt)
	gate := f.gate[filt.SubsystemID]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Task
	for _, t := range f.rows {
		if filt.SubsystemID == "" || t.SubsystemID == filt.SubsystemID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

func (f *fakeTasks) Get(_ context.Context, id string) (repository.Task, error) {
	for _, t := range f.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return repository.Task{}, service.ErrNotFound
}

func (f *fakeTasks) Save(_ context.Context, t repository.Task) (repository.Task, error) {
	if t.ID == "" {
		t.ID = fmt.Sprintf("t-%d", len(f.rows)+1)
	}
	f.rows = append(f.rows, t)
	return t, nil
}

func (f *fakeTasks) Delete(context.Context, string) error { return nil }

func (f *fakeTasks) Progress(context.Context, string) (map[string]int, error) {
	return f.progress, nil
}

type fakeProjects struct {
	rows []repository.Project
}

func (f *fakeProjects) List(context.Context) ([]repository.Project, error) { return f.rows, nil }

func (f *fakeProjects) Get(_ context.Context, id string) (repository.Project, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return repository.Project{}, service.ErrNotFound
}

func (f *fakeProjects) Save(_ context.Context, p repository.Project) (repository.Project, error) {
	if p.ID == "" {
		p.ID = "p-new"
	}
	return p, nil
}

func (f *fakeProjects) Delete(context.Context, string) error { return nil }
