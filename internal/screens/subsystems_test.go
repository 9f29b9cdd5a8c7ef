package screens

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/vm"
	"github.com/jask/projdesk/internal/vm/vmtest"
)

func newSubsystemEditor(store *fakeSubsystems) *SubsystemEditor {
	return NewSubsystemEditor(store, &fakeMembers{}, "p1", quiet())
}

func TestSubsystemEditorNewIsInvalid(t *testing.T) {
	e := newSubsystemEditor(newFakeSubsystems())
	e.InitNew()

	require.True(t, e.IsNew())
	require.False(t, e.Valid())
	require.Contains(t, e.ErrorMessage(), "name")
	require.False(t, e.SaveCommand.Executable())
}

func TestSubsystemEditorNameMakesValid(t *testing.T) {
	e := newSubsystemEditor(newFakeSubsystems())
	e.InitNew()
	e.Name.Set("Drive Motors")

	require.True(t, e.Valid())
	require.Empty(t, e.ErrorMessage())
	require.True(t, e.Dirty())
	require.True(t, e.SaveCommand.Executable())
}

func TestSubsystemEditorSaveSucceedsAsync(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems()
	store.delay = 50 * time.Millisecond
	e := newSubsystemEditor(store)
	e.InitNew()
	e.Name.Set("Drive Motors")

	d.Go(e.SaveCommand.Execute())
	require.True(t, e.Loading())
	time.Sleep(25 * time.Millisecond)
	require.True(t, e.Loading(), "still loading while the save is in flight")

	d.Pump(vmtest.Handled(e.Update))
	require.False(t, e.Loading())
	require.False(t, e.Dirty())
	require.False(t, e.IsNew())
	require.Equal(t, "sub-1", e.Entity().ID)
	require.Equal(t, "p1", e.Entity().ProjectID)
	require.Equal(t, repository.StatusNotStarted, e.Entity().Status)
}

func TestSubsystemEditorSaveFails(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems()
	store.saveErr = errors.New("Save error")
	e := newSubsystemEditor(store)
	e.InitNew()
	e.Name.Set("Drive Motors")

	d.Go(e.SaveCommand.Execute())
	d.Pump(vmtest.Handled(e.Update))

	require.False(t, e.Loading())
	require.Contains(t, e.ErrorMessage(), "Failed to save")
	require.True(t, e.Dirty())
	require.True(t, e.IsNew())
}

func TestSubsystemEditorRuleOrder(t *testing.T) {
	e := newSubsystemEditor(newFakeSubsystems())
	e.InitExisting(repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Arm", Status: repository.StatusInProgress})
	require.True(t, e.Valid())

	e.Status.Set("sideways")
	require.Equal(t, "status must be one of not_started, in_progress, complete, blocked", e.ErrorMessage())

	e.Name.Set(string(make([]rune, 81)))
	require.Equal(t, "name must be at most 80 characters", e.ErrorMessage(), "the earlier rule wins")

	e.Name.Set("")
	require.Equal(t, "name is required", e.ErrorMessage())
}

func TestSubsystemEditorResponsibleMember(t *testing.T) {
	d := vmtest.New(t)
	members := &fakeMembers{rows: []repository.Member{{ID: "m1", FirstName: "Ada"}}}
	e := NewSubsystemEditor(newFakeSubsystems(), members, "p1", quiet())
	owner := "m2"
	e.InitExisting(repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Arm", Status: repository.StatusNotStarted, ResponsibleMemberID: &owner})
	require.True(t, e.Valid(), "unknown until the team is loaded")

	d.Go(e.LoadMembers())
	d.Pump(vmtest.Handled(e.Update))
	require.Equal(t, 1, e.Members.Len())
	require.False(t, e.Valid())
	require.Equal(t, "responsible member is not on this team", e.ErrorMessage())
	require.False(t, e.Dirty(), "loading options is not an edit")

	e.ResponsibleMemberID.Set("m1")
	require.True(t, e.Valid())
	require.Equal(t, "m1", *e.Draft().ResponsibleMemberID)

	e.ResponsibleMemberID.Set("")
	require.Nil(t, e.Draft().ResponsibleMemberID)
}

func TestSubsystemEditorCycleStatus(t *testing.T) {
	e := newSubsystemEditor(newFakeSubsystems())
	e.InitNew()
	e.CycleStatus()
	require.Equal(t, repository.StatusInProgress, e.Status.Get())
	e.Status.Set(repository.StatusBlocked)
	e.CycleStatus()
	require.Equal(t, repository.StatusNotStarted, e.Status.Get())
}

func TestSubsystemEditorOpen(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems(repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Arm", Status: repository.StatusComplete})
	e := newSubsystemEditor(store)

	d.Go(e.Open("missing"))
	d.Pump(vmtest.Handled(e.Update))
	require.Equal(t, "Failed to load subsystem: subsystem missing: not found", e.ErrorMessage())

	d.Go(e.Open("s1"))
	d.Pump(vmtest.Handled(e.Update))
	require.Equal(t, "Arm", e.Name.Get())
	require.Equal(t, repository.StatusComplete, e.Status.Get())
	require.Empty(t, e.ErrorMessage())
}

func TestSubsystemListLastLoadWins(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems()
	store.listGate = make(chan chan []repository.Subsystem)
	l := NewSubsystemList(store, &fakeMembers{}, &fakeTasks{}, "p1", quiet())

	d.Go(l.Load())
	first := <-store.listGate
	d.Go(l.Load())
	second := <-store.listGate

	second <- []repository.Subsystem{{ID: "b", Name: "Newer"}}
	d.Deliver(vmtest.Handled(l.Update))
	first <- []repository.Subsystem{{ID: "a", Name: "Older"}}
	d.Deliver(vmtest.Handled(l.Update))

	require.Equal(t, 1, l.Items.Len())
	row, _ := l.Items.At(0)
	require.Equal(t, "Newer", row.Name)
	require.False(t, l.Loading())
}

func TestSubsystemListRows(t *testing.T) {
	d := vmtest.New(t)
	owner := "m1"
	store := newFakeSubsystems(
		repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive", Status: repository.StatusInProgress, ResponsibleMemberID: &owner},
		repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Arm", Status: repository.StatusBlocked},
		repository.Subsystem{ID: "s3", ProjectID: "p2", Name: "Other", Status: repository.StatusBlocked},
	)
	members := &fakeMembers{rows: []repository.Member{{ID: "m1", FirstName: "Ada", LastName: "L"}}}
	tasks := &fakeTasks{progress: map[string]int{"s1": 40}}
	l := NewSubsystemList(store, members, tasks, "p1", quiet())

	d.Go(l.SetFilter(repository.StatusInProgress))
	d.Pump(vmtest.Handled(l.Update))
	require.Equal(t, []SubsystemRow{{Subsystem: store.rows["s1"], Progress: 40, Owner: "Ada L"}}, l.Items.Items())

	d.Go(l.SetFilter(""))
	d.Go(l.SetSearch("ar"))
	d.Pump(vmtest.Handled(l.Update))
	require.Equal(t, 1, l.Items.Len())
	row, _ := l.Items.At(0)
	require.Equal(t, "Arm", row.Name)
}

func TestSubsystemListReloadsOnBroadcast(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems(repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive"})
	l := NewSubsystemList(store, &fakeMembers{}, &fakeTasks{}, "p1", quiet())
	d.Go(l.Load())
	d.Pump(vmtest.Handled(l.Update))
	require.Equal(t, 1, l.Items.Len())

	store.rows["s2"] = repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Arm"}
	require.Nil(t, l.Changed(broadcast.ChangedMsg{Event: broadcast.Event{Kind: broadcast.KindProject}}))

	d.Go(l.Changed(broadcast.ChangedMsg{Event: broadcast.Event{Kind: broadcast.KindSubsystem, ID: "s2", Op: broadcast.OpSaved}}))
	d.Pump(vmtest.Handled(l.Update))
	require.Equal(t, 2, l.Items.Len())

	l.Dispose()
	require.Nil(t, l.Changed(broadcast.ChangedMsg{Event: broadcast.Event{Kind: broadcast.KindSubsystem}}))
}

func TestSubsystemListDisposeClears(t *testing.T) {
	d := vmtest.New(t)
	store := newFakeSubsystems(
		repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive"},
		repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Arm"},
	)
	l := NewSubsystemList(store, &fakeMembers{}, &fakeTasks{}, "p1", quiet())
	d.Go(l.Load())
	d.Pump(vmtest.Handled(l.Update))
	require.Equal(t, 2, l.Items.Len())

	l.Dispose()
	require.Zero(t, l.Items.Len())
	require.NotPanics(t, l.Dispose)
	require.Zero(t, l.Items.Len())
	require.Equal(t, vm.State{Valid: true}, l.State())
}

func TestSubsystemEditorMemberLoadKeepsValidationMessage(t *testing.T) {
	d := vmtest.New(t)
	members := &fakeMembers{rows: []repository.Member{{ID: "m1", Username: "ada"}}}
	e := NewSubsystemEditor(newFakeSubsystems(), members, "p1", quiet())
	e.InitNew()

	cmd := e.LoadMembers()
	require.True(t, e.Loading())
	require.False(t, e.Valid())
	require.Contains(t, e.ErrorMessage(), "name")

	d.Go(cmd)
	d.Pump(vmtest.Handled(e.Update))
	require.Equal(t, 1, e.Members.Len())
	require.Contains(t, e.ErrorMessage(), "name")

	n := 0
	e.Members.OnChange(func() { n++ })
	d.Go(e.LoadMembers())
	d.Pump(vmtest.Handled(e.Update))
	require.Zero(t, n, "reloading identical members does not notify")
	require.Contains(t, e.ErrorMessage(), "name")
}
