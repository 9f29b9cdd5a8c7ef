package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type formFixture struct {
	*Core
	name  *Property[string]
	notes *Property[string]
	tags  *List[string]
}

func newFormFixture() *formFixture {
	f := &formFixture{
		Core:  NewCore(WithLogger(quietLogger())),
		name:  NewProperty("name", ""),
		notes: NewProperty("notes", ""),
		tags:  NewList[string]("tags"),
	}
	f.Track(f.name, f.notes, f.tags)
	f.Rules(
		Required("name", f.name),
		MaxLength("notes", f.notes, 5),
	)
	return f
}

func TestCoreInitLeavesClean(t *testing.T) {
	f := newFormFixture()
	f.Init(func() {
		f.name.Set("Drive Motors")
		f.tags.Set([]string{"mech"})
	})

	require.False(t, f.Dirty())
	require.True(t, f.Valid())
	require.Empty(t, f.ErrorMessage())
}

func TestCoreEditsMarkDirtyAndRevalidate(t *testing.T) {
	f := newFormFixture()
	f.Init(func() {})
	require.False(t, f.Valid())
	require.Equal(t, "name is required", f.ErrorMessage())

	f.notes.Set("far too long")
	require.True(t, f.Dirty())
	require.Equal(t, "name is required", f.ErrorMessage(), "first declared failure is shown")

	f.name.Set("Arm")
	require.Equal(t, "notes must be at most 5 characters", f.ErrorMessage())

	f.notes.Set("ok")
	require.Equal(t, State{Dirty: true, Valid: true}, f.State())

	f.MarkClean()
	f.tags.Append("x")
	require.True(t, f.Dirty(), "collection edits count as edits")
}

func TestCoreRevisionCountsEdits(t *testing.T) {
	f := newFormFixture()
	before := f.Revision()
	f.name.Set("a")
	f.name.Set("a")
	f.notes.Set("b")
	require.Equal(t, before+2, f.Revision())
}

func TestCoreBindingsExposeState(t *testing.T) {
	f := newFormFixture()
	b := f.Bindings()
	var seen []string
	b.ErrorMessage.Subscribe(func(_, v string) { seen = append(seen, v) })

	f.name.Set("x")
	f.name.Set("")
	require.Equal(t, []string{"", "name is required"}, seen)
	require.True(t, b.Dirty.Get())
	require.False(t, b.Loading.Get())
	require.False(t, b.Valid.Get())
}

func TestCoreDisposeClearsEverything(t *testing.T) {
	f := newFormFixture()
	f.Init(func() {
		f.name.Set("Intake")
		f.tags.Set([]string{"a", "b"})
	})
	external := 0
	f.Watch(f.name, func() { external++ })
	f.name.Set("Intake v2")
	require.Equal(t, 1, external)

	f.Dispose()
	require.Empty(t, f.name.Get())
	require.Zero(t, f.tags.Len())
	require.Zero(t, f.name.Listeners())
	require.Zero(t, f.tags.Listeners())
	require.False(t, f.Dirty())
	require.Empty(t, f.ErrorMessage())

	state := f.State()
	require.NotPanics(t, f.Dispose)
	require.Equal(t, state, f.State())
	require.Zero(t, f.tags.Len())
	require.Equal(t, 1, external)
}

func TestCoreDisposeBeforeInit(t *testing.T) {
	f := newFormFixture()
	require.NotPanics(t, f.Dispose)
	require.NotPanics(t, f.Dispose)
	require.True(t, f.Disposed())
	require.Panics(t, func() { f.Init(func() {}) })
}

func TestCoreClearErrorMessage(t *testing.T) {
	f := newFormFixture()
	f.SetErrorMessage("confirm first")
	require.Equal(t, "confirm first", f.ErrorMessage())
	f.ClearErrorMessage()
	require.Empty(t, f.ErrorMessage())
}
