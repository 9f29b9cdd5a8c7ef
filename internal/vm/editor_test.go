package vm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/projdesk/internal/vm"
	"github.com/jask/projdesk/internal/vm/vmtest"
)

type part struct {
	ID   string
	Name string
}

type partForm struct {
	*vm.Editor[part]
	Name *vm.Property[string]
}

func quiet() vm.Option {
	return vm.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newPartForm(save func(ctx context.Context, p part) (part, error)) *partForm {
	f := &partForm{Name: vm.NewProperty("name", "")}
	f.Editor = vm.NewEditor(vm.EditorConfig[part]{
		Noun:  "part",
		Fill:  func(p part) { f.Name.Set(p.Name) },
		Build: func(p part) part { p.Name = f.Name.Get(); return p },
		Save:  save,
		Load: func(_ context.Context, id string) (part, error) {
			return part{ID: id, Name: "Loaded " + id}, nil
		},
	}, quiet())
	f.Track(f.Name)
	f.Rules(vm.Required("name", f.Name))
	return f
}

func delayedSave(d time.Duration, err error) func(context.Context, part) (part, error) {
	return func(_ context.Context, p part) (part, error) {
		time.Sleep(d)
		if err != nil {
			return part{}, err
		}
		if p.ID == "" {
			p.ID = "p-1"
		}
		return p, nil
	}
}

func TestEditorNewEntityIsInvalid(t *testing.T) {
	f := newPartForm(delayedSave(0, nil))
	f.InitNew()

	require.True(t, f.IsNew())
	require.False(t, f.Valid())
	require.Contains(t, f.ErrorMessage(), "name")
	require.False(t, f.Dirty())
	require.False(t, f.SaveCommand.Executable())
	require.Nil(t, f.SaveCommand.Execute())
}

func TestEditorSaveSuccess(t *testing.T) {
	d := vmtest.New(t)
	f := newPartForm(delayedSave(50*time.Millisecond, nil))
	f.InitNew()

	f.Name.Set("Drive Motors")
	require.True(t, f.Valid())
	require.Empty(t, f.ErrorMessage())
	require.True(t, f.Dirty())
	require.True(t, f.SaveCommand.Executable())

	d.Go(f.SaveCommand.Execute())
	require.True(t, f.Loading())
	require.False(t, f.SaveCommand.Executable(), "no double submit while saving")
	time.Sleep(20 * time.Millisecond)
	require.True(t, f.Loading())

	d.Pump(vmtest.Handled(f.Update))
	require.False(t, f.Loading())
	require.False(t, f.Dirty())
	require.False(t, f.IsNew())
	require.Equal(t, "p-1", f.Entity().ID)
	require.Equal(t, "Drive Motors", f.Entity().Name)
}

func TestEditorSaveFailureKeepsDirty(t *testing.T) {
	d := vmtest.New(t)
	f := newPartForm(delayedSave(0, errors.New("Save error")))
	f.InitNew()
	f.Name.Set("Drive Motors")

	d.Go(f.SaveCommand.Execute())
	d.Pump(vmtest.Handled(f.Update))

	require.False(t, f.Loading())
	require.Contains(t, f.ErrorMessage(), "Failed to save")
	require.Equal(t, "Failed to save part: Save error", f.ErrorMessage())
	require.True(t, f.Dirty())
	require.True(t, f.IsNew())
	require.True(t, f.SaveCommand.Executable(), "the user can retry")
}

func TestEditorEditDuringSaveStaysDirty(t *testing.T) {
	d := vmtest.New(t)
	f := newPartForm(delayedSave(10*time.Millisecond, nil))
	f.InitExisting(part{ID: "p-9", Name: "Arm"})
	f.Name.Set("Arm v2")

	d.Go(f.Save())
	f.Name.Set("Arm v3")
	d.Pump(vmtest.Handled(f.Update))

	require.True(t, f.Dirty())
	require.Equal(t, "Arm v3", f.Name.Get())
	require.Equal(t, "Arm v2", f.Entity().Name)
}

func TestEditorInitExistingAndRevert(t *testing.T) {
	f := newPartForm(delayedSave(0, nil))
	f.InitExisting(part{ID: "p-2", Name: "Shooter"})
	require.False(t, f.Dirty())
	require.False(t, f.IsNew())
	require.False(t, f.RevertCommand.Executable())

	f.Name.Set("Shooter 2")
	require.True(t, f.Dirty())
	require.Equal(t, part{ID: "p-2", Name: "Shooter 2"}, f.Draft())
	require.True(t, f.RevertCommand.Executable())

	require.Nil(t, f.RevertCommand.Execute())
	require.Equal(t, "Shooter", f.Name.Get())
	require.False(t, f.Dirty())
}

func TestEditorOpen(t *testing.T) {
	d := vmtest.New(t)
	f := newPartForm(delayedSave(0, nil))

	d.Go(f.Open("a"))
	d.Go(f.Open("b"))
	d.Pump(vmtest.Handled(f.Update))

	require.Equal(t, "Loaded b", f.Name.Get())
	require.False(t, f.Dirty())
	require.False(t, f.IsNew())
}

func TestEditorSaveBlockedReason(t *testing.T) {
	f := newPartForm(delayedSave(0, nil))
	f.InitExisting(part{ID: "p-3", Name: "Climber"})
	require.Equal(t, "no changes to save", f.SaveCommand.Reason())
	f.Name.Set("")
	require.Equal(t, "name is required", f.SaveCommand.Reason())
}

func TestEditorDisposeTwice(t *testing.T) {
	f := newPartForm(delayedSave(0, nil))
	require.NotPanics(t, f.Dispose)
	f2 := newPartForm(delayedSave(0, nil))
	f2.InitExisting(part{ID: "p-4", Name: "Elevator"})
	f2.Dispose()
	f2.Dispose()
	require.Empty(t, f2.Name.Get())
	require.Equal(t, part{}, f2.Entity())
	require.False(t, f2.SaveCommand.Executable())
	require.Zero(t, f2.Name.Listeners())
}

func TestEditorSaveDiscardedAfterReinit(t *testing.T) {
	d := vmtest.New(t)
	gate := make(chan struct{})
	f := newPartForm(func(_ context.Context, p part) (part, error) {
		<-gate
		return p, nil
	})
	f.InitExisting(part{ID: "A", Name: "a"})
	f.Name.Set("a2")
	d.Go(f.SaveCommand.Execute())
	require.True(t, f.Loading())

	f.InitExisting(part{ID: "B", Name: "b"})
	require.False(t, f.Loading())

	close(gate)
	d.Pump(vmtest.Handled(f.Update))

	require.Equal(t, "B", f.Entity().ID)
	require.Equal(t, "b", f.Name.Get())
	require.Equal(t, "B", f.Draft().ID)
	require.False(t, f.Dirty())
	require.False(t, f.IsNew())
}
