package vm

// DirtyTracker records whether in-memory state has diverged from the last
// loaded or saved state.
type DirtyTracker struct {
	flag      *Property[bool]
	suspended int
}

func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{flag: NewProperty("dirty", false)}
}

// MarkDirty sets the flag unless tracking is suspended.
func (d *DirtyTracker) MarkDirty() {
	if d.suspended > 0 {
		return
	}
	d.flag.Set(true)
}

func (d *DirtyTracker) MarkClean() { d.flag.Set(false) }

func (d *DirtyTracker) Dirty() bool { return d.flag.Get() }

// Property exposes the flag for binding.
func (d *DirtyTracker) Property() *Property[bool] { return d.flag }

// Suspend runs fn with MarkDirty disabled and leaves the tracker clean.
// Calls nest.
func (d *DirtyTracker) Suspend(fn func()) {
	d.suspended++
	defer func() {
		d.suspended--
		if d.suspended == 0 {
			d.MarkClean()
		}
	}()
	fn()
}
