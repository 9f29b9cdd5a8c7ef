// Package vm is the reactive state core shared by every screen.
//
// A screen ViewModel embeds a Core and declares its fields as Property or
// List values. Core wires dirty tracking and validation to those fields,
// Commands derive their executability from the resulting state, and the
// Runner dispatches backend work as tea.Cmd values whose completions come
// back through the bubbletea event loop.
//
// Threading: every Property read and write, Command evaluation and
// Completion handling happens on the bubbletea Update goroutine. Only the
// work function passed to Run executes elsewhere.
//
//	user input / broadcast push
//	        |
//	   Property.Set ---> DirtyTracker, Validator
//	        |
//	   Command.Executable (recomputed on demand)
//	        |
//	   Command.Execute ---> Run ---> tea.Cmd (off loop)
//	                                   |
//	   Core.Update <------------- Completion msg
package vm
