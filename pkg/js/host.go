package js

// Host lets the scheduling bindings (setTimeout, requestAnimationFrame)
// reach back into the tab that owns this engine, without pkg/js importing
// pkg/browser (pkg/browser already imports pkg/js, so the reverse would
// cycle).
type Host interface {
	// ScheduleTask runs fn as one task on the tab's task runner, the way a
	// fired setTimeout does (§4.9 "Timeouts").
	ScheduleTask(fn func())
	// RequestAnimationFrame marks the tab as having a pending reason to run
	// another animation frame.
	RequestAnimationFrame()
}
