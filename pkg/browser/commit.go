package browser

import "tinybrowser/pkg/paint"

// CommitData is the immutable handoff from a Tab's main thread to the
// Browser's compositor thread (§4.8). A zero DisplayList with zero
// CompositedUpdates still carries the frame's URL/Scroll/Height, e.g. for a
// scroll-only frame that changed nothing else.
type CommitData struct {
	URL    string
	Scroll float64
	Height float64

	// ScrollChangedInTab is true when the tab itself changed the scroll
	// offset this frame (e.g. by clamping against new content height),
	// so the Browser must adopt it instead of keeping its own value.
	ScrollChangedInTab bool

	// ScrollBehavior mirrors the tab's body's computed "scroll-behavior"
	// property (§3 "Animation", "Scroll") as of this frame.
	ScrollBehavior string

	// DisplayList is non-nil only when paint produced a new tree this
	// frame; its presence forces the Browser to run a full composite.
	DisplayList []*paint.Item

	// CompositedUpdates carries composited-only animation ticks; non-empty
	// only when at least one ran, and forces only a re-draw, not a
	// re-raster, when DisplayList is nil.
	CompositedUpdates []CompositedUpdate
}
