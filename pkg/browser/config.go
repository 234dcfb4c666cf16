package browser

// Config carries the engine's command-line-settable behavior flags
// (§6 "CLI"), threaded through to both Tab and Browser at construction.
type Config struct {
	// SingleThreaded runs the Tab's task runner synchronously in the
	// caller instead of spawning a worker goroutine.
	SingleThreaded bool

	// DisableCompositing forces every paint update through a full
	// composite/raster/draw cycle, skipping the incremental
	// composited-only update path.
	DisableCompositing bool

	// DisableGPU is accepted for parity with the reference engine's flag
	// set; this engine only ever rasters to software surfaces, so it has
	// no effect on drawing, only on any GPU-specific diagnostics a future
	// window backend might report.
	DisableGPU bool

	// ShowCompositedLayerBorders draws a one-pixel border around each
	// composited layer's bounds, for debugging layer assignment.
	ShowCompositedLayerBorders bool
}

// UseCompositing reports whether composited-only animation updates should
// take the incremental path rather than forcing a full composite.
func (c Config) UseCompositing() bool {
	return !c.DisableCompositing
}
