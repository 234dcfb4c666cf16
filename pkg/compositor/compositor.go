package compositor

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/paint"
)

// Update is one entry of a commit's composited_updates: the new
// Transform/SaveLayer parameters a composited-only animation tick produced
// for node, to be copied into the already-rastered layers' effect items
// without triggering a re-raster.
type Update struct {
	Node      *html.Node
	Transform *paint.Item
	SaveLayer *paint.Item
}

// Compositor holds the assigned layer list for the active tab's most recent
// full composite, and knows how to re-assign it, raster it, and draw it.
type Compositor struct {
	Layers []*Layer
}

// New returns an empty Compositor.
func New() *Compositor { return &Compositor{} }

// Composite re-runs full layer assignment over displayList (§4.7 "Layer
// assignment"): flattens it into paint chunks, then scans existing layers
// newest-to-oldest for each chunk in turn, merging when compatible, else
// starting a new layer — breaking on overlap to preserve paint order.
func (c *Compositor) Composite(displayList []*paint.Item) {
	c.Layers = nil
	chunks := paint.Flatten(displayList, nil, nil)

	for _, chunk := range chunks {
		placed := false
		for i := len(c.Layers) - 1; i >= 0; i-- {
			layer := c.Layers[i]
			if layer.CanMerge(chunk) {
				layer.AddPaintChunk(chunk)
				placed = true
				break
			}
			if layer.AbsoluteBounds().Intersects(absoluteBounds(chunk.Leaf, chunk.Ancestors)) {
				next := &Layer{}
				next.AddPaintChunk(chunk)
				c.Layers = append(c.Layers, next)
				placed = true
				break
			}
		}
		if !placed {
			next := &Layer{}
			next.AddPaintChunk(chunk)
			c.Layers = append(c.Layers, next)
		}
	}
}

// ContentHeight returns the tallest layer bottom, i.e. the scrollable
// document height implied by the current layer assignment.
func (c *Compositor) ContentHeight() float64 {
	height := 0.0
	for _, layer := range c.Layers {
		if b := layer.AbsoluteBounds().Bottom; b > height {
			height = b
		}
	}
	return height
}

// ApplyIncrementalUpdate replays composited-only animation updates into the
// already-rastered layers' composited effect items, without re-rastering
// (§4.7 "Incremental update").
func (c *Compositor) ApplyIncrementalUpdate(updates []Update) {
	for _, u := range updates {
		for _, layer := range c.Layers {
			for _, item := range layer.CompositedItems() {
				switch item.Kind {
				case paint.KindTransform:
					if u.Transform != nil {
						item.CopyFrom(u.Transform)
					}
				case paint.KindSaveLayer:
					if u.SaveLayer != nil {
						item.CopyFrom(u.SaveLayer)
					}
				}
			}
		}
	}
}

// RasterAll rasters every layer concurrently: layers share no mutable state
// once chunked, so each can be rastered on its own goroutine bounded by
// GOMAXPROCS.
func (c *Compositor) RasterAll() error {
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, layer := range c.Layers {
		layer := layer
		g.Go(func() error {
			layer.Raster()
			return nil
		})
	}
	return g.Wait()
}

// DrawAll draws every layer onto root in assignment order (back to front),
// offset by (offsetX, offsetY) — typically (0, CHROME_PX - scroll).
func (c *Compositor) DrawAll(root *canvas.Canvas, offsetX, offsetY float64) {
	for _, layer := range c.Layers {
		layer.Draw(root, offsetX, offsetY)
	}
}
