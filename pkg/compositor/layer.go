// Package compositor implements the compositor-thread half of the pipeline
// (§4.7): layer assignment, raster, draw, and the incremental composited-only
// update path.
package compositor

import (
	"image/color"

	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/paint"
)

// ShowBorders draws a one-pixel border around each layer's rastered bounds,
// for debugging layer assignment (§9 --show_composited_layer_borders).
var ShowBorders = false

var borderPaint = canvas.Paint{Color: color.RGBA{R: 255, A: 255}, Alpha: 1, Style: canvas.StyleStroke, StrokeWidth: 1}

// Layer is one composited layer: a lazily-rastered offscreen surface holding
// every paint chunk that shares a composited-ancestor-index and does not
// overlap an earlier, incompatible layer.
type Layer struct {
	PaintChunks             []paint.Chunk
	CompositedAncestorIndex int
	Surface                 *canvas.Canvas
	bounds                  canvas.Rect // valid only after Raster
}

// CanMerge reports whether chunk may join this layer: an empty layer accepts
// anything; otherwise the chunk's composited-ancestor-index must match the
// layer's own.
func (l *Layer) CanMerge(chunk paint.Chunk) bool {
	if len(l.PaintChunks) == 0 {
		return true
	}
	return l.CompositedAncestorIndex == paint.CompositedAncestorIndex(chunk.Ancestors)
}

// AddPaintChunk appends chunk to the layer, fixing the layer's
// composited-ancestor-index from the first chunk added.
func (l *Layer) AddPaintChunk(chunk paint.Chunk) {
	if len(l.PaintChunks) == 0 {
		l.CompositedAncestorIndex = paint.CompositedAncestorIndex(chunk.Ancestors)
	}
	l.PaintChunks = append(l.PaintChunks, chunk)
}

// CompositedBounds is the union of every paint chunk's own composited
// bounds — the size the layer's offscreen surface must be rastered at.
func (l *Layer) CompositedBounds() canvas.Rect {
	var b canvas.Rect
	for _, c := range l.PaintChunks {
		b = b.Union(c.Leaf.CompositedBounds())
	}
	return b
}

// AbsoluteBounds is the union of every chunk's bounds mapped through its
// ancestor Transforms — used to detect paint-order-breaking overlap between
// layers during assignment.
func (l *Layer) AbsoluteBounds() canvas.Rect {
	var b canvas.Rect
	for _, c := range l.PaintChunks {
		b = b.Union(absoluteBounds(c.Leaf, c.Ancestors))
	}
	return b
}

func absoluteBounds(item *paint.Item, ancestors []*paint.Item) canvas.Rect {
	r := item.CompositedBounds()
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Kind == paint.KindTransform {
			r = ancestors[i].Map(r)
		}
	}
	return r
}

// CompositedItems returns the ancestor effect items (from the layer's first
// chunk) that need compositing — the Transform/SaveLayer items the
// incremental-update path replays new parameters into.
func (l *Layer) CompositedItems() []*paint.Item {
	if len(l.PaintChunks) == 0 {
		return nil
	}
	var items []*paint.Item
	for _, a := range l.PaintChunks[0].Ancestors {
		if a.NeedsCompositing() {
			items = append(items, a)
		}
	}
	return items
}

// drawInternal wraps op with ancestors[start:end]'s visual effects, applied
// from the outside in, mirroring the reference engine's draw_internal
// recursion (used identically by both Raster, which replays the
// non-composited tail of a chunk's ancestors, and Draw, which replays the
// composited prefix).
func drawInternal(c *canvas.Canvas, op func(), start, end int, ancestors []*paint.Item) {
	if start == end {
		op()
		return
	}
	ancestor := ancestors[start]
	ancestor.Draw(c, func() {
		drawInternal(c, op, start+1, end, ancestors)
	})
}

// Raster draws every paint chunk onto the layer's own offscreen surface,
// sized to its composited bounds and translated so those bounds sit at the
// origin. Only the non-composited tail of each chunk's ancestor effects
// (index composited_ancestor_index+1 onward) is replayed here; the
// composited prefix is deferred to Draw (§4.7 "Raster of a layer").
func (l *Layer) Raster() {
	bounds := l.CompositedBounds()
	if bounds.IsEmpty() {
		return
	}
	irect := bounds.RoundOut()
	w, h := int(irect.Width()), int(irect.Height())
	if w <= 0 || h <= 0 {
		return
	}
	if l.Surface == nil {
		l.Surface = canvas.NewCanvas(w, h)
	}
	l.bounds = bounds

	l.Surface.Clear(color.Transparent)
	l.Surface.Save()
	l.Surface.Translate(-bounds.Left, -bounds.Top)
	for _, chunk := range l.PaintChunks {
		leaf := chunk.Leaf
		op := func() { leaf.Execute(l.Surface) }
		drawInternal(l.Surface, op, l.CompositedAncestorIndex+1, len(chunk.Ancestors), chunk.Ancestors)
	}
	l.Surface.Restore()

	if ShowBorders {
		l.Surface.DrawRect(canvas.Rect{Left: 0, Top: 0, Right: float64(w), Bottom: float64(h)}, borderPaint)
	}
}

// Draw blits the layer's rastered surface onto root at (offsetX, offsetY),
// wrapped by the composited prefix of its ancestor effects (index 0 through
// composited_ancestor_index+1) — these are the Transform/SaveLayer items the
// incremental-update path can mutate without forcing a re-raster
// (§4.7 "Draw of a layer").
func (l *Layer) Draw(root *canvas.Canvas, offsetX, offsetY float64) {
	if l.Surface == nil || len(l.PaintChunks) == 0 {
		return
	}
	ancestors := l.PaintChunks[0].Ancestors

	op := func() {
		root.DrawImage(l.Surface.Image(), l.bounds.Left, l.bounds.Top)
	}

	root.Save()
	root.Translate(offsetX, offsetY)
	if l.CompositedAncestorIndex >= 0 {
		drawInternal(root, op, 0, l.CompositedAncestorIndex+1, ancestors)
	} else {
		op()
	}
	root.Restore()
}
