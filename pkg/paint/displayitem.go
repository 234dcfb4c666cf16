// Package paint implements the DisplayItem value tree (§3, §4.4-§4.6): the
// paint operations and visual effects produced by walking the layout tree,
// and their flattening into paint chunks for the compositor.
package paint

import (
	"image/color"

	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/text"
)

// Kind discriminates the DisplayItem variant (§3).
type Kind int

const (
	KindDrawRect Kind = iota
	KindDrawRRect
	KindDrawText
	KindDrawLine
	KindClipRRect
	KindSaveLayer
	KindTransform
)

// UseCompositing is the global flag gating needs_compositing (§4.5, §9).
// Threaded through from browser.Config at commit time; defaults true to
// match the reference engine's default.
var UseCompositing = true

// Item is the tagged-variant DisplayItem (§3, §9 "Dynamic dispatch on
// DisplayItem"). Leaf items (DrawRect, DrawRRect, DrawText, DrawLine) have
// no children; effect items (ClipRRect, SaveLayer, Transform) always have
// at least one.
type Item struct {
	Kind     Kind
	Rect     canvas.Rect
	Children []*Item
	IsNoop   bool
	Node     *html.Node

	// Leaf payloads.
	Color color.Color
	Text  string
	Font  *text.Font
	X1, Y1, X2, Y2 float64

	// ClipRRect payload.
	Radius float64

	// SaveLayer payload.
	LayerPaint canvas.Paint

	// Transform payload. Translation is nil iff IsNoop (no-op transform).
	Translation *Translation
}

// Translation is a 2D translate() value.
type Translation struct{ X, Y float64 }

// Bounds returns the item's own bounding rect (its "rect" field in the
// original model), without descending into children.
func (it *Item) Bounds() canvas.Rect { return it.Rect }

// CompositedBounds returns the union of this item's own rect and, for every
// non-composited child, that child's composited bounds — i.e. the bounds a
// raster of this subtree would need, stopping at composited boundaries
// (§3 CompositedLayer, §4.7 raster).
func (it *Item) CompositedBounds() canvas.Rect {
	b := it.Rect
	for _, c := range it.Children {
		if !c.NeedsCompositing() {
			b = b.Union(c.CompositedBounds())
		}
	}
	return b
}

// NeedsCompositing implements the §4.5 predicate: only Transform and
// SaveLayer items can be composited, only when non-no-op, and only when the
// global flag is set.
func (it *Item) NeedsCompositing() bool {
	if !UseCompositing {
		return false
	}
	if it.IsNoop {
		return false
	}
	return it.Kind == KindTransform || it.Kind == KindSaveLayer
}

// Map applies this item's geometric transform (identity for everything but
// a non-no-op Transform) to rect, used to compute absolute bounds (§4.7).
func (it *Item) Map(rect canvas.Rect) canvas.Rect {
	if it.Kind != KindTransform || it.Translation == nil {
		return rect
	}
	return rect.Translate(it.Translation.X, it.Translation.Y)
}

// Execute runs this item's leaf drawing or recurses into its children
// wrapped by Draw (§3 "execute").
func (it *Item) Execute(c *canvas.Canvas) {
	switch it.Kind {
	case KindDrawRect:
		c.DrawRect(it.Rect, canvas.Paint{Color: it.Color, Alpha: 1, Style: canvas.StyleFill})
	case KindDrawRRect:
		c.DrawRRect(it.Rect, it.Radius, canvas.Paint{Color: it.Color, Alpha: 1, Style: canvas.StyleFill})
	case KindDrawText:
		c.DrawText(it.X1, it.Y1, it.Text, it.Font, it.Color)
	case KindDrawLine:
		c.DrawLine(it.X1, it.Y1, it.X2, it.Y2, canvas.Paint{Color: color.Black, Alpha: 1, StrokeWidth: 1})
	default:
		op := func() {
			for _, child := range it.Children {
				child.Execute(c)
			}
		}
		it.Draw(c, op)
	}
}

// Draw wraps op with this item's visual effect (save/clip/translate/layer).
// Only ClipRRect, SaveLayer and Transform override the no-op passthrough
// (§9: "the only items overriding draw are ClipRRect, SaveLayer, Transform").
func (it *Item) Draw(c *canvas.Canvas, op func()) {
	switch it.Kind {
	case KindClipRRect:
		if it.IsNoop {
			op()
			return
		}
		c.Save()
		c.ClipRRect(it.Rect, it.Radius)
		op()
		c.Restore()
	case KindSaveLayer:
		if it.IsNoop {
			op()
			return
		}
		c.SaveLayer(it.LayerPaint)
		op()
		c.RestoreLayer()
	case KindTransform:
		if it.IsNoop || it.Translation == nil {
			op()
			return
		}
		c.Save()
		c.Translate(it.Translation.X, it.Translation.Y)
		op()
		c.Restore()
	default:
		op()
	}
}

// CopyFrom overwrites this item's mutable parameters from other — used by
// the compositor's incremental composited-update path (§4.7) to replay a
// Transform/SaveLayer's new parameters without re-rastering. Only Transform
// and SaveLayer are ever copied onto (leaf items never are).
func (it *Item) CopyFrom(other *Item) {
	switch it.Kind {
	case KindTransform:
		it.Translation = other.Translation
		it.Rect = other.Rect
	case KindSaveLayer:
		it.LayerPaint = other.LayerPaint
	}
}
