// Package canvas implements the 2D drawing service (§6): a thin canvas
// abstraction over gg.Context with save/restore/translate/clip/draw
// primitives and a SaveLayer implemented as an offscreen layer of the same
// size as the canvas, composited back on restore — mirroring how a real
// retained-mode 2D API (skia, the teacher's gg) treats saveLayer as
// canvas-stack state rather than a distinct surface.
package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"tinybrowser/pkg/text"
)

// BlendMode is the small subset of Skia blend modes the engine exercises.
type BlendMode int

const (
	BlendSrcOver BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendDarken
	BlendLighten
)

// PaintStyle selects fill vs stroke for drawRect/drawPath.
type PaintStyle int

const (
	StyleFill PaintStyle = iota
	StyleStroke
)

// Paint carries the subset of skia.Paint properties the display-item tree
// needs: a color, a blend mode, an alpha multiplier and stroke parameters.
type Paint struct {
	Color       color.Color
	BlendMode   BlendMode
	Alpha       float64 // 0..1, multiplies Color's own alpha
	Style       PaintStyle
	StrokeWidth float64
}

// NewPaint returns a fully-opaque fill Paint for the given color.
func NewPaint(c color.Color) Paint {
	return Paint{Color: c, Alpha: 1, Style: StyleFill}
}

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }
func (r Rect) IsEmpty() bool   { return r.Right <= r.Left || r.Bottom <= r.Top }

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.Left + dx, r.Top + dy, r.Right + dx, r.Bottom + dy}
}

// RoundOut rounds r outward to integer pixel bounds.
func (r Rect) RoundOut() Rect {
	return Rect{
		Left:   math.Floor(r.Left),
		Top:    math.Floor(r.Top),
		Right:  math.Ceil(r.Right),
		Bottom: math.Ceil(r.Bottom),
	}
}

// layer is one entry of the canvas's saveLayer stack.
type layer struct {
	ctx   *gg.Context
	paint Paint
}

// Canvas is the drawing surface the paint tree executes against. All
// drawing methods act on the top of an internal layer stack; SaveLayer
// pushes a fresh transparent layer the same size as the canvas and
// RestoreLayer composites it back onto the layer beneath with the saved
// Paint's alpha applied. The Paint's BlendMode is not applied: the layer is
// always composited source-over.
type Canvas struct {
	w, h   int
	layers []*layer
}

// NewCanvas allocates a raster canvas of the given pixel size.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{w: w, h: h}
	c.layers = []*layer{{ctx: gg.NewContext(w, h)}}
	return c
}

func (c *Canvas) top() *gg.Context { return c.layers[len(c.layers)-1].ctx }

// Image returns the canvas's backing RGBA image (read-only snapshot) — the
// base layer's image after every SaveLayer has been restored.
func (c *Canvas) Image() image.Image { return c.layers[0].ctx.Image() }

func (c *Canvas) Save()    { c.top().Push() }
func (c *Canvas) Restore() { c.top().Pop() }

func (c *Canvas) Translate(dx, dy float64) { c.top().Translate(dx, dy) }

func (c *Canvas) Clear(bg color.Color) {
	c.top().SetColor(bg)
	c.top().Clear()
}

// ClipRect intersects the clip region with an axis-aligned rectangle.
func (c *Canvas) ClipRect(r Rect) {
	c.top().DrawRectangle(r.Left, r.Top, r.Width(), r.Height())
	c.top().Clip()
}

// ClipRRect intersects the clip region with a rounded rectangle. radius == 0
// degenerates to an axis-aligned rect clip.
func (c *Canvas) ClipRRect(r Rect, radius float64) {
	if radius <= 0 {
		c.ClipRect(r)
		return
	}
	c.top().DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), radius)
	c.top().Clip()
}

// DrawRect fills or strokes an axis-aligned rectangle.
func (c *Canvas) DrawRect(r Rect, p Paint) {
	c.top().DrawRectangle(r.Left, r.Top, r.Width(), r.Height())
	c.paintPath(p)
}

// DrawRRect fills or strokes a rounded rectangle.
func (c *Canvas) DrawRRect(r Rect, radius float64, p Paint) {
	if radius <= 0 {
		c.DrawRect(r, p)
		return
	}
	c.top().DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), radius)
	c.paintPath(p)
}

// DrawLine strokes a single line segment.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, p Paint) {
	c.top().SetLineWidth(maxf(p.StrokeWidth, 1))
	c.top().SetColor(scaleAlpha(p.Color, p.Alpha))
	c.top().DrawLine(x1, y1, x2, y2)
	c.top().Stroke()
}

// DrawPath fills or strokes an arbitrary closed polygon.
func (c *Canvas) DrawPath(points [][2]float64, p Paint) {
	if len(points) == 0 {
		return
	}
	ctx := c.top()
	ctx.MoveTo(points[0][0], points[0][1])
	for _, pt := range points[1:] {
		ctx.LineTo(pt[0], pt[1])
	}
	ctx.ClosePath()
	c.paintPath(p)
}

func (c *Canvas) paintPath(p Paint) {
	c.top().SetColor(scaleAlpha(p.Color, p.Alpha))
	if p.Style == StyleStroke {
		c.top().SetLineWidth(maxf(p.StrokeWidth, 1))
		c.top().Stroke()
	} else {
		c.top().Fill()
	}
}

// DrawImage blits img onto the canvas with its top-left corner at (x, y),
// used by the compositor to draw a rastered layer's surface onto another
// canvas.
func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	c.top().DrawImage(img, int(x), int(y))
}

// DrawText draws s with its baseline at (x, y).
func (c *Canvas) DrawText(x, y float64, s string, font *text.Font, col color.Color) {
	c.top().SetColor(col)
	c.top().DrawString(s, x, y)
}

// SaveLayer pushes a fresh transparent layer, the same pixel size as the
// canvas, onto the layer stack. p is remembered and applied by the matching
// RestoreLayer.
func (c *Canvas) SaveLayer(p Paint) {
	ctx := gg.NewContext(c.w, c.h)
	c.layers = append(c.layers, &layer{ctx: ctx, paint: p})
}

// RestoreLayer pops the top layer and composites it onto the layer beneath
// using the alpha recorded at SaveLayer time.
func (c *Canvas) RestoreLayer() {
	if len(c.layers) < 2 {
		return
	}
	top := c.layers[len(c.layers)-1]
	c.layers = c.layers[:len(c.layers)-1]
	below := c.top()
	img := top.ctx.Image()
	// gg's DrawImage ignores the current color, so the layer's pixels
	// (premultiplied RGBA) are scaled by the alpha before blitting.
	if a := clamp01(top.paint.Alpha); a < 1 {
		if rgba, ok := img.(*image.RGBA); ok {
			for i := range rgba.Pix {
				rgba.Pix[i] = uint8(float64(rgba.Pix[i]) * a)
			}
		}
	}
	below.Push()
	below.DrawImage(img, 0, 0)
	below.Pop()
}

func scaleAlpha(c color.Color, alpha float64) color.Color {
	if c == nil {
		c = color.Black
	}
	r, g, b, a := c.RGBA()
	scaled := uint32(float64(a) * clamp01(alpha))
	return color.NRGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(scaled)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
