// Package layout implements the box tree (§4.2): Document/Block/Inline/Line/
// Text/Input boxes, laid out top-down then measured bottom-up, and painted
// into a pkg/paint display list.
package layout

import (
	"image/color"
	"strconv"
	"strings"

	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/css"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/paint"
	"tinybrowser/pkg/text"
)

// Viewport constants (§1, §2).
const (
	Width          = 800
	Height         = 600
	HStep          = 13
	VStep          = 18
	InputWidthPx   = 200
	defaultFontSz  = 16.0
)

// blockElements lists the tags that force their parent into block layout
// mode, matching the reference engine's BLOCK_ELEMENTS.
var blockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true,
	"nav": true, "aside": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "hgroup": true, "header": true,
	"footer": true, "address": true, "p": true, "hr": true, "pre": true,
	"blockquote": true, "ol": true, "ul": true, "menu": true, "li": true,
	"dl": true, "dt": true, "dd": true, "figure": true, "figcaption": true,
	"main": true, "div": true, "table": true, "form": true,
	"fieldset": true, "legend": true, "details": true, "summary": true,
}

// layoutMode decides block vs inline for a non-leaf node: block if the node
// has no children at all, or if any child is an element with a block-level
// tag; inline otherwise. Text nodes are always inline.
func layoutMode(node *html.Node) string {
	if node.Type == html.TextNode {
		return "inline"
	}
	if len(node.Children) == 0 {
		return "block"
	}
	for _, child := range node.Children {
		if child.Type == html.ElementNode && blockElements[child.TagName] {
			return "block"
		}
	}
	return "inline"
}

// box is the shape every non-root layout node satisfies: lay itself out,
// append its paint items, and report its own y/height so the next sibling
// can position itself below (mirroring the original's previous.y +
// previous.height chaining).
type box interface {
	Layout()
	Paint(display *[]*paint.Item)
	boxY() float64
	boxHeight() float64
}

// Fonts is the subset of the font service layout needs.
type Fonts interface {
	GetFont(sizePx float64, weight text.Weight, style text.Style) *text.Font
}

// Document is the root of the box tree: a single Block child positioned at
// (HStep, VStep), width WIDTH-2*HStep (§4.2).
type Document struct {
	Node   *html.Node
	Fonts  Fonts
	Child  *Block
	X, Y   float64
	Width  float64
	Height float64
}

// NewDocument constructs (but does not lay out) the document box for root.
func NewDocument(root *html.Node, fonts Fonts) *Document {
	return &Document{Node: root, Fonts: fonts}
}

func (d *Document) Layout() {
	d.Child = newBlock(d.Node, nil, nil, d.Fonts)
	d.Width = Width - 2*HStep
	d.X = HStep
	d.Y = VStep
	d.Child.parentX, d.Child.parentY, d.Child.parentWidth = d.X, d.Y, d.Width
	d.Child.Layout()
	d.Height = d.Child.Height + 2*VStep
}

func (d *Document) Bounds() canvas.Rect {
	return canvas.Rect{Left: d.X, Top: d.Y, Right: d.X + d.Width, Bottom: d.Y + d.Height}
}

func (d *Document) Paint() []*paint.Item {
	display := []*paint.Item{{
		Kind:  paint.KindDrawRect,
		Rect:  d.Bounds(),
		Color: color.White,
	}}
	d.Child.Paint(&display)
	return display
}

func styleLength(node *html.Node, name string, def float64) float64 {
	v, ok := node.Style[name]
	if !ok || v == "" {
		return def
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return float64(int(f)) // floor toward zero matches math.floor for non-negative CSS lengths
}

func backgroundRect(node *html.Node, rect canvas.Rect, cmds *[]*paint.Item) {
	bg, ok := node.Style["background-color"]
	if !ok || bg == "" || bg == "transparent" {
		return
	}
	radius := styleLength(node, "border-radius", 0)
	*cmds = append(*cmds, &paint.Item{
		Kind:   paint.KindDrawRRect,
		Rect:   rect,
		Radius: radius,
		Color:  colorFromCSS(bg),
	})
}

// colorFromCSS resolves a CSS color value to an image/color.Color, falling
// back to a "#rrggbb"/"#rgb" hex parse when css.ParseColor's named-color
// table doesn't recognize the value, and to black when neither does.
func colorFromCSS(value string) color.Color {
	if c, ok := css.ParseColor(value); ok {
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) == 6 {
		if n, err := strconv.ParseUint(v, 16, 32); err == nil {
			return color.RGBA{
				R: uint8(n >> 16),
				G: uint8(n >> 8),
				B: uint8(n),
				A: 255,
			}
		}
	}
	return color.Black
}

func fontFor(node *html.Node, fonts Fonts) *text.Font {
	weight := text.WeightNormal
	if node.Style["font-weight"] == "bold" {
		weight = text.WeightBold
	}
	style := text.StyleNormal
	if node.Style["font-style"] == "italic" {
		style = text.StyleItalic
	}
	size := defaultFontSz
	if v, ok := node.Style["font-size"]; ok {
		v = strings.TrimSuffix(strings.TrimSpace(v), "px")
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			size = f
		}
	}
	return fonts.GetFont(size, weight, style)
}

func textColor(node *html.Node) color.Color {
	if c, ok := node.Style["color"]; ok {
		return colorFromCSS(c)
	}
	return color.Black
}
