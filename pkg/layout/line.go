package layout

import (
	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/paint"
	"tinybrowser/pkg/text"
)

// Line holds one visual line's worth of Text/Input words and vertically
// aligns them to a shared baseline (§4.2).
type Line struct {
	parent   *Inline
	Previous *Line

	Children []box
	X, Y     float64
	Width    float64
	Height   float64
}

func newLine(parent *Inline, previous *Line) *Line {
	return &Line{parent: parent, Previous: previous}
}

func (l *Line) Layout() {
	l.Width = l.parent.Width
	l.X = l.parent.X

	if l.Previous != nil {
		l.Y = l.Previous.Y + l.Previous.Height
	} else {
		l.Y = l.parent.Y
	}

	for _, word := range l.Children {
		word.Layout()
	}

	if len(l.Children) == 0 {
		l.Height = 0
		return
	}

	maxAscent := 0.0
	for _, word := range l.Children {
		a := -word.(fontBox).font().Metrics().Ascent
		if a > maxAscent {
			maxAscent = a
		}
	}
	baseline := l.Y + 1.25*maxAscent
	for _, word := range l.Children {
		word.(fontBox).setY(baseline + word.(fontBox).font().Metrics().Ascent)
	}
	maxDescent := 0.0
	for _, word := range l.Children {
		d := word.(fontBox).font().Metrics().Descent
		if d > maxDescent {
			maxDescent = d
		}
	}
	l.Height = 1.25 * (maxAscent + maxDescent)
}

func (l *Line) boxY() float64      { return l.Y }
func (l *Line) boxHeight() float64 { return l.Height }

func (l *Line) Paint(display *[]*paint.Item) {
	for _, word := range l.Children {
		word.Paint(display)
	}
}

// fontBox is implemented by the word-level boxes (Text, Input) a Line
// vertically aligns: each carries its own font (for ascent/descent) and a
// settable baseline-relative y.
type fontBox interface {
	font() *text.Font
	setY(y float64)
}

// Text lays out a single measured word.
type Text struct {
	Node     *html.Node
	Word     string
	parent   *Line
	previous box

	Font *text.Font
	X, Y, Width, Height float64
}

func newText(node *html.Node, word string, parent *Line, previous box) *Text {
	return &Text{Node: node, Word: word, parent: parent, previous: previous}
}

func (t *Text) Layout() {
	t.Font = fontFor(t.Node, t.parent.parent.Fonts)
	t.Width = t.Font.MeasureText(t.Word)

	if t.previous != nil {
		if pf, ok := t.previous.(fontBox); ok {
			space := pf.font().MeasureText(" ")
			t.X = previousX(t.previous) + space + previousWidth(t.previous)
		}
	} else {
		t.X = t.parent.X
	}

	t.Height = text.Linespace(t.Font)
}

func (t *Text) font() *text.Font { return t.Font }
func (t *Text) setY(y float64)   { t.Y = y }
func (t *Text) boxY() float64    { return t.Y }
func (t *Text) boxHeight() float64 { return t.Height }

func (t *Text) Paint(display *[]*paint.Item) {
	*display = append(*display, &paint.Item{
		Kind:  paint.KindDrawText,
		X1:    t.X,
		Y1:    t.Y,
		Text:  t.Word,
		Font:  t.Font,
		Color: textColor(t.Node),
		Node:  t.Node,
	})
}

// Input lays out an <input>/<button> as a fixed-width box with its value
// (or, for a button, its text-node child's text) drawn inside.
type Input struct {
	Node     *html.Node
	parent   *Line
	previous box

	Font                *text.Font
	X, Y, Width, Height float64
}

func newInput(node *html.Node, parent *Line, previous box) *Input {
	return &Input{Node: node, parent: parent, previous: previous}
}

func (in *Input) Layout() {
	in.Font = fontFor(in.Node, in.parent.parent.Fonts)
	in.Width = styleLength(in.Node, "width", InputWidthPx)
	in.Height = styleLength(in.Node, "height", text.Linespace(in.Font))

	if in.previous != nil {
		if pf, ok := in.previous.(fontBox); ok {
			space := pf.font().MeasureText(" ")
			in.X = previousX(in.previous) + space + previousWidth(in.previous)
		}
	} else {
		in.X = in.parent.X
	}
}

func (in *Input) font() *text.Font  { return in.Font }
func (in *Input) setY(y float64)    { in.Y = y }
func (in *Input) boxY() float64     { return in.Y }
func (in *Input) boxHeight() float64 { return in.Height }

func (in *Input) Bounds() canvas.Rect {
	return canvas.Rect{Left: in.X, Top: in.Y, Right: in.X + in.Width, Bottom: in.Y + in.Height}
}

func (in *Input) Paint(display *[]*paint.Item) {
	rect := in.Bounds()
	var cmds []*paint.Item
	backgroundRect(in.Node, rect, &cmds)

	value := ""
	if in.Node.TagName == "input" {
		value = in.Node.Attributes["value"]
	} else if in.Node.TagName == "button" && len(in.Node.Children) > 0 {
		value = in.Node.Children[0].Text
	}

	cmds = append(cmds, &paint.Item{
		Kind:  paint.KindDrawText,
		X1:    in.X,
		Y1:    in.Y,
		Text:  value,
		Font:  in.Font,
		Color: textColor(in.Node),
		Node:  in.Node,
	})

	*display = append(*display, paint.ApplyVisualEffects(in.Node, cmds, rect)...)
}

// previousX/previousWidth read the X/Width the previous word box laid
// itself out at, without widening the box interface for every caller.
func previousX(b box) float64 {
	switch v := b.(type) {
	case *Text:
		return v.X
	case *Input:
		return v.X
	}
	return 0
}

func previousWidth(b box) float64 {
	switch v := b.(type) {
	case *Text:
		return v.Width
	case *Input:
		return v.Width
	}
	return 0
}
