package layout

import (
	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/paint"
)

// Block lays its children out sequentially, one below the previous, then
// takes its own height from the sum of their heights unless a `height`
// style overrides it (§4.2).
type Block struct {
	Node     *html.Node
	Previous box
	Fonts    Fonts

	parentX, parentY, parentWidth float64

	Children []box
	X, Y     float64
	Width    float64
	Height   float64
}

func newBlock(node *html.Node, previous box, parent *Block, fonts Fonts) *Block {
	b := &Block{Node: node, Previous: previous, Fonts: fonts}
	if parent != nil {
		b.parentX, b.parentY, b.parentWidth = parent.X, parent.Y, parent.Width
	}
	return b
}

func (b *Block) Layout() {
	var previous box
	for _, child := range b.Node.Children {
		var next box
		if layoutMode(child) == "inline" {
			next = newInline(child, previous, b, b.Fonts)
		} else {
			next = newBlock(child, previous, b, b.Fonts)
		}
		b.Children = append(b.Children, next)
		previous = next
	}

	b.Width = styleLength(b.Node, "width", b.parentWidth)
	b.X = b.parentX

	if b.Previous != nil {
		b.Y = b.Previous.boxY() + b.Previous.boxHeight()
	} else {
		b.Y = b.parentY
	}

	for _, child := range b.Children {
		if blk, ok := child.(*Block); ok {
			blk.parentX, blk.parentY, blk.parentWidth = b.X, b.Y, b.Width
		}
		if inl, ok := child.(*Inline); ok {
			inl.parentX, inl.parentY, inl.parentWidth = b.X, b.Y, b.Width
		}
		child.Layout()
	}

	sum := 0.0
	for _, child := range b.Children {
		sum += child.boxHeight()
	}
	b.Height = styleLength(b.Node, "height", sum)
}

func (b *Block) boxY() float64      { return b.Y }
func (b *Block) boxHeight() float64 { return b.Height }

func (b *Block) Bounds() canvas.Rect {
	return canvas.Rect{Left: b.X, Top: b.Y, Right: b.X + b.Width, Bottom: b.Y + b.Height}
}

func (b *Block) Paint(display *[]*paint.Item) {
	rect := b.Bounds()
	var cmds []*paint.Item
	backgroundRect(b.Node, rect, &cmds)
	for _, child := range b.Children {
		child.Paint(&cmds)
	}
	*display = append(*display, paint.ApplyVisualEffects(b.Node, cmds, rect)...)
}

// Inline lays its DOM subtree out as a sequence of Lines, each holding
// TextLayout/InputLayout words, wrapping whenever a word would overflow the
// box's right edge (§4.2).
type Inline struct {
	Node     *html.Node
	Previous box
	Fonts    Fonts

	parentX, parentY, parentWidth float64

	Children []*Line
	X, Y     float64
	Width    float64
	Height   float64

	cursorX      float64
	previousWord box
}

func newInline(node *html.Node, previous box, parent *Block, fonts Fonts) *Inline {
	return &Inline{Node: node, Previous: previous, Fonts: fonts,
		parentX: parent.X, parentY: parent.Y, parentWidth: parent.Width}
}

func (in *Inline) Layout() {
	in.Width = styleLength(in.Node, "width", in.parentWidth)
	in.X = in.parentX

	if in.Previous != nil {
		in.Y = in.Previous.boxY() + in.Previous.boxHeight()
	} else {
		in.Y = in.parentY
	}

	in.newLine()
	in.recurse(in.Node)

	for _, line := range in.Children {
		line.Layout()
	}

	sum := 0.0
	for _, line := range in.Children {
		sum += line.Height
	}
	in.Height = styleLength(in.Node, "height", sum)
}

func (in *Inline) newLine() {
	in.previousWord = nil
	in.cursorX = in.X
	var last *Line
	if len(in.Children) > 0 {
		last = in.Children[len(in.Children)-1]
	}
	in.Children = append(in.Children, newLine(in, last))
}

func (in *Inline) recurse(node *html.Node) {
	if node.Type == html.TextNode {
		in.layoutText(node)
		return
	}
	if node.TagName == "br" {
		in.newLine()
		return
	}
	if node.TagName == "input" || node.TagName == "button" {
		in.layoutInput(node)
		return
	}
	for _, c := range node.Children {
		in.recurse(c)
	}
}

func (in *Inline) layoutText(node *html.Node) {
	font := fontFor(node, in.Fonts)
	for _, word := range splitWords(node.Text) {
		w := font.MeasureText(word)
		if in.cursorX+w > in.X+in.Width {
			in.newLine()
		}
		line := in.Children[len(in.Children)-1]
		t := newText(node, word, line, in.previousWord)
		line.Children = append(line.Children, t)
		in.previousWord = t
		in.cursorX += w + font.MeasureText(" ")
	}
}

func (in *Inline) layoutInput(node *html.Node) {
	w := float64(InputWidthPx)
	if in.cursorX+w > in.X+in.Width {
		in.newLine()
	}
	line := in.Children[len(in.Children)-1]
	input := newInput(node, line, in.previousWord)
	line.Children = append(line.Children, input)
	in.previousWord = input
	font := fontFor(node, in.Fonts)
	in.cursorX += w + font.MeasureText(" ")
}

func (in *Inline) boxY() float64      { return in.Y }
func (in *Inline) boxHeight() float64 { return in.Height }

func (in *Inline) Bounds() canvas.Rect {
	return canvas.Rect{Left: in.X, Top: in.Y, Right: in.X + in.Width, Bottom: in.Y + in.Height}
}

func (in *Inline) Paint(display *[]*paint.Item) {
	rect := in.Bounds()
	var cmds []*paint.Item
	backgroundRect(in.Node, rect, &cmds)
	for _, line := range in.Children {
		line.Paint(&cmds)
	}
	*display = append(*display, paint.ApplyVisualEffects(in.Node, cmds, rect)...)
}

// splitWords splits on any run of whitespace, matching Python's str.split()
// with no argument (no empty tokens for leading/trailing/repeated spaces).
func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
