package layout

import (
	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
)

// NodeAt returns the DOM node of the innermost box containing document
// point (x, y), or nil if the point falls outside the page — used by
// Tab.Click to find what was clicked (§4.9 "click").
func (d *Document) NodeAt(x, y float64) *html.Node {
	if d.Child == nil {
		return nil
	}
	return blockNodeAt(d.Child, x, y)
}

func contains(r canvas.Rect, x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

func blockNodeAt(b *Block, x, y float64) *html.Node {
	if !contains(b.Bounds(), x, y) {
		return nil
	}
	for i := len(b.Children) - 1; i >= 0; i-- {
		switch c := b.Children[i].(type) {
		case *Block:
			if n := blockNodeAt(c, x, y); n != nil {
				return n
			}
		case *Inline:
			if n := inlineNodeAt(c, x, y); n != nil {
				return n
			}
		}
	}
	return b.Node
}

func inlineNodeAt(in *Inline, x, y float64) *html.Node {
	if !contains(in.Bounds(), x, y) {
		return nil
	}
	for i := len(in.Children) - 1; i >= 0; i-- {
		line := in.Children[i]
		for j := len(line.Children) - 1; j >= 0; j-- {
			switch c := line.Children[j].(type) {
			case *Input:
				if contains(c.Bounds(), x, y) {
					return c.Node
				}
			case *Text:
				top := c.Y - c.Height
				if x >= c.X && x <= c.X+c.Width && y >= top && y <= c.Y {
					return c.Node
				}
			}
		}
	}
	return in.Node
}
