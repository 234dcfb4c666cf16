// Package style runs the CSS cascade (reusing pkg/css's cascade engine
// wholesale) over a document and detects the before/after changes that start
// CSS transitions (§4.3).
package style

import (
	"tinybrowser/pkg/animation"
	"tinybrowser/pkg/css"
	"tinybrowser/pkg/html"
)

// Viewport dimensions the cascade evaluates media queries and percentage
// lengths against (§1, §2).
const (
	Width  = 800
	Height = 600
)

// Run recomputes style for every node in doc, starting any CSS transitions
// the recomputation triggers. It mirrors the original's top-down `style()`
// walk by delegating the cascade itself to css.ApplyStylesToDocument (which
// already performs that walk) and diffing each node's previous Style map
// against the freshly computed one before writing it back.
func Run(doc *html.Document, set *animation.Set, notifier animation.Notifier) {
	prev := snapshotStyles(doc.Root)
	computed := css.ApplyStylesToDocument(doc, Width, Height)
	writeBack(doc.Root, computed, prev, set, notifier)
}

// snapshotStyles captures every node's current Style map (nil for nodes that
// have never been styled) before the cascade overwrites it.
func snapshotStyles(node *html.Node) map[*html.Node]map[string]string {
	out := make(map[*html.Node]map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Style != nil {
			out[n] = n.Style
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(node)
	return out
}

// writeBack stores each node's freshly computed style onto node.Style and
// runs animation.AnimateStyle against the old/new pair.
func writeBack(node *html.Node, computed map[*html.Node]*css.Style, prev map[*html.Node]map[string]string, set *animation.Set, notifier animation.Notifier) {
	if s, ok := computed[node]; ok {
		oldStyle := prev[node]
		node.Style = cloneProps(s.Properties)
		animation.AnimateStyle(node, oldStyle, node.Style, set, notifier)
	}
	for _, c := range node.Children {
		writeBack(c, computed, prev, set, notifier)
	}
}

func cloneProps(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
