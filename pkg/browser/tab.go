// Package browser implements the two halves of the rendering pipeline
// (§4): Tab, running on the main thread (DOM, style, layout, paint,
// animations, tasks), and Browser, running on the compositor thread
// (layers, raster, draw, scroll, chrome) — connected by an immutable
// CommitData handoff guarded by a mutex.
package browser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"tinybrowser/pkg/animation"
	"tinybrowser/pkg/html"
	"tinybrowser/pkg/js"
	"tinybrowser/pkg/layout"
	"tinybrowser/pkg/net"
	"tinybrowser/pkg/paint"
	"tinybrowser/pkg/style"
	"tinybrowser/pkg/task"
	"tinybrowser/pkg/text"
)

// Tab owns everything that runs on the main thread for one browsing
// context: the DOM, the style/layout/paint pipeline, its task runner, its
// active animations, and the history stack it navigates through.
type Tab struct {
	browser *Browser
	config  Config

	taskRunner task.Runner
	fonts      *text.Service
	net        *net.Client

	doc     *html.Document
	url     string
	history []string

	scroll             float64
	scrollChangedInTab bool
	needsRender        bool
	needsLayout        bool
	needsPaint         bool
	focus              *html.Node

	displayList []*paint.Item
	docLayout   *layout.Document

	animations       *animation.Set
	compositedUpdates []CompositedUpdate

	// scrollBehavior mirrors the body element's computed "scroll-behavior"
	// property (§3 Animation "Scroll", §4.9 step 2); "auto" until render()
	// finds the property set.
	scrollBehavior string
	// scrollAnimation is the in-flight smooth-scroll animation started by
	// Scroll/RunAnimationFrame, nil when no smooth scroll is running.
	scrollAnimation *animation.Scroll

	jsEngine *js.Engine
}

// CompositedUpdate is a composited-only animation tick, carried from Tab to
// Browser inside a commit so the compositor can replay it without a
// re-raster (§4.7 "Incremental update").
type CompositedUpdate struct {
	Node      *html.Node
	Transform *paint.Item
	SaveLayer *paint.Item
}

// NewTab creates a Tab bound to the given Browser and configuration.
func NewTab(b *Browser, config Config, fonts *text.Service) *Tab {
	client, _ := net.NewClient()
	t := &Tab{
		browser:        b,
		config:         config,
		fonts:          fonts,
		net:            client,
		animations:     animation.NewSet(),
		scrollBehavior: "auto",
	}
	if config.SingleThreaded {
		t.taskRunner = task.NewSingleThreaded()
	} else {
		r := task.NewThreaded()
		r.Start()
		t.taskRunner = r
	}
	return t
}

// SetNeedsRender marks the whole style/layout/paint pipeline dirty.
func (t *Tab) SetNeedsRender() {
	t.needsRender = true
	t.browser.SetNeedsAnimationFrame(t)
}

// SetNeedsLayout marks layout (and therefore paint) dirty without forcing a
// full style recompute.
func (t *Tab) SetNeedsLayout() {
	t.needsLayout = true
	t.browser.SetNeedsAnimationFrame(t)
}

// SetNeedsPaint marks only paint dirty, e.g. for a composited-only style
// change that doesn't affect layout.
func (t *Tab) SetNeedsPaint() {
	t.needsPaint = true
	t.browser.SetNeedsAnimationFrame(t)
}

// SetNeedsAnimation implements animation.Notifier: a running animation
// asks for another layout and paint (style is not recomputed, so the
// animated value in node.Style is what layout sees), or, when composited is
// true, for paint only, queueing the node's new effect parameters as a
// composited-only update this frame.
func (t *Tab) SetNeedsAnimation(node *html.Node, composited bool) {
	if composited && t.config.UseCompositing() {
		t.needsPaint = true
		t.compositedUpdates = append(t.compositedUpdates, CompositedUpdate{
			Node:      node,
			Transform: asItem(node.TransformItem),
			SaveLayer: asItem(node.SaveLayerItem),
		})
		t.browser.SetNeedsAnimationFrame(t)
		return
	}
	t.SetNeedsLayout()
}

func asItem(v any) *paint.Item {
	if v == nil {
		return nil
	}
	return v.(*paint.Item)
}

// Load navigates the tab to url, fetching the document, its stylesheets and
// scripts, resetting scroll and history-relative state, and running scripts
// once the initial DOM is in place (§4.9 "load").
func (t *Tab) Load(targetURL, payload string) error {
	t.taskRunner.ClearPendingTasks()
	t.history = append(t.history, targetURL)

	referrer := t.url
	headers, body, err := t.net.Request(targetURL, referrer, payload)
	if err != nil {
		return fmt.Errorf("tab: loading %s: %w", targetURL, err)
	}

	doc, err := html.Parse(body)
	if err != nil {
		return fmt.Errorf("tab: parsing %s: %w", targetURL, err)
	}

	t.url = targetURL
	t.doc = doc
	t.scroll = 0
	t.animations = animation.NewSet()

	t.collectResources(doc)
	t.runScripts(doc, headers["content-security-policy"])

	t.SetNeedsRender()
	return nil
}

// ScheduleTask implements js.Host: a fired setTimeout/requestAnimationFrame
// callback runs as one task on this tab's own task runner, serialized with
// every other task the same way a click or keypress is (§4.9 "Timeouts").
func (t *Tab) ScheduleTask(fn func()) {
	t.taskRunner.ScheduleTask(task.New(fn))
}

// RequestAnimationFrame implements js.Host.
func (t *Tab) RequestAnimationFrame() {
	t.browser.SetNeedsAnimationFrame(t)
}

// collectResources walks the parsed tree for <link rel=stylesheet href> and
// <script src> references, fetches each, and appends their source into the
// document's Stylesheets/Scripts lists alongside any inline <style>/<script>
// bodies already present as text children.
func (t *Tab) collectResources(doc *html.Document) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.TagName {
			case "link":
				if rel, _ := n.GetAttribute("rel"); rel == "stylesheet" {
					if href, ok := n.GetAttribute("href"); ok {
						if full, err := net.ResolveURL(href, t.url); err == nil {
							if _, cssText, err := t.net.Request(full, t.url, ""); err == nil {
								doc.Stylesheets = append(doc.Stylesheets, cssText)
							}
						}
					}
				}
			case "style":
				doc.Stylesheets = append(doc.Stylesheets, inlineText(n))
			case "script":
				if src, ok := n.GetAttribute("src"); ok && src != "" {
					if full, err := net.ResolveURL(src, t.url); err == nil {
						if _, jsText, err := t.net.Request(full, t.url, ""); err == nil {
							doc.Scripts = append(doc.Scripts, jsText)
						}
					}
				} else {
					doc.Scripts = append(doc.Scripts, inlineText(n))
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Root)
}

func inlineText(n *html.Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type == html.TextNode {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func (t *Tab) runScripts(doc *html.Document, cspHeader string) {
	engine := js.New()
	engine.SetHost(t)
	engine.SetNetwork(t.net, t.url, cspHeader)
	t.jsEngine = engine
	if len(doc.Scripts) == 0 {
		return
	}
	if err := engine.Execute(doc); err != nil {
		// A script error shouldn't sink the page: it is printed (the error
		// names the failing script by its index) and loading continues.
		fmt.Fprintln(os.Stderr, "script error:", err)
	}
}

// Render runs whichever of style/layout/paint is dirty, in that order,
// clearing only the flags that actually ran (§4.9 "render").
func (t *Tab) Render() {
	if !t.needsRender && !t.needsLayout && !t.needsPaint {
		return
	}

	if t.needsRender {
		style.Run(t.doc, t.animations, t)
		if body := findBody(t.doc.Root); body != nil {
			if behavior, ok := body.Style["scroll-behavior"]; ok {
				t.scrollBehavior = behavior
			}
		}
		t.needsLayout = true
		t.needsRender = false
	}

	if t.needsLayout {
		t.docLayout = layout.NewDocument(t.doc.Root, t.fonts)
		t.docLayout.Layout()
		t.needsPaint = true
		t.needsLayout = false
	}

	if t.needsPaint {
		t.displayList = t.docLayout.Paint()
		t.needsPaint = false
	}
}

// RunAnimationFrame runs one requestAnimationFrame tick: reconciles scroll
// against the Browser's last-known value — starting a ScrollAnimation for
// scroll-behavior:smooth, or jumping straight there for "auto" — ticks any
// in-flight scroll animation and every running CSS transition, renders,
// clamps scroll against the new content height, and commits the result to
// the Browser (§4.9 "run_animation_frame", §9, S1 "Smooth scroll").
func (t *Tab) RunAnimationFrame(scroll float64) {
	if !t.scrollChangedInTab && t.scrollAnimation == nil && scroll != t.scroll {
		t.startScroll(scroll)
	}

	if t.scrollAnimation != nil {
		if !t.scrollAnimation.Animate() {
			t.scrollAnimation = nil
		}
	}

	t.animations.Tick()
	t.Render()

	contentHeight := 0.0
	if t.docLayout != nil {
		contentHeight = t.docLayout.Height
	}
	clamped := ClampScroll(t.scroll, contentHeight)
	if clamped != t.scroll {
		t.scrollChangedInTab = true
	}
	t.scroll = clamped

	t.commit()
}

func (t *Tab) commit() {
	updates := make([]CompositedUpdate, len(t.compositedUpdates))
	copy(updates, t.compositedUpdates)
	t.compositedUpdates = nil

	data := CommitData{
		URL:                t.url,
		Scroll:             t.scroll,
		ScrollChangedInTab: t.scrollChangedInTab,
		ScrollBehavior:     t.scrollBehavior,
		Height:             0,
	}
	if t.docLayout != nil {
		data.Height = t.docLayout.Height
	}
	if len(t.displayList) > 0 {
		data.DisplayList = t.displayList
		t.displayList = nil
	}
	data.CompositedUpdates = updates

	t.scrollChangedInTab = false
	t.browser.Commit(t, data)
}

// ClampScroll restricts scroll to [0, max(0, contentHeight-viewportHeight)]
// where viewportHeight excludes the chrome strip; the tab applies it after
// every animation frame and to every Scroll target (§4.7 "clamp_scroll").
func ClampScroll(scroll, contentHeight float64) float64 {
	maxScroll := contentHeight - (Height - ChromePx)
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll < 0 {
		return 0
	}
	if scroll > maxScroll {
		return maxScroll
	}
	return scroll
}

// Scroll adjusts the tab's scroll offset by delta pixels (§4.9 "down" key
// handling): the target either jumps in immediately (scroll-behavior:auto)
// or is reached smoothly over a running animation.Scroll
// (scroll-behavior:smooth, S1), matching RunAnimationFrame's own step-2
// decision for a scroll that changed externally.
func (t *Tab) Scroll(delta float64) {
	contentHeight := 0.0
	if t.docLayout != nil {
		contentHeight = t.docLayout.Height
	}
	target := ClampScroll(t.scroll+delta, contentHeight)
	if t.scrollAnimation != nil {
		t.browser.SetNeedsAnimationFrame(t)
		return
	}
	t.startScroll(target)
}

// startScroll begins moving the tab's scroll offset to target: smoothly,
// via a new animation.Scroll, when the body's scroll-behavior is "smooth";
// otherwise it jumps straight there (§3 Animation "Scroll").
func (t *Tab) startScroll(target float64) {
	if target == t.scroll {
		return
	}
	if t.scrollBehavior == "smooth" {
		old := t.scroll
		t.scrollAnimation = animation.NewScroll(old, target, func(v float64) {
			t.scroll = v
			t.scrollChangedInTab = true
		}, func() {
			t.browser.SetNeedsAnimationFrame(t)
		})
		return
	}
	t.scroll = target
	t.scrollChangedInTab = true
	t.browser.SetNeedsAnimationFrame(t)
}

// findBody returns the first descendant of root tagged "body", or nil if
// the parsed document has none.
func findBody(root *html.Node) *html.Node {
	for _, c := range root.Children {
		if c.TagName == "body" {
			return c
		}
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

// Click dispatches a click at document coordinates (x, y+scroll): focuses
// an <input>, follows an <a href>, or submits the nearest ancestor <form>
// for a submit button (§4.9 "click").
func (t *Tab) Click(x, y float64) {
	if t.doc == nil || t.docLayout == nil {
		return
	}
	docY := y + t.scroll
	target := t.docLayout.NodeAt(x, docY)
	if target == nil {
		return
	}

	if t.jsEngine != nil && t.jsEngine.DispatchEvent(target, "click") {
		return
	}

	node := target
	for node != nil {
		switch node.TagName {
		case "a":
			if href, ok := node.GetAttribute("href"); ok {
				if full, err := net.ResolveURL(href, t.url); err == nil {
					t.Load(full, "")
				}
				return
			}
		case "input":
			t.focus = node
			node.Attributes["value"] = ""
			t.SetNeedsRender()
			return
		case "button":
			t.submitForm(node)
			return
		}
		node = node.Parent
	}
}

func (t *Tab) submitForm(button *html.Node) {
	form := button
	for form != nil && form.TagName != "form" {
		form = form.Parent
	}
	if form == nil {
		return
	}
	var parts []string
	collectInputs(form, &parts)
	action, _ := form.GetAttribute("action")
	full, err := net.ResolveURL(action, t.url)
	if err != nil {
		return
	}
	t.Load(full, strings.Join(parts, "&"))
}

func collectInputs(n *html.Node, parts *[]string) {
	if n.TagName == "input" {
		if name, ok := n.GetAttribute("name"); ok {
			value, _ := n.GetAttribute("value")
			*parts = append(*parts, fmt.Sprintf("%s=%s", urlEncode(name), urlEncode(value)))
		}
	}
	for _, c := range n.Children {
		collectInputs(c, parts)
	}
}

func urlEncode(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('+')
		default:
			sb.WriteString("%")
			sb.WriteString(strconv.FormatInt(int64(r), 16))
		}
	}
	return sb.String()
}

// Keypress appends ch to the focused <input>'s value, if any, and
// schedules a render.
func (t *Tab) Keypress(ch rune) {
	if t.focus == nil || t.focus.TagName != "input" {
		return
	}
	value, _ := t.focus.GetAttribute("value")
	t.focus.Attributes["value"] = value + string(ch)
	t.SetNeedsRender()
}

// GoBack navigates to the previous history entry, if any.
func (t *Tab) GoBack() {
	if len(t.history) < 2 {
		return
	}
	t.history = t.history[:len(t.history)-1]
	prev := t.history[len(t.history)-1]
	t.history = t.history[:len(t.history)-1]
	t.Load(prev, "")
}

