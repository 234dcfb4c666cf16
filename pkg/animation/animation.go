// Package animation implements the CSS transition engine (§4.3, §9): per
// (node, property) frame-stepped linear animations driven off a node's style
// before/after snapshot, plus the scroll-to animation used for smooth
// scrolling.
package animation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"tinybrowser/pkg/html"
)

// RefreshRateSec is the frame interval the reference engine assumes when
// converting a CSS transition-duration into a frame count.
const RefreshRateSec = 0.016

// UseCompositing mirrors paint.UseCompositing; kept as a separate symbol so
// pkg/animation has no import on pkg/paint, matching the original's two
// independently-toggleable USE_COMPOSITING constants that happen to share a
// value in practice.
var UseCompositing = true

// Notifier receives the side effects an animation tick has on its tab: which
// node needs re-rendering, and whether the change can be handled by the
// compositor alone (no layout) or requires layout and paint.
type Notifier interface {
	SetNeedsAnimation(node *html.Node, composited bool)
}

// Animation is one running (node, property) animation. Animate advances it
// by one frame and reports whether it is still running; once it returns
// false the tab removes it from its animation set.
type Animation interface {
	Animate() bool
}

// Numeric animates a single numeric style property (opacity, width, ...)
// linearly between two values over a fixed number of frames.
//
// Matches the original's frame-count contract exactly: frame_count is
// incremented before the termination check, and the terminating call (the
// one where frame_count reaches num_frames) returns false without writing a
// final value — the animation's last visible frame is num_frames-1 steps in,
// never the literal target value.
type Numeric struct {
	node        *html.Node
	property    string
	isPx        bool
	oldValue    float64
	numFrames   int
	changePerFr float64
	tween       *gween.Tween
	frameCount  int
	notifier    Notifier
}

// NewNumeric constructs and immediately ticks a Numeric animation once (the
// original engine's animate() call inside __init__), so the caller always
// sees its first frame already applied to node.Style.
func NewNumeric(node *html.Node, property string, isPx bool, oldValue, newValue float64, numFrames int, notifier Notifier) *Numeric {
	n := &Numeric{
		node:        node,
		property:    property,
		isPx:        isPx,
		oldValue:    oldValue,
		numFrames:   numFrames,
		changePerFr: (newValue - oldValue) / float64(numFrames),
		tween:       gween.New(float32(oldValue), float32(newValue), float32(numFrames)*RefreshRateSec, ease.Linear),
		notifier:    notifier,
	}
	n.Animate()
	return n
}

func (n *Numeric) Animate() bool {
	n.frameCount++
	if n.frameCount >= n.numFrames {
		return false
	}
	value, _ := n.tween.Update(RefreshRateSec)
	updated := float64(value)
	if n.isPx {
		n.node.Style[n.property] = fmt.Sprintf("%gpx", updated)
	} else {
		n.node.Style[n.property] = fmt.Sprintf("%g", updated)
	}
	n.notifier.SetNeedsAnimation(n.node, n.property == "opacity" && UseCompositing)
	return true
}

// Translate animates the node's CSS transform: translate(x, y) linearly
// between two offsets.
type Translate struct {
	node       *html.Node
	oldX, oldY float64
	numFrames  int
	tweenX     *gween.Tween
	tweenY     *gween.Tween
	frameCount int
	notifier   Notifier
}

// NewTranslate constructs and immediately ticks a Translate animation once.
func NewTranslate(node *html.Node, oldX, oldY, newX, newY float64, numFrames int, notifier Notifier) *Translate {
	t := &Translate{
		node:      node,
		oldX:      oldX,
		oldY:      oldY,
		numFrames: numFrames,
		tweenX:    gween.New(float32(oldX), float32(newX), float32(numFrames)*RefreshRateSec, ease.Linear),
		tweenY:    gween.New(float32(oldY), float32(newY), float32(numFrames)*RefreshRateSec, ease.Linear),
		notifier:  notifier,
	}
	t.Animate()
	return t
}

func (t *Translate) Animate() bool {
	t.frameCount++
	if t.frameCount >= t.numFrames {
		return false
	}
	x, _ := t.tweenX.Update(RefreshRateSec)
	y, _ := t.tweenY.Update(RefreshRateSec)
	t.node.Style["transform"] = fmt.Sprintf("translate(%gpx,%gpx)", float64(x), float64(y))
	t.notifier.SetNeedsAnimation(t.node, UseCompositing)
	return true
}

// Scroll animates the viewport scroll offset over a fixed 30 frames. It
// takes OnScroll/RequestFrame callbacks instead of a *browser.Tab reference
// to avoid importing pkg/browser; RequestFrame corresponds to the owning
// tab's browser.set_needs_animation_frame(tab) call — note this takes the
// callback bound to the *tab*, not the animation itself, the original
// engine's own version passes self (the ScrollAnimation) where a Tab is
// expected, a type mismatch this port does not reproduce.
type Scroll struct {
	oldScroll, newScroll float64
	numFrames            int
	tween                *gween.Tween
	frameCount           int
	onScroll             func(newScroll float64)
	requestFrame         func()
}

// NewScroll constructs and immediately ticks a Scroll animation once.
func NewScroll(oldScroll, newScroll float64, onScroll func(float64), requestFrame func()) *Scroll {
	const numFrames = 30
	s := &Scroll{
		oldScroll:    oldScroll,
		newScroll:    newScroll,
		numFrames:    numFrames,
		tween:        gween.New(float32(oldScroll), float32(newScroll), float32(numFrames)*RefreshRateSec, ease.Linear),
		onScroll:     onScroll,
		requestFrame: requestFrame,
	}
	s.Animate()
	return s
}

func (s *Scroll) Animate() bool {
	s.frameCount++
	if s.frameCount >= s.numFrames {
		s.onScroll(s.newScroll)
		return false
	}
	value, _ := s.tween.Update(RefreshRateSec)
	s.onScroll(float64(value))
	s.requestFrame()
	return true
}

// GetTransition returns the transition duration for property, expressed in
// frames, from a node's "transition" style shorthand (comma-separated
// "<property> <duration>s" items), or ok=false if the property isn't listed.
func GetTransition(property string, style map[string]string) (float64, bool) {
	raw, ok := style["transition"]
	if !ok {
		return 0, false
	}
	for _, item := range strings.Split(raw, ",") {
		fields := strings.Fields(strings.TrimSpace(item))
		if len(fields) < 2 || fields[0] != property {
			continue
		}
		durStr := strings.TrimSuffix(fields[1], "s")
		secs, err := strconv.ParseFloat(durStr, 64)
		if err != nil {
			return 0, false
		}
		return secs / RefreshRateSec, true
	}
	return 0, false
}

// TryTransition reports the frame count an animation of property should run
// for, given the style before and after a re-style pass, or ok=false if no
// animation should start: the property must declare a transition with the
// same duration in both the old and new style, be present in both, and
// actually change value.
func TryTransition(property string, oldStyle, newStyle map[string]string) (int, bool) {
	oldFrames, ok := GetTransition(property, oldStyle)
	if !ok {
		return 0, false
	}
	numFrames, ok := GetTransition(property, newStyle)
	if !ok || numFrames != oldFrames {
		return 0, false
	}
	oldVal, hasOld := oldStyle[property]
	newVal, hasNew := newStyle[property]
	if !hasOld || !hasNew {
		return 0, false
	}
	if oldVal == newVal {
		return 0, false
	}
	return int(numFrames), true
}
