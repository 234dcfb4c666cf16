package animation

import (
	"strconv"
	"strings"

	"tinybrowser/pkg/html"
)

// Set is the per-tab collection of running animations, keyed by the
// (node, property) pair the original keeps as tab.animations[node][property].
type Set struct {
	byNode map[*html.Node]map[string]Animation
}

// NewSet returns an empty animation set.
func NewSet() *Set {
	return &Set{byNode: make(map[*html.Node]map[string]Animation)}
}

// Add registers anim as the running animation for (node, property),
// replacing whatever previously ran on that slot.
func (s *Set) Add(node *html.Node, property string, anim Animation) {
	props, ok := s.byNode[node]
	if !ok {
		props = make(map[string]Animation)
		s.byNode[node] = props
	}
	props[property] = anim
}

// Tick advances every running animation by one frame and prunes the ones
// that finished (§4.3 "tick all animations and prune completed").
func (s *Set) Tick() {
	for node, props := range s.byNode {
		for property, anim := range props {
			if !anim.Animate() {
				delete(props, property)
			}
		}
		if len(props) == 0 {
			delete(s.byNode, node)
		}
	}
}

// Len reports how many animations are currently running, across all nodes.
func (s *Set) Len() int {
	n := 0
	for _, props := range s.byNode {
		n += len(props)
	}
	return n
}

// AnimateStyle inspects a node's style before/after a re-style pass and
// starts any transitions it declares for opacity, width and transform,
// registering them in set (§4.3 "animate_style"). oldStyle is nil for a
// node's first style computation, in which case no transition can start.
func AnimateStyle(node *html.Node, oldStyle, newStyle map[string]string, set *Set, notifier Notifier) {
	if oldStyle == nil {
		return
	}
	TryNumericAnimation(node, "opacity", oldStyle, newStyle, false, set, notifier)
	TryNumericAnimation(node, "width", oldStyle, newStyle, true, set, notifier)
	TryTransformAnimation(node, oldStyle, newStyle, set, notifier)
}

// TryNumericAnimation starts a Numeric animation for a single property if
// both styles declare a transition for it, the value actually changed, and
// the values parse as numbers (optionally pixel lengths).
func TryNumericAnimation(node *html.Node, property string, oldStyle, newStyle map[string]string, isPx bool, set *Set, notifier Notifier) {
	numFrames, ok := TryTransition(property, oldStyle, newStyle)
	if !ok {
		return
	}
	oldValue, ok1 := parseNumeric(oldStyle[property], isPx)
	newValue, ok2 := parseNumeric(newStyle[property], isPx)
	if !ok1 || !ok2 {
		return
	}
	set.Add(node, property, NewNumeric(node, property, isPx, oldValue, newValue, numFrames, notifier))
}

// TryTransformAnimation starts a Translate animation if both styles declare
// a "transform" transition, the transform actually changed, and both old and
// new values parse as translate(...) offsets.
func TryTransformAnimation(node *html.Node, oldStyle, newStyle map[string]string, set *Set, notifier Notifier) {
	numFrames, ok := TryTransition("transform", oldStyle, newStyle)
	if !ok {
		return
	}
	oldX, oldY, ok1 := parseTranslate(oldStyle["transform"])
	newX, newY, ok2 := parseTranslate(newStyle["transform"])
	if !ok1 || !ok2 {
		return
	}
	set.Add(node, "transform", NewTranslate(node, oldX, oldY, newX, newY, numFrames, notifier))
}

func parseNumeric(value string, isPx bool) (float64, bool) {
	if isPx {
		return parsePx(value)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return v, err == nil
}

func parsePx(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "px")
	v, err := strconv.ParseFloat(value, 64)
	return v, err == nil
}

// parseTranslate extracts the (x, y) offset out of a "translate(Xpx, Ypx)"
// value (duplicated from pkg/paint's parser rather than imported, to keep
// this package free of a dependency on pkg/paint's Translation type).
func parseTranslate(value string) (x, y float64, ok bool) {
	if !strings.Contains(value, "translate") {
		return 0, 0, false
	}
	l := strings.Index(value, "(")
	r := strings.Index(value, ")")
	if l < 0 || r < 0 || r < l {
		return 0, 0, false
	}
	parts := strings.SplitN(value[l+1:r], ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, ok1 := parsePx(parts[0])
	y, ok2 := parsePx(parts[1])
	return x, y, ok1 && ok2
}
