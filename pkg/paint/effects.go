package paint

import (
	"image/color"
	"strconv"
	"strings"

	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/html"
)

// ApplyVisualEffects wraps cmds (a node's own painted children) in the
// ClipRRect -> SaveLayer -> Transform chain derived from the node's computed
// style (§4.5 "Visual effects"). It returns a single-element slice holding
// the outer Transform item, and caches the Transform/SaveLayer back onto the
// node when either one needs compositing, mirroring the original's
// node.transform/node.save_layer fields so the compositor and the
// incremental-update path can find them again without re-walking styles.
func ApplyVisualEffects(node *html.Node, cmds []*Item, rect canvas.Rect) []*Item {
	opacity := styleFloat(node, "opacity", 1.0)
	blendMode, hasBlend := parseBlendMode(node.Style["mix-blend-mode"])
	translation := parseTransform(node.Style["transform"])

	borderRadius := styleLengthPx(node, "border-radius", 0)
	overflowClip := node.Style["overflow"] == "clip"

	clipRadius := 0.0
	if overflowClip {
		clipRadius = borderRadius
	}

	needsBlendIsolation := hasBlend || overflowClip || opacity != 1.0

	clip := &Item{
		Kind:     KindClipRRect,
		Rect:     rect,
		Radius:   clipRadius,
		Children: cmds,
		IsNoop:   !overflowClip,
		Node:     node,
	}

	saveLayer := &Item{
		Kind:       KindSaveLayer,
		Rect:       rect,
		Children:   []*Item{clip},
		IsNoop:     !needsBlendIsolation,
		Node:       node,
		LayerPaint: canvas.Paint{Color: color.White, Alpha: opacity, BlendMode: blendMode, Style: canvas.StyleFill},
	}

	transform := &Item{
		Kind:     KindTransform,
		Rect:     rect,
		Children: []*Item{saveLayer},
		IsNoop:   translation == nil,
		Node:     node,
	}
	if translation != nil {
		transform.Translation = translation
	}

	if transform.NeedsCompositing() || saveLayer.NeedsCompositing() {
		node.TransformItem = transform
		node.SaveLayerItem = saveLayer
	}

	return []*Item{transform}
}

// parseTransform extracts the (x, y) offset out of a "translate(Xpx, Ypx)"
// value. Any other value, or the empty string, means no transform (nil).
func parseTransform(value string) *Translation {
	if !strings.Contains(value, "translate") {
		return nil
	}
	l := strings.Index(value, "(")
	r := strings.Index(value, ")")
	if l < 0 || r < 0 || r < l {
		return nil
	}
	parts := strings.SplitN(value[l+1:r], ",", 2)
	if len(parts) != 2 {
		return nil
	}
	x, ok1 := parsePx(parts[0])
	y, ok2 := parsePx(parts[1])
	if !ok1 || !ok2 {
		return nil
	}
	return &Translation{X: x, Y: y}
}

func parsePx(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// parseBlendMode maps a CSS mix-blend-mode keyword to canvas.BlendMode. The
// second return is false for the default ("normal", unset, unrecognized),
// matching the reference engine's kSrcOver-is-not-an-isolation-trigger rule.
func parseBlendMode(value string) (canvas.BlendMode, bool) {
	switch value {
	case "multiply":
		return canvas.BlendMultiply, true
	case "screen":
		return canvas.BlendScreen, true
	case "darken":
		return canvas.BlendDarken, true
	case "lighten":
		return canvas.BlendLighten, true
	default:
		return canvas.BlendSrcOver, false
	}
}

func styleFloat(node *html.Node, prop string, def float64) float64 {
	v, ok := node.Style[prop]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// styleLengthPx reads a "<N>px" style value, defaulting to def when absent
// or unparseable.
func styleLengthPx(node *html.Node, prop string, def float64) float64 {
	v, ok := node.Style[prop]
	if !ok {
		return def
	}
	f, ok := parsePx(v)
	if !ok {
		return def
	}
	return f
}
