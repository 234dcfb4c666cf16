// Package text implements the font service (§6): get_font, Font.measureText,
// Font.metrics and linespace. It prefers a loaded TTF face through gg/freetype
// but never hard-depends on one being present on disk, falling back to a
// fixed-size bitmap face so layout and paint always have something to measure
// against.
package text

import (
	"image"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Weight and Style mirror the subset of CSS font properties the layout
// engine cares about.
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

type Style int

const (
	StyleNormal Style = iota
	StyleItalic
)

// Metrics reports ascent (<=0) and descent (>=0) in the font's own pixel
// space, matching the skia convention the original engine relies on.
type Metrics struct {
	Ascent  float64
	Descent float64
}

// Font measures text for one (size, weight, style) combination.
type Font struct {
	sizePx  float64
	weight  Weight
	style   Style
	face    font.Face
	ggFont  *gg.Context // scratch context used only for gg-backed measurement
}

// MeasureText returns the advance width of s, in pixels.
func (f *Font) MeasureText(s string) float64 {
	if f.ggFont != nil {
		w, _ := f.ggFont.MeasureString(s)
		return w
	}
	var total fixed.Int26_6
	for _, r := range s {
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			adv, _ = f.face.GlyphAdvance(' ')
		}
		total += adv
	}
	return float64(total) / 64
}

// Metrics returns the font's ascent/descent, ascent <= 0, descent >= 0.
func (f *Font) Metrics() Metrics {
	m := f.face.Metrics()
	return Metrics{
		Ascent:  -float64(m.Ascent) / 64,
		Descent: float64(m.Descent) / 64,
	}
}

// Linespace returns the recommended distance between successive baselines.
func Linespace(f *Font) float64 {
	m := f.Metrics()
	return (m.Descent - m.Ascent) * 1.25
}

// Service hands out Font values for a (size, weight, style) triple, caching
// by key since layout re-measures the same combinations constantly.
type Service struct {
	mu    sync.Mutex
	cache map[fontKey]*Font
	// ttfPath, when non-empty, is loaded via gg for each new size. Left
	// empty by default so the service degrades gracefully to basicfont.
	ttfPath string
}

type fontKey struct {
	sizePx float64
	weight Weight
	style  Style
}

// NewService constructs a font service. ttfPath may be empty, in which case
// every Font is backed by basicfont.Face7x13 scaled to the requested size.
func NewService(ttfPath string) *Service {
	return &Service{cache: make(map[fontKey]*Font), ttfPath: ttfPath}
}

// GetFont returns (and caches) the Font for the given size/weight/style.
func (s *Service) GetFont(sizePx float64, weight Weight, style Style) *Font {
	key := fontKey{sizePx, weight, style}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.cache[key]; ok {
		return f
	}

	f := &Font{sizePx: sizePx, weight: weight, style: style}
	if s.ttfPath != "" {
		if face, err := gg.LoadFontFace(s.ttfPath, sizePx); err == nil {
			ctx := gg.NewContext(1, 1)
			ctx.SetFontFace(face)
			f.ggFont = ctx
			f.face = face
		}
	}
	if f.ggFont == nil {
		f.face = scaledBasicFont(sizePx)
	}
	s.cache[key] = f
	return f
}

// scaledBasicFont wraps basicfont.Face7x13 (a fixed 7x13px bitmap face) so it
// reports metrics scaled to sizePx, keeping proportions sane for the layout
// engine even though glyph rendering itself stays fixed-size.
func scaledBasicFont(sizePx float64) font.Face {
	return &scaledFace{base: basicfont.Face7x13, scale: sizePx / 13}
}

type scaledFace struct {
	base  font.Face
	scale float64
}

func (f *scaledFace) Close() error { return nil }

func (f *scaledFace) Glyph(dot fixed.Point26_6, r rune) (dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	return image.Rectangle{}, nil, image.Point{}, 0, false
}

func (f *scaledFace) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	b, a, ok := f.base.GlyphBounds(r)
	return scaleRect(b, f.scale), scaleFixed(a, f.scale), ok
}

func (f *scaledFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	a, ok := f.base.GlyphAdvance(r)
	return scaleFixed(a, f.scale), ok
}

func (f *scaledFace) Kern(r0, r1 rune) fixed.Int26_6 {
	return scaleFixed(f.base.Kern(r0, r1), f.scale)
}

func (f *scaledFace) Metrics() font.Metrics {
	m := f.base.Metrics()
	return font.Metrics{
		Height:     scaleFixed(m.Height, f.scale),
		Ascent:     scaleFixed(m.Ascent, f.scale),
		Descent:    scaleFixed(m.Descent, f.scale),
		XHeight:    scaleFixed(m.XHeight, f.scale),
		CapHeight:  scaleFixed(m.CapHeight, f.scale),
		CaretSlope: m.CaretSlope,
	}
}

func scaleFixed(v fixed.Int26_6, scale float64) fixed.Int26_6 {
	return fixed.Int26_6(float64(v) * scale)
}

func scaleRect(r fixed.Rectangle26_6, scale float64) fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: scaleFixed(r.Min.X, scale), Y: scaleFixed(r.Min.Y, scale)},
		Max: fixed.Point26_6{X: scaleFixed(r.Max.X, scale), Y: scaleFixed(r.Max.Y, scale)},
	}
}
