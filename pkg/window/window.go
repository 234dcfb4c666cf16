// Package window implements the window service (§6): a fyne-backed
// on-screen surface that presents each composited frame and forwards
// mouse/keyboard/scroll events to a Browser.
package window

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"tinybrowser/pkg/browser"
)

// surface is the raster widget the window displays; it owns the current
// frame image and forwards taps to the Browser as clicks.
type surface struct {
	widget.BaseWidget

	browser *browser.Browser
	raster  *canvas.Raster
	frame   image.Image
}

func newSurface(b *browser.Browser) *surface {
	s := &surface{browser: b}
	s.raster = canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
		if s.frame == nil {
			return color.White
		}
		bounds := s.frame.Bounds()
		if x >= bounds.Dx() || y >= bounds.Dy() {
			return color.White
		}
		return s.frame.At(bounds.Min.X+x, bounds.Min.Y+y)
	})
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

func (s *surface) MinSize() fyne.Size {
	return fyne.NewSize(float32(browser.Width), float32(browser.Height))
}

// Tapped implements fyne.Tappable, forwarding a click at the tap position
// to the Browser in window pixel coordinates.
func (s *surface) Tapped(ev *fyne.PointEvent) {
	s.browser.HandleClick(float64(ev.Position.X), float64(ev.Position.Y))
}

func (s *surface) present(img image.Image) {
	s.frame = img
	s.raster.Refresh()
}

// Window wraps a fyne window sized to the engine's fixed viewport and
// exposes it as a browser.Surface.
type Window struct {
	app     fyne.App
	win     fyne.Window
	surface *surface
}

// New creates a Window of the fixed (browser.Width, browser.Height) size
// and wires its input events to b.
func New(b *browser.Browser) *Window {
	a := app.New()
	w := a.NewWindow("tinybrowser")

	s := newSurface(b)
	w.SetContent(s)
	w.Resize(fyne.NewSize(float32(browser.Width), float32(browser.Height)))
	w.SetFixedSize(true)

	w.Canvas().SetOnTypedRune(func(r rune) {
		b.HandleKey(r)
	})
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyReturn, fyne.KeyEnter:
			b.HandleEnter()
		case fyne.KeyDown:
			b.HandleDown()
		}
	})

	return &Window{app: a, win: w, surface: s}
}

// Present implements browser.Surface: swaps in img as the window's current
// frame and asks fyne to redraw it.
func (w *Window) Present(img image.Image) {
	w.surface.present(img)
}

// Run blocks, showing the window and running fyne's event loop until it is
// closed.
func (w *Window) Run() {
	w.win.ShowAndRun()
}

// Tick repaints on a timer, as a fallback for backends where Present alone
// doesn't trigger a redraw promptly enough for a steady frame rate.
func (w *Window) Tick(interval time.Duration) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				w.surface.raster.Refresh()
			case <-done:
				t.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
