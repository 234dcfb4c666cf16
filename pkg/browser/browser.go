package browser

import (
	"image"
	"image/color"
	"sync"
	"time"

	"tinybrowser/pkg/animation"
	"tinybrowser/pkg/canvas"
	"tinybrowser/pkg/compositor"
	"tinybrowser/pkg/paint"
	"tinybrowser/pkg/task"
	"tinybrowser/pkg/text"
)

// Viewport/chrome constants (§1, §2). CHROME_PX and SCROLL_STEP are not
// defined in this spec's own text — they carry over, unchanged, from the
// reference engine's earlier chapters.
const (
	Width      = 800
	Height     = 600
	ChromePx   = 100
	scrollStep = 100.0
)

// Surface is the minimal display sink a Browser draws its composited frame
// to — satisfied by pkg/window's fyne-backed implementation, and trivially
// by a no-op in tests.
type Surface interface {
	Present(img image.Image)
}

// Browser owns everything that runs on the compositor thread: the tab
// list, the active tab's most recent commit, the layer assignment, and the
// chrome UI (address bar and back button) (§4.7, §4.9 "Browser").
type Browser struct {
	config Config
	fonts  *text.Service
	window Surface

	mu sync.Mutex

	tabs      []*Tab
	activeTab *Tab

	// Fields below are guarded by mu: everything a commit can touch.
	url                 string
	scroll              float64
	scrollBehavior      string
	activeTabHeight     float64
	pendingDisplayList  []*paint.Item
	pendingUpdates      []CompositedUpdate
	needsAnimationFrame bool
	needsComposite      bool
	needsDraw           bool

	compositor *compositor.Compositor
	rootCanvas *canvas.Canvas
	chrome     *canvas.Canvas

	focusAddressBar bool
	addressBarText  string

	animationTicker task.Runner
}

// New creates a Browser with its own compositor-thread task runner. It does
// not start the animation-frame loop; ScheduleAnimationFrame does that.
func New(config Config, fonts *text.Service, window Surface) *Browser {
	// --disable_compositing must gate the actual needs_compositing
	// predicate (paint.UseCompositing) and the animation notifier's
	// composited-update path (animation.UseCompositing), not just the
	// Config.UseCompositing() check Tab.SetNeedsAnimation makes (§9).
	paint.UseCompositing = config.UseCompositing()
	animation.UseCompositing = config.UseCompositing()
	compositor.ShowBorders = config.ShowCompositedLayerBorders

	b := &Browser{
		config:     config,
		fonts:      fonts,
		window:     window,
		compositor: compositor.New(),
		rootCanvas: canvas.NewCanvas(Width, Height),
		chrome:     canvas.NewCanvas(Width, ChromePx),
	}
	if config.SingleThreaded {
		b.animationTicker = task.NewSingleThreaded()
	} else {
		r := task.NewThreaded()
		r.Start()
		b.animationTicker = r
	}
	return b
}

// SetWindow attaches the display sink a Browser presents composited frames
// to. Used when the Surface implementation itself needs a *Browser to wire
// up input handlers, so the two can't be constructed in one step.
func (b *Browser) SetWindow(window Surface) {
	b.mu.Lock()
	b.window = window
	b.mu.Unlock()
}

// NewTab creates a new Tab, makes it active, and navigates it to url.
func (b *Browser) NewTab(url string) *Tab {
	t := NewTab(b, b.config, b.fonts)
	b.mu.Lock()
	b.tabs = append(b.tabs, t)
	b.activeTab = t
	b.mu.Unlock()
	t.Load(url, "")
	return t
}

// SetNeedsAnimationFrame records that tab has a pending reason to run
// another animation frame; the actual tick happens on
// ScheduleAnimationFrame's next fire, provided tab is still active.
func (b *Browser) SetNeedsAnimationFrame(tab *Tab) {
	b.mu.Lock()
	if tab == b.activeTab {
		b.needsAnimationFrame = true
	}
	b.mu.Unlock()
}

// ScheduleAnimationFrame starts a background loop that ticks the active
// tab's animation frame at the engine's fixed refresh rate whenever one has
// been requested (§4.9 "schedule_animation_frame"). It returns a stop
// function.
func (b *Browser) ScheduleAnimationFrame() func() {
	ticker := time.NewTicker(time.Duration(RefreshRateSeconds * float64(time.Second)))
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				b.tickAnimationFrame()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

// RefreshRateSeconds is the fixed interval between animation frames,
// mirroring the reference engine's REFRESH_RATE_SEC.
const RefreshRateSeconds = 0.016

func (b *Browser) tickAnimationFrame() {
	b.mu.Lock()
	if !b.needsAnimationFrame || b.activeTab == nil {
		b.mu.Unlock()
		return
	}
	b.needsAnimationFrame = false
	tab := b.activeTab
	scroll := b.scroll
	b.mu.Unlock()

	tab.taskRunner.ScheduleTask(task.New(func() {
		tab.RunAnimationFrame(scroll)
	}))
}

// Commit receives a Tab's immutable frame handoff under lock, updating only
// what the commit actually carries and setting the needs_composite /
// needs_raster / needs_draw cascade accordingly (§4.8).
func (b *Browser) Commit(tab *Tab, data CommitData) {
	b.mu.Lock()

	if tab != b.activeTab {
		b.mu.Unlock()
		return
	}

	b.url = data.URL
	b.activeTabHeight = data.Height
	b.scrollBehavior = data.ScrollBehavior
	if data.ScrollChangedInTab {
		b.scroll = data.Scroll
	}

	if len(data.DisplayList) > 0 {
		b.pendingDisplayList = data.DisplayList
		b.needsComposite = true
	}
	if len(data.CompositedUpdates) > 0 {
		b.pendingUpdates = data.CompositedUpdates
	}
	b.needsDraw = true
	b.mu.Unlock()

	b.animationTicker.ScheduleTask(task.New(func() {
		_ = b.CompositeRasterAndDraw()
	}))
}

// CompositeRasterAndDraw runs whichever of composite/raster/draw is dirty,
// in that cascade order (needs_composite implies needs_raster implies
// needs_draw), then presents the result (§4.7 "composite_raster_and_draw").
func (b *Browser) CompositeRasterAndDraw() error {
	b.mu.Lock()
	needsComposite := b.needsComposite
	needsDraw := b.needsDraw
	displayList := b.pendingDisplayList
	updates := b.pendingUpdates
	scroll := b.scroll
	b.pendingDisplayList = nil
	b.pendingUpdates = nil
	b.needsComposite = false
	b.needsDraw = false
	b.mu.Unlock()

	if !needsComposite && !needsDraw {
		return nil
	}

	if needsComposite {
		b.compositor.Composite(displayList)
		if err := b.compositor.RasterAll(); err != nil {
			return err
		}
	} else if len(updates) > 0 {
		compUpdates := make([]compositor.Update, len(updates))
		for i, u := range updates {
			compUpdates[i] = compositor.Update{Node: u.Node, Transform: u.Transform, SaveLayer: u.SaveLayer}
		}
		b.compositor.ApplyIncrementalUpdate(compUpdates)
	}

	b.draw(scroll)
	if b.window != nil {
		b.window.Present(b.rootCanvas.Image())
	}
	return nil
}

func (b *Browser) draw(scroll float64) {
	b.rootCanvas.Clear(color.White)
	b.compositor.DrawAll(b.rootCanvas, 0, ChromePx-scroll)

	b.rasterChrome()
	b.rootCanvas.DrawImage(b.chrome.Image(), 0, 0)
}

// HandleDown scrolls the active tab down by one scroll step.
func (b *Browser) HandleDown() {
	b.mu.Lock()
	tab := b.activeTab
	b.mu.Unlock()
	if tab == nil {
		return
	}
	tab.taskRunner.ScheduleTask(task.New(func() { tab.Scroll(scrollStep) }))
}

// HandleClick dispatches a mouse click at window coordinates (x, y): clicks
// within the chrome strip are handled here (the back button in the top-left
// 40×40 px, anywhere else focuses the address bar);
// clicks below it are forwarded to the active tab in document coordinates.
func (b *Browser) HandleClick(x, y float64) {
	if y < ChromePx {
		b.handleChromeClick(x, y)
		return
	}
	b.mu.Lock()
	tab := b.activeTab
	b.mu.Unlock()
	if tab == nil {
		return
	}
	docY := y - ChromePx
	tab.taskRunner.ScheduleTask(task.New(func() { tab.Click(x, docY) }))
}

func (b *Browser) handleChromeClick(x, y float64) {
	b.mu.Lock()
	var backTab *Tab
	switch {
	case y < 40 && x < 40:
		backTab = b.activeTab
	default:
		b.focusAddressBar = true
		b.addressBarText = ""
	}
	b.mu.Unlock()

	if backTab != nil {
		backTab.taskRunner.ScheduleTask(task.New(backTab.GoBack))
	}
}

// HandleKey dispatches a typed character either to the address bar, if
// focused, or to the active tab's focused input element.
func (b *Browser) HandleKey(ch rune) {
	b.mu.Lock()
	if b.focusAddressBar {
		b.addressBarText += string(ch)
		b.mu.Unlock()
		return
	}
	tab := b.activeTab
	b.mu.Unlock()
	if tab == nil {
		return
	}
	tab.taskRunner.ScheduleTask(task.New(func() { tab.Keypress(ch) }))
}

// HandleEnter confirms the address bar, navigating the active tab, or is a
// no-op when the bar isn't focused.
func (b *Browser) HandleEnter() {
	b.mu.Lock()
	if !b.focusAddressBar {
		b.mu.Unlock()
		return
	}
	b.focusAddressBar = false
	url := b.addressBarText
	tab := b.activeTab
	b.mu.Unlock()
	if tab == nil {
		return
	}
	tab.taskRunner.ScheduleTask(task.New(func() { tab.Load(url, "") }))
}

// rasterChrome redraws the fixed browser-UI strip: the address bar and
// its current URL/typed text, and a back-button glyph (§4.9 "raster_chrome").
func (b *Browser) rasterChrome() {
	b.mu.Lock()
	url := b.url
	focused := b.focusAddressBar
	typed := b.addressBarText
	b.mu.Unlock()

	b.chrome.Clear(color.White)
	b.chrome.DrawRect(canvas.Rect{Left: 0, Top: 0, Right: Width, Bottom: ChromePx},
		canvas.Paint{Color: color.White, Alpha: 1, Style: canvas.StyleFill})
	b.chrome.DrawLine(0, ChromePx, Width, ChromePx,
		canvas.Paint{Color: color.Black, Alpha: 1, StrokeWidth: 1})

	// Back button.
	b.chrome.DrawLine(15, 20, 15, 30, canvas.Paint{Color: color.Black, Alpha: 1, StrokeWidth: 2})
	b.chrome.DrawLine(15, 20, 25, 10, canvas.Paint{Color: color.Black, Alpha: 1, StrokeWidth: 2})
	b.chrome.DrawLine(15, 20, 25, 30, canvas.Paint{Color: color.Black, Alpha: 1, StrokeWidth: 2})

	barLabel := url
	if focused {
		barLabel = typed
	}
	b.chrome.DrawRect(canvas.Rect{Left: 40, Top: 50, Right: Width - 10, Bottom: 90},
		canvas.Paint{Color: color.Black, Alpha: 1, Style: canvas.StyleStroke, StrokeWidth: 1})
	if b.fonts != nil {
		font := b.fonts.GetFont(14, 0, 0)
		b.chrome.DrawText(45, 75, barLabel, font, color.Black)
	}
}
