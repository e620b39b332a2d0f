package inkwell

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/persist"
	"github.com/inkwell-board/inkwell/recognize"
	"github.com/inkwell-board/inkwell/render"
	"github.com/inkwell-board/inkwell/scene"
	"github.com/inkwell-board/inkwell/selection"
	"github.com/inkwell-board/inkwell/viewport"
)

// ToolKind is the active pointer tool.
type ToolKind int

const (
	ToolDraw ToolKind = iota
	ToolEraser
	ToolSelect
	ToolText
	ToolShape
	ToolPan
)

var toolKindNames = [...]string{"draw", "eraser", "select", "text", "shape", "pan"}

func (t ToolKind) String() string {
	if t >= 0 && int(t) < len(toolKindNames) {
		return toolKindNames[t]
	}
	return fmt.Sprintf("ToolKind(%d)", int(t))
}

// ParseToolKind is the inverse of ToolKind.String.
func ParseToolKind(s string) (ToolKind, error) {
	for i, n := range toolKindNames {
		if n == s {
			return ToolKind(i), nil
		}
	}
	return ToolDraw, fmt.Errorf("inkwell: unknown tool %q", s)
}

// EraseMode selects what the eraser removes.
type EraseMode int

const (
	// EraseStroke removes whole objects, one per invocation.
	EraseStroke EraseMode = iota
	// ErasePixel paints a pixel-eraser stroke.
	ErasePixel
)

func (m EraseMode) String() string {
	if m == ErasePixel {
		return "pixel"
	}
	return "stroke"
}

// ParseEraseMode is the inverse of EraseMode.String.
func ParseEraseMode(s string) (EraseMode, error) {
	switch s {
	case "stroke":
		return EraseStroke, nil
	case "pixel":
		return ErasePixel, nil
	}
	return EraseStroke, fmt.Errorf("inkwell: unknown erase mode %q", s)
}

// Tool defaults.
const (
	DefaultColor      = "#e8e6e3"
	DefaultPenSize    = 3
	DefaultEraserSize = 20
	ImageFit          = 600
)

type gesture int

const (
	gestureNone gesture = iota
	gesturePan
	gestureErase
	gestureMarquee
	gestureMove
	gestureResize
)

// Editor is one editing session: a document plus every piece of tool,
// selection and view state that acts on it.
//
// Post may be called from any goroutine. Every other method must be called
// from the goroutine that calls Tick, usually the one that owns the
// display.
type Editor struct {
	doc  *scene.Document
	rend *render.Renderer
	view *viewport.Space

	viewW, viewH int
	smoother     *capture.Smoother
	smartSnap    bool
	recognizer   recognize.Config
	tolerance    float64

	tool       ToolKind
	drawTool   scene.Tool
	color      string
	penSize    float64
	eraserSize float64
	eraseMode  EraseMode
	figure     recognize.Figure
	textStyle  scene.TextStyle
	constrain  bool

	// live is the stroke being drawn, including shape drafts.
	live        *scene.Stroke
	shapeOrigin geom.Point
	shapeEnd    geom.Point
	shaping     bool

	gesture    gesture
	grab       geom.Point
	grabPos    geom.Point
	grabBox    geom.Rect
	grabHandle selection.Handle

	sel selection.State

	// pendingFit holds images still at their placeholder size.
	pendingFit map[uuid.UUID]bool

	dirty   bool
	unsaved bool
	frame   *gg.Pixmap
	frames  int

	mu     sync.Mutex
	queue  []Event
	closed bool

	decoder *imaging.Decoder
	store   persist.Store
	saver   *persist.Debouncer
	writes  sync.WaitGroup

	// saveSeq numbers snapshots as they are taken; written is the newest
	// one in the store.
	saveSeq uint64
	writeMu sync.Mutex
	written uint64
}

// New returns an Editor with one default page.
func New(opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	var ropts []render.Option
	ropts = append(ropts, render.WithDarkMode(o.dark))
	if o.fonts != nil {
		ropts = append(ropts, render.WithFonts(o.fonts))
	}
	if o.rng != nil {
		ropts = append(ropts, render.WithRand(o.rng))
	}

	e := &Editor{
		doc:        scene.NewDocument(o.pageW, o.pageH),
		rend:       render.New(o.pageW, o.pageH, ropts...),
		view:       viewport.New(),
		viewW:      o.viewW,
		viewH:      o.viewH,
		smoother:   capture.NewSmoother(o.smoothing),
		smartSnap:  o.smartSnap,
		recognizer: o.recognizer,
		tolerance:  o.tolerance,
		drawTool:   scene.Ink,
		color:      DefaultColor,
		penSize:    DefaultPenSize,
		eraserSize: DefaultEraserSize,
		textStyle:  scene.DefaultTextStyle(),
		pendingFit: make(map[uuid.UUID]bool),
		dirty:      true,
		store:      o.store,
	}
	e.decoder = imaging.NewDecoder(func(r imaging.Result) { e.Post(imageDecoded{r}) }, 0)
	if e.store != nil {
		e.saver = persist.NewDebouncer(o.saveDelay, func() { e.Post(autosave{}) })
	}
	e.doc.SetRasterizer(e.rend)
	e.doc.OnChange(e.changed)
	return e
}

// Document returns the edited document.
func (e *Editor) Document() *scene.Document { return e.doc }

// Renderer returns the renderer that owns the layer rasters.
func (e *Editor) Renderer() *render.Renderer { return e.rend }

// Viewport returns the screen mapping.
func (e *Editor) Viewport() *viewport.Space { return e.view }

// Selection returns the current selection.
func (e *Editor) Selection() *selection.State { return &e.sel }

// Live returns the stroke being drawn, or nil.
func (e *Editor) Live() *scene.Stroke { return e.live }

// Post queues ev for the next Tick. It is safe for concurrent use.
func (e *Editor) Post(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.queue = append(e.queue, ev)
}

// Tick applies every queued event in order and then renders at most one
// frame. It reports whether a frame was rendered.
func (e *Editor) Tick() bool {
	e.mu.Lock()
	evs := e.queue
	e.queue = nil
	e.mu.Unlock()

	for _, ev := range evs {
		if err := e.Apply(ev); err != nil {
			logging.L().Debug("inkwell: event rejected", "event", fmt.Sprintf("%T", ev), "err", err)
		}
	}
	if !e.dirty {
		return false
	}
	e.render()
	if len(evs) > 1 {
		logging.L().Debug("inkwell: coalesced frame", "events", len(evs))
	}
	return true
}

// Settle waits for every pending image decode and then ticks, so the
// document reflects all decoded pixels. Batch callers use it before
// exporting.
func (e *Editor) Settle() bool {
	e.decoder.Wait()
	return e.Tick()
}

// Apply runs one event immediately.
func (e *Editor) Apply(ev Event) error {
	return ev.apply(e)
}

// RequestRender marks the frame stale without rendering.
func (e *Editor) RequestRender() { e.dirty = true }

// Frame returns the current screen frame, rendering it first if it is
// stale.
func (e *Editor) Frame() image.Image {
	if e.dirty || e.frame == nil {
		e.render()
	}
	return e.frame
}

// Frames returns how many frames have been rendered.
func (e *Editor) Frames() int { return e.frames }

// ViewportSize returns the frame size.
func (e *Editor) ViewportSize() (w, h int) { return e.viewW, e.viewH }

// SetViewportSize changes the frame size.
func (e *Editor) SetViewportSize(w, h int) {
	if w > 0 && h > 0 {
		e.viewW, e.viewH = w, h
		e.dirty = true
	}
}

func (e *Editor) render() {
	pm := e.rend.Frame(e.doc.Page(), render.View{
		Width:  e.viewW,
		Height: e.viewH,
		Zoom:   e.view.Zoom(),
		Pan:    e.view.Pan(),
	}, e.live)
	render.DrawOverlay(pm, e.overlay())
	e.frame = pm
	e.dirty = false
	e.frames++
}

// overlay returns the selection chrome in screen space.
func (e *Editor) overlay() render.Overlay {
	var o render.Overlay
	for _, s := range e.sel.Strokes() {
		o.Boxes = append(o.Boxes, e.screenRect(s.Bounds().Inflate(s.Size/2)))
	}
	if tb := e.sel.Text(); tb != nil {
		o.Boxes = append(o.Boxes, e.screenRect(tb.Bounds()))
	}
	if im := e.sel.Image(); im != nil {
		b := e.screenRect(im.Bounds())
		o.Boxes = append(o.Boxes, b)
		for h := selection.N; h <= selection.NW; h++ {
			o.Handles = append(o.Handles, h.Point(b))
		}
	}
	o.Marquee, o.HasMarquee = e.sel.Marquee()
	return o
}

func (e *Editor) screenRect(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(
		e.view.ToScreen(geom.Pt(r.X, r.Y)),
		e.view.ToScreen(geom.Pt(r.MaxX(), r.MaxY())),
	)
}

// changed runs after every document mutation.
func (e *Editor) changed() {
	e.dirty = true
	e.unsaved = true
	e.scheduleSave()
}

// touched is changed for edits that bypass the document's history.
func (e *Editor) touched() { e.changed() }

// SetTool switches the pointer tool. Leaving the selection tool clears the
// selection; any gesture in progress is finished first.
func (e *Editor) SetTool(t ToolKind) {
	e.finishGesture()
	if t != ToolSelect {
		e.sel.Clear()
	}
	e.tool = t
	e.dirty = true
}

// Tool returns the active pointer tool.
func (e *Editor) Tool() ToolKind { return e.tool }

// SetDrawTool selects the stroke tool used by ToolDraw.
func (e *Editor) SetDrawTool(t scene.Tool) {
	if t != scene.Eraser {
		e.drawTool = t
	}
}

// SetColor sets the color of new strokes and text.
func (e *Editor) SetColor(c string) {
	e.color = c
	e.textStyle.Color = c
}

// SetPenSize sets the base size of new strokes and shapes.
func (e *Editor) SetPenSize(s float64) {
	if s > 0 {
		e.penSize = s
	}
}

// SetEraserSize sets the eraser diameter in screen pixels.
func (e *Editor) SetEraserSize(s float64) {
	if s > 0 {
		e.eraserSize = s
	}
}

// SetEraseMode selects stroke or pixel erasing.
func (e *Editor) SetEraseMode(m EraseMode) { e.eraseMode = m }

// SetFigure selects the figure drawn by ToolShape.
func (e *Editor) SetFigure(f recognize.Figure) { e.figure = f }

// SetTextStyle sets the style of new text boxes.
func (e *Editor) SetTextStyle(st scene.TextStyle) { e.textStyle = st }

// TextStyle returns the style of new text boxes.
func (e *Editor) TextStyle() scene.TextStyle { return e.textStyle }

// SetConstrain records the state of the constrain modifier (shift) used
// by the shape tool.
func (e *Editor) SetConstrain(on bool) { e.constrain = on }

// SetSmoothingMode changes input smoothing for the next stroke.
func (e *Editor) SetSmoothingMode(m capture.Mode) { e.smoother.SetMode(m) }

// SmoothingMode returns the input smoothing mode.
func (e *Editor) SmoothingMode() capture.Mode { return e.smoother.Mode() }

// SetSmartSnap enables or disables shape recognition.
func (e *Editor) SetSmartSnap(on bool) { e.smartSnap = on }

// SmartSnap reports whether shape recognition is on.
func (e *Editor) SmartSnap() bool { return e.smartSnap }

// SetDarkMode switches the theme and rebuilds every layer so highlighters
// pick up the matching blend.
func (e *Editor) SetDarkMode(dark bool) {
	if e.rend.DarkMode() == dark {
		return
	}
	e.rend.SetDarkMode(dark)
	e.doc.RebuildAll()
	e.dirty = true
}
