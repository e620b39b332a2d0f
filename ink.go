package inkwell

import (
	"math"

	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/recognize"
	"github.com/inkwell-board/inkwell/render"
	"github.com/inkwell-board/inkwell/scene"
	"github.com/inkwell-board/inkwell/selection"
	"github.com/inkwell-board/inkwell/simplify"
)

// minShapeExtent is the smallest shape draft, in page units, that is kept
// on release. Smaller drafts are clicks.
const minShapeExtent = 2

// minRecognizePoints is the fewest simplified points a stroke needs before
// shape recognition is tried.
const minRecognizePoints = 4

// BeginStroke starts a live stroke on the active layer. A stroke already
// in progress is committed first.
func (e *Editor) BeginStroke(tool scene.Tool, color string, size float64) error {
	e.finishGesture()
	if e.doc.Page().ActiveLayer().Locked {
		return scene.ErrLayerLocked
	}
	e.live = scene.NewStroke(tool, color, size)
	e.smoother.Reset()
	e.dirty = true
	return nil
}

// ExtendStroke appends page point p to the live stroke. Ink widths follow
// pressure; eraser widths stay constant.
func (e *Editor) ExtendStroke(p geom.Point, pressure float64) {
	if e.live == nil || e.shaping {
		return
	}
	q := e.smoother.Push(p)
	size := e.live.Size
	if e.live.Tool != scene.Eraser {
		size = capture.Width(e.live.Size, pressure)
	}
	e.live.Points = append(e.live.Points, geom.Sample{X: q.X, Y: q.Y, Size: size})
	e.dirty = true
}

// CommitStroke ends the live stroke and records it on the active layer.
// Freehand ink is simplified first and, when smart snap is on and at least
// minRecognizePoints survive, offered to shape recognition. It returns the
// committed stroke, or nil if none was in progress.
func (e *Editor) CommitStroke() (*scene.Stroke, error) {
	s := e.live
	e.live = nil
	e.shaping = false
	if s == nil || len(s.Points) == 0 {
		return nil, nil
	}
	e.dirty = true

	if !s.IsShape && s.Tool != scene.Eraser {
		if e.tolerance > 0 {
			s.Points = simplify.Path(s.Points, e.tolerance)
		}
		if e.smartSnap && len(s.Points) >= minRecognizePoints {
			if out, shape, ok := e.recognizer.Apply(s.Points, s.Size); ok {
				logging.L().Debug("inkwell: stroke recognised", "shape", shape.Kind, "points", len(out))
				s.Points = out
				s.IsShape = true
			}
		}
	}

	page := e.doc.Page()
	if err := e.doc.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: page.Active, Stroke: s}); err != nil {
		return nil, err
	}
	return s, nil
}

// CancelStroke drops the live stroke without recording it.
func (e *Editor) CancelStroke() {
	if e.live != nil {
		e.live = nil
		e.shaping = false
		e.dirty = true
	}
}

// BeginShape starts a shape draft of figure f anchored at page point
// origin.
func (e *Editor) BeginShape(f recognize.Figure, origin geom.Point) error {
	if err := e.BeginStroke(scene.Ink, e.color, e.penSize); err != nil {
		return err
	}
	e.live.IsShape = true
	e.shaping = true
	e.figure = f
	e.shapeOrigin = origin
	e.shapeEnd = origin
	e.live.Points = e.recognizer.Outline(f, origin, origin, e.penSize, false)
	return nil
}

// UpdateShape moves the free corner of the shape draft to page point p.
// With constrain set, rectangles become squares, ellipses circles and
// lines snap to 45°.
func (e *Editor) UpdateShape(p geom.Point, constrain bool) {
	if !e.shaping || e.live == nil {
		return
	}
	e.shapeEnd = p
	e.live.Points = e.recognizer.Outline(e.figure, e.shapeOrigin, p, e.penSize, constrain)
	e.dirty = true
}

// CommitShape records the shape draft. Drafts smaller than a click are
// dropped.
func (e *Editor) CommitShape() (*scene.Stroke, error) {
	if !e.shaping || e.live == nil {
		return nil, nil
	}
	d := e.shapeEnd.Sub(e.shapeOrigin)
	if math.Abs(d.X) < minShapeExtent && math.Abs(d.Y) < minShapeExtent {
		e.CancelStroke()
		return nil, nil
	}
	return e.CommitStroke()
}

// EraseAt erases around page point p. In stroke mode it removes the single
// topmost object within radius; in pixel mode it paints a one-dab eraser
// stroke of diameter 2·radius on the active layer. It reports whether the
// document changed.
func (e *Editor) EraseAt(p geom.Point, radius float64, mode EraseMode) bool {
	if mode == EraseStroke {
		if !e.doc.EraseAt(p, radius) {
			return false
		}
		e.sel.Forget(e.doc.Page())
		return true
	}
	page := e.doc.Page()
	s := scene.NewStroke(scene.Eraser, "#000000", 2*radius)
	s.Points = []geom.Sample{{X: p.X, Y: p.Y, Size: 2 * radius}}
	return e.doc.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: page.Active, Stroke: s}) == nil
}

// eraseRadius converts the screen-space eraser size into a page radius.
func (e *Editor) eraseRadius() float64 {
	return e.eraserSize / e.view.Zoom()
}

// PointerDown starts the gesture of the active tool at screen point sp.
func (e *Editor) PointerDown(sp geom.Point, pressure float64) error {
	e.finishGesture()
	p := e.view.ToPage(sp)
	switch e.tool {
	case ToolPan:
		e.gesture = gesturePan
		e.grab = sp
	case ToolSelect:
		e.pressSelect(p, sp)
	case ToolText:
		if tb, _ := selection.HitText(e.doc.Page(), p); tb != nil {
			e.sel.SelectText(tb)
			e.startMove(sp, tb.Pos)
		} else {
			e.sel.Clear()
		}
		e.dirty = true
	case ToolShape:
		return e.BeginShape(e.figure, p)
	case ToolEraser:
		if e.eraseMode == EraseStroke {
			e.gesture = gestureErase
			e.EraseAt(p, e.eraseRadius(), EraseStroke)
			return nil
		}
		if err := e.BeginStroke(scene.Eraser, "#000000", e.eraserSize); err != nil {
			return err
		}
		e.ExtendStroke(p, pressure)
	default:
		if err := e.BeginStroke(e.drawTool, e.color, e.penSize); err != nil {
			return err
		}
		e.ExtendStroke(p, pressure)
	}
	return nil
}

// PointerMove continues the current gesture.
func (e *Editor) PointerMove(sp geom.Point, pressure float64) {
	p := e.view.ToPage(sp)
	switch e.gesture {
	case gesturePan:
		e.view.PanBy(sp.Sub(e.grab))
		e.grab = sp
		e.dirty = true
	case gestureErase:
		e.EraseAt(p, e.eraseRadius(), EraseStroke)
	case gestureMarquee:
		e.sel.Drag(sp)
		e.dirty = true
	case gestureMove:
		e.dragMove(sp)
	case gestureResize:
		e.dragResize(sp)
	default:
		if e.shaping {
			e.UpdateShape(p, e.constrain)
		} else {
			e.ExtendStroke(p, pressure)
		}
	}
}

// PointerUp ends the current gesture and commits whatever it produced.
func (e *Editor) PointerUp() error {
	return e.finishGesture()
}

// PointerCancel is PointerUp for a pointer the platform took away. Ink
// drawn so far is kept.
func (e *Editor) PointerCancel() error {
	return e.finishGesture()
}

// finishGesture closes any gesture in progress.
func (e *Editor) finishGesture() error {
	g := e.gesture
	e.gesture = gestureNone
	switch g {
	case gestureMarquee:
		e.sel.Release(e.doc.Page(), e.view)
		e.dirty = true
	case gestureMove, gestureResize:
		e.dirty = true
	}
	if e.shaping {
		_, err := e.CommitShape()
		return err
	}
	if e.live != nil {
		_, err := e.CommitStroke()
		return err
	}
	return nil
}

func (e *Editor) pressSelect(p, sp geom.Point) {
	e.dirty = true
	if im := e.sel.Image(); im != nil {
		tol := render.HandleSize / e.view.Zoom()
		if h := selection.HandleAt(im.Bounds(), p, tol); h != selection.NoHandle {
			e.gesture = gestureResize
			e.grab = sp
			e.grabBox = im.Bounds()
			e.grabHandle = h
			return
		}
	}
	switch e.sel.Press(e.doc.Page(), p, sp) {
	case selection.Text:
		e.startMove(sp, e.sel.Text().Pos)
	case selection.Image:
		e.startMove(sp, e.sel.Image().Pos)
	default:
		e.gesture = gestureMarquee
	}
}

func (e *Editor) startMove(sp, pos geom.Point) {
	e.gesture = gestureMove
	e.grab = sp
	e.grabPos = pos
}

// dragMove places the selected object at its start position plus the
// total pointer travel, converted to page units.
func (e *Editor) dragMove(sp geom.Point) {
	d := sp.Sub(e.grab).Mul(1 / e.view.Zoom())
	page := e.doc.Page()
	switch {
	case e.sel.Text() != nil:
		tb := e.sel.Text()
		tb.Pos = e.grabPos.Add(d)
		e.doc.Touch(page.LayerOfText(tb))
	case e.sel.Image() != nil:
		im := e.sel.Image()
		im.Pos = e.grabPos.Add(d)
		e.doc.Touch(page.LayerOfImage(im))
	}
}

func (e *Editor) dragResize(sp geom.Point) {
	im := e.sel.Image()
	if im == nil {
		return
	}
	d := sp.Sub(e.grab).Mul(1 / e.view.Zoom())
	e.setImageBox(im, selection.Resize(e.grabBox, e.grabHandle, d.X, d.Y))
}
