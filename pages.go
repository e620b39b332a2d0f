package inkwell

import (
	"image"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
)

// WheelStep is the zoom factor of one wheel notch.
const WheelStep = 1.1

// Undo reverts the newest action on the current page. It reports false
// when there is nothing to undo.
func (e *Editor) Undo() bool {
	e.finishGesture()
	if _, err := e.doc.Undo(); err != nil {
		return false
	}
	e.sel.Forget(e.doc.Page())
	return true
}

// Redo re-applies the newest undone action. It reports false when there is
// nothing to redo.
func (e *Editor) Redo() bool {
	e.finishGesture()
	if _, err := e.doc.Redo(); err != nil {
		return false
	}
	e.sel.Forget(e.doc.Page())
	return true
}

// History returns the position in, and total length of, the current page's
// history.
func (e *Editor) History() (current, total int) {
	return e.doc.Page().History()
}

// ScrubHistory undoes or redoes until target actions are applied. Targets
// outside the history are clamped.
func (e *Editor) ScrubHistory(target int) {
	cur, total := e.History()
	target = min(max(target, 0), total)
	for ; cur > target; cur-- {
		e.Undo()
	}
	for ; cur < target; cur++ {
		e.Redo()
	}
}

// AddPage appends a page and switches to it.
func (e *Editor) AddPage() int {
	i := e.doc.AddPage()
	_ = e.SwitchPage(i)
	return i
}

// SwitchPage makes page i current, finishing any gesture, clearing the
// selection and resetting the view.
func (e *Editor) SwitchPage(i int) error {
	e.finishGesture()
	if err := e.doc.SwitchPage(i); err != nil {
		return err
	}
	e.sel.Clear()
	e.view.Reset()
	e.touched()
	return nil
}

// DeletePage removes page i. The last page cannot be deleted.
func (e *Editor) DeletePage(i int) error {
	e.finishGesture()
	page := e.doc.Page()
	if err := e.doc.DeletePage(i); err != nil {
		return err
	}
	if e.doc.Page() != page {
		e.sel.Clear()
		e.view.Reset()
	}
	e.dirty = true
	return nil
}

// ClearPage empties every layer of the current page and drops its
// history.
func (e *Editor) ClearPage() {
	e.finishGesture()
	e.doc.ClearPage()
	e.sel.Clear()
	e.dirty = true
}

// PageCount returns the number of pages.
func (e *Editor) PageCount() int { return len(e.doc.Pages) }

// CurrentPage returns the index of the current page.
func (e *Editor) CurrentPage() int { return e.doc.Current() }

// Thumbnail renders page i flattened at w×h.
func (e *Editor) Thumbnail(i, w, h int) (image.Image, error) {
	if i < 0 || i >= len(e.doc.Pages) {
		return nil, scene.ErrNoSuchPage
	}
	return e.rend.Thumbnail(e.doc.Pages[i], w, h), nil
}

// AddLayer appends a layer to the current page and makes it active.
func (e *Editor) AddLayer(name string) int {
	return e.doc.AddLayer(name)
}

// SetActiveLayer selects the layer new content goes to.
func (e *Editor) SetActiveLayer(i int) error {
	page := e.doc.Page()
	if _, err := page.Layer(i); err != nil {
		return err
	}
	page.Active = i
	e.touched()
	return nil
}

// SetLayerVisible shows or hides layer i. Hidden layers neither render nor
// take part in hit testing.
func (e *Editor) SetLayerVisible(i int, visible bool) error {
	l, err := e.doc.Page().Layer(i)
	if err != nil {
		return err
	}
	l.Visible = visible
	if !visible {
		e.sel.Forget(e.doc.Page())
	}
	e.touched()
	return nil
}

// SetLayerLocked locks or unlocks layer i.
func (e *Editor) SetLayerLocked(i int, locked bool) error {
	l, err := e.doc.Page().Layer(i)
	if err != nil {
		return err
	}
	l.Locked = locked
	e.touched()
	return nil
}

// SetLayerOpacity sets the opacity of layer i, clamped to [0, 1].
func (e *Editor) SetLayerOpacity(i int, o float64) error {
	l, err := e.doc.Page().Layer(i)
	if err != nil {
		return err
	}
	l.Opacity = min(max(o, 0), 1)
	e.touched()
	return nil
}

// SetZoom zooms about the viewport centre.
func (e *Editor) SetZoom(z float64) {
	e.view.ZoomTo(z, e.center())
	e.dirty = true
}

// ZoomAt scales the zoom by factor about screen point pivot.
func (e *Editor) ZoomAt(factor float64, pivot geom.Point) {
	e.view.ZoomAt(factor, pivot)
	e.dirty = true
}

// Wheel zooms one notch about pivot: in for negative delta, out for
// positive.
func (e *Editor) Wheel(pivot geom.Point, delta float64) {
	switch {
	case delta < 0:
		e.ZoomAt(WheelStep, pivot)
	case delta > 0:
		e.ZoomAt(1/WheelStep, pivot)
	}
}

// SetPan sets the screen offset of the page origin.
func (e *Editor) SetPan(p geom.Point) {
	e.view.SetPan(p)
	e.dirty = true
}

// ResetView restores zoom 1 and the default pan.
func (e *Editor) ResetView() {
	e.view.Reset()
	e.dirty = true
}

func (e *Editor) center() geom.Point {
	return geom.Pt(float64(e.viewW)/2, float64(e.viewH)/2)
}
