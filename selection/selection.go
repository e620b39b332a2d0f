// Package selection implements hit-testing and marquee selection over the
// objects of one page.
package selection

import (
	"slices"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
)

// Projector maps page coordinates to screen coordinates.
// *viewport.Space satisfies it.
type Projector interface {
	ToScreen(p geom.Point) geom.Point
}

// HitText returns the topmost text box on a visible layer whose bounding
// box contains the page point p, and the index of its layer. It returns
// nil, -1 when nothing is hit.
func HitText(page *scene.Page, p geom.Point) (*scene.TextBox, int) {
	for li := len(page.Layers) - 1; li >= 0; li-- {
		l := page.Layers[li]
		if !l.Visible {
			continue
		}
		for i := len(l.Texts) - 1; i >= 0; i-- {
			if l.Texts[i].Bounds().Contains(p) {
				return l.Texts[i], li
			}
		}
	}
	return nil, -1
}

// HitImage is HitText for image objects. Images without decoded pixels are
// hit by their box like any other.
func HitImage(page *scene.Page, p geom.Point) (*scene.ImageObject, int) {
	for li := len(page.Layers) - 1; li >= 0; li-- {
		l := page.Layers[li]
		if !l.Visible {
			continue
		}
		for i := len(l.Images) - 1; i >= 0; i-- {
			if l.Images[i].Bounds().Contains(p) {
				return l.Images[i], li
			}
		}
	}
	return nil, -1
}

// Marquee returns the strokes of visible, unlocked layers that have at
// least one point whose screen projection lies inside the screen rectangle
// r. Strokes are returned bottom layer first, in list order.
func Marquee(page *scene.Page, r geom.Rect, proj Projector) []*scene.Stroke {
	r = r.Canon()
	var out []*scene.Stroke
	for _, l := range page.Layers {
		if !l.Visible || l.Locked {
			continue
		}
		for _, s := range l.Strokes {
			for _, q := range s.Points {
				if r.Contains(proj.ToScreen(q.Point())) {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out
}

// Kind tells what a State currently holds.
type Kind int

const (
	None Kind = iota
	Strokes
	Text
	Image
)

func (k Kind) String() string {
	switch k {
	case Strokes:
		return "strokes"
	case Text:
		return "text"
	case Image:
		return "image"
	}
	return "none"
}

// State is the selection of an editing session. At most one of a stroke
// set, a text box or an image is selected at a time.
type State struct {
	strokes []*scene.Stroke
	text    *scene.TextBox
	image   *scene.ImageObject

	dragging bool
	from, to geom.Point
}

// Kind reports what is selected.
func (s *State) Kind() Kind {
	switch {
	case s.text != nil:
		return Text
	case s.image != nil:
		return Image
	case len(s.strokes) > 0:
		return Strokes
	}
	return None
}

// Empty reports whether nothing is selected.
func (s *State) Empty() bool { return s.Kind() == None }

// Strokes returns the selected strokes.
func (s *State) Strokes() []*scene.Stroke { return s.strokes }

// Text returns the selected text box or nil.
func (s *State) Text() *scene.TextBox { return s.text }

// Image returns the selected image or nil.
func (s *State) Image() *scene.ImageObject { return s.image }

// Clear drops the selection and any marquee in progress.
func (s *State) Clear() { *s = State{} }

// SelectText makes tb the whole selection.
func (s *State) SelectText(tb *scene.TextBox) {
	s.Clear()
	s.text = tb
}

// SelectImage makes im the whole selection.
func (s *State) SelectImage(im *scene.ImageObject) {
	s.Clear()
	s.image = im
}

// SelectStrokes replaces the selection with strokes.
func (s *State) SelectStrokes(strokes []*scene.Stroke) {
	s.Clear()
	s.strokes = strokes
}

// Contains reports whether st is part of the stroke selection.
func (s *State) Contains(st *scene.Stroke) bool {
	return slices.Contains(s.strokes, st)
}

// Press handles a pointer press of the selection tool at page point p
// (screen point sp). A text box wins over an image; missing both starts a
// new marquee drag, which discards the previous selection.
func (s *State) Press(page *scene.Page, p, sp geom.Point) Kind {
	if tb, _ := HitText(page, p); tb != nil {
		s.SelectText(tb)
		return Text
	}
	if im, _ := HitImage(page, p); im != nil {
		s.SelectImage(im)
		return Image
	}
	s.Clear()
	s.dragging = true
	s.from, s.to = sp, sp
	return None
}

// Drag extends the marquee to screen point sp.
func (s *State) Drag(sp geom.Point) {
	if s.dragging {
		s.to = sp
	}
}

// Release finishes a marquee drag and selects the strokes it touches.
// It reports whether a marquee was in progress.
func (s *State) Release(page *scene.Page, proj Projector) bool {
	if !s.dragging {
		return false
	}
	r := geom.RectFromPoints(s.from, s.to)
	s.dragging = false
	s.strokes = Marquee(page, r, proj)
	return true
}

// Marquee returns the screen rectangle of a drag in progress.
func (s *State) Marquee() (geom.Rect, bool) {
	if !s.dragging {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(s.from, s.to), true
}

// Forget removes objects that are no longer on page from the selection,
// which keeps it valid after undo, redo or deletion.
func (s *State) Forget(page *scene.Page) {
	if s.text != nil && page.LayerOfText(s.text) < 0 {
		s.text = nil
	}
	if s.image != nil && page.LayerOfImage(s.image) < 0 {
		s.image = nil
	}
	s.strokes = slices.DeleteFunc(s.strokes, func(st *scene.Stroke) bool {
		return page.LayerOfStroke(st) < 0
	})
}
