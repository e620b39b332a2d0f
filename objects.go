package inkwell

import (
	"errors"
	"image"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/scene"
	"github.com/inkwell-board/inkwell/selection"
)

// DuplicateOffset is how far duplicated objects are shifted, in page units.
const DuplicateOffset = 20

// ErrNotOnPage is returned for an object that is not on the current page.
var ErrNotOnPage = errors.New("inkwell: object is not on the current page")

// AddText places a text box with its top-left corner at page point pos on
// the active layer and selects it. Content is normalised to NFC. Blank
// content adds nothing and returns nil.
func (e *Editor) AddText(pos geom.Point, content string, style scene.TextStyle) (*scene.TextBox, error) {
	content = norm.NFC.String(content)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	tb := scene.NewTextBox(pos, content, style)
	page := e.doc.Page()
	if err := e.doc.Commit(scene.Action{Kind: scene.TextAdd, Layer: page.Active, Text: tb}); err != nil {
		return nil, err
	}
	e.sel.SelectText(tb)
	return tb, nil
}

// EditText replaces the content of tb. Blank content deletes the box as an
// undoable action; any other edit is applied in place.
func (e *Editor) EditText(tb *scene.TextBox, content string) error {
	page := e.doc.Page()
	li := page.LayerOfText(tb)
	if li < 0 {
		return ErrNotOnPage
	}
	content = norm.NFC.String(content)
	if strings.TrimSpace(content) == "" {
		idx := page.Layers[li].TextIndex(tb)
		if err := e.doc.Commit(scene.Action{Kind: scene.TextDelete, Layer: li, Text: tb, Index: idx}); err != nil {
			return err
		}
		e.sel.Forget(page)
		return nil
	}
	if page.Layers[li].Locked {
		return scene.ErrLayerLocked
	}
	tb.SetText(content)
	e.doc.Touch(li)
	return nil
}

// TextByID returns the text box with the given id on the current page.
func (e *Editor) TextByID(id uuid.UUID) (*scene.TextBox, bool) {
	for _, l := range e.doc.Page().Layers {
		for _, tb := range l.Texts {
			if tb.ID == id {
				return tb, true
			}
		}
	}
	return nil, false
}

// ImageByID returns the image object with the given id on the current
// page.
func (e *Editor) ImageByID(id uuid.UUID) (*scene.ImageObject, bool) {
	for _, l := range e.doc.Page().Layers {
		for _, im := range l.Images {
			if im.ID == id {
				return im, true
			}
		}
	}
	return nil, false
}

// AddImage places an image from src, raw encoded bytes or a base64 data
// URL, on the active layer and selects it. The object starts as an
// ImageFit square centred in the viewport and is fitted to the image's
// aspect ratio once decoding finishes in the background. A source that
// fails to decode stays as an empty placeholder.
func (e *Editor) AddImage(src []byte) (*scene.ImageObject, error) {
	if _, err := imaging.Bytes(src); err != nil {
		return nil, err
	}
	c := e.view.ToPage(geom.Pt(float64(e.viewW)/2, float64(e.viewH)/2))
	box := geom.Rect{X: c.X - ImageFit/2, Y: c.Y - ImageFit/2, W: ImageFit, H: ImageFit}
	im := scene.NewImageObject(src, box)

	page := e.doc.Page()
	if err := e.doc.Commit(scene.Action{Kind: scene.ImageAdd, Layer: page.Active, Image: im}); err != nil {
		return nil, err
	}
	e.pendingFit[im.ID] = true
	e.sel.SelectImage(im)
	e.decoder.Go(im.ID, src)
	return im, nil
}

// imageDecoded installs decoded pixels and fits a placeholder box to them,
// keeping its centre.
func (e *Editor) imageDecoded(r imaging.Result) {
	if r.Err != nil {
		delete(e.pendingFit, r.ID)
		return
	}
	fitted := false
	if e.pendingFit[r.ID] {
		delete(e.pendingFit, r.ID)
		if im, ok := e.doc.FindImage(r.ID); ok {
			fitBox(im, r.Image)
			fitted = true
		}
	}
	e.doc.SetPixels(r.ID, r.Image)
	if fitted {
		e.changed()
	}
	e.dirty = true
}

func fitBox(im *scene.ImageObject, img image.Image) {
	b := img.Bounds()
	c := im.Bounds().Center()
	im.W, im.H = imaging.Fit(float64(b.Dx()), float64(b.Dy()), ImageFit)
	im.Pos = geom.Pt(c.X-im.W/2, c.Y-im.H/2)
}

// setImageBox moves and resizes im to r.
func (e *Editor) setImageBox(im *scene.ImageObject, r geom.Rect) {
	delete(e.pendingFit, im.ID)
	im.Pos = geom.Pt(r.X, r.Y)
	im.W, im.H = r.W, r.H
	e.doc.Touch(e.doc.Page().LayerOfImage(im))
}

// MoveObject shifts the selected text box or image by (dx, dy) page units.
func (e *Editor) MoveObject(dx, dy float64) error {
	d := geom.Pt(dx, dy)
	page := e.doc.Page()
	switch {
	case e.sel.Text() != nil:
		tb := e.sel.Text()
		tb.Pos = tb.Pos.Add(d)
		e.doc.Touch(page.LayerOfText(tb))
	case e.sel.Image() != nil:
		im := e.sel.Image()
		b := im.Bounds()
		e.setImageBox(im, geom.Rect{X: b.X + d.X, Y: b.Y + d.Y, W: b.W, H: b.H})
	default:
		return ErrNothingSelected
	}
	return nil
}

// ResizeImage drags handle h of the selected image by (dx, dy) page units.
// Neither side shrinks below selection.MinSize.
func (e *Editor) ResizeImage(h selection.Handle, dx, dy float64) error {
	im := e.sel.Image()
	if im == nil {
		return ErrNothingSelected
	}
	e.setImageBox(im, selection.Resize(im.Bounds(), h, dx, dy))
	return nil
}

// DeleteSelection removes every selected object, one undoable action per
// object. Objects on locked layers stay. It reports whether anything was
// removed.
func (e *Editor) DeleteSelection() bool {
	page := e.doc.Page()
	removed := false
	for _, s := range e.sel.Strokes() {
		li := page.LayerOfStroke(s)
		if li < 0 {
			continue
		}
		idx := page.Layers[li].StrokeIndex(s)
		if e.doc.Commit(scene.Action{Kind: scene.StrokeErase, Layer: li, Stroke: s, Index: idx}) == nil {
			removed = true
		}
	}
	if tb := e.sel.Text(); tb != nil {
		if li := page.LayerOfText(tb); li >= 0 {
			idx := page.Layers[li].TextIndex(tb)
			removed = e.doc.Commit(scene.Action{Kind: scene.TextDelete, Layer: li, Text: tb, Index: idx}) == nil || removed
		}
	}
	if im := e.sel.Image(); im != nil {
		if li := page.LayerOfImage(im); li >= 0 {
			idx := page.Layers[li].ImageIndex(im)
			removed = e.doc.Commit(scene.Action{Kind: scene.ImageDelete, Layer: li, Image: im, Index: idx}) == nil || removed
		}
	}
	e.sel.Forget(page)
	e.dirty = true
	return removed
}

// SetSelectionSize sets the base size of the selected strokes. Per-point
// widths scale with it, so pressure variation survives.
func (e *Editor) SetSelectionSize(size float64) error {
	strokes := e.sel.Strokes()
	if len(strokes) == 0 {
		return ErrNothingSelected
	}
	if size <= 0 {
		return nil
	}
	for _, s := range strokes {
		if s.Size > 0 {
			k := size / s.Size
			for i := range s.Points {
				s.Points[i].Size *= k
			}
		}
		s.Size = size
	}
	e.touchStrokes(strokes)
	return nil
}

// SetSelectionOpacity sets the opacity of the selected strokes, clamped
// to [0, 1].
func (e *Editor) SetSelectionOpacity(o float64) error {
	strokes := e.sel.Strokes()
	if len(strokes) == 0 {
		return ErrNothingSelected
	}
	o = min(max(o, 0), 1)
	for _, s := range strokes {
		s.Opacity = o
	}
	e.touchStrokes(strokes)
	return nil
}

// DuplicateSelection copies the selected objects onto the active layer,
// offset by DuplicateOffset, and selects the copies.
func (e *Editor) DuplicateSelection() error {
	page := e.doc.Page()
	d := geom.Pt(DuplicateOffset, DuplicateOffset)
	switch e.sel.Kind() {
	case selection.Strokes:
		var copies []*scene.Stroke
		for _, s := range e.sel.Strokes() {
			c := s.Clone(d)
			if err := e.doc.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: page.Active, Stroke: c}); err != nil {
				return err
			}
			copies = append(copies, c)
		}
		e.sel.SelectStrokes(copies)
	case selection.Text:
		c := e.sel.Text().Clone(d)
		if err := e.doc.Commit(scene.Action{Kind: scene.TextAdd, Layer: page.Active, Text: c}); err != nil {
			return err
		}
		e.sel.SelectText(c)
	case selection.Image:
		src := e.sel.Image()
		b := src.Bounds()
		c := scene.NewImageObject(src.Source, geom.Rect{X: b.X + d.X, Y: b.Y + d.Y, W: b.W, H: b.H})
		if err := e.doc.Commit(scene.Action{Kind: scene.ImageAdd, Layer: page.Active, Image: c}); err != nil {
			return err
		}
		if img, ok := e.doc.Pixels(src.ID); ok {
			e.doc.SetPixels(c.ID, img)
		} else {
			e.decoder.Go(c.ID, c.Source)
		}
		e.sel.SelectImage(c)
	default:
		return ErrNothingSelected
	}
	return nil
}

// BringSelectionForward moves each selected stroke to the top of its
// layer.
func (e *Editor) BringSelectionForward() error {
	strokes := e.sel.Strokes()
	if len(strokes) == 0 {
		return ErrNothingSelected
	}
	page := e.doc.Page()
	for _, s := range strokes {
		if li := page.LayerOfStroke(s); li >= 0 {
			page.Layers[li].RaiseStroke(s)
		}
	}
	e.touchStrokes(strokes)
	return nil
}

// touchStrokes rebuilds each layer holding one of strokes once.
func (e *Editor) touchStrokes(strokes []*scene.Stroke) {
	page := e.doc.Page()
	seen := make(map[int]bool)
	for _, s := range strokes {
		li := page.LayerOfStroke(s)
		if li >= 0 && !seen[li] {
			seen[li] = true
			e.doc.Touch(li)
		}
	}
}
