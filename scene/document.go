// Package scene holds the document model: pages of layers of strokes, text
// boxes and images, each page with its own undo and redo stacks.
//
// A Document is not safe for concurrent use. All mutation happens on the
// editor's event goroutine.
package scene

import (
	"image"
	"slices"

	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/internal/logging"
)

// PixelSource looks up decoded image pixels by image id.
type PixelSource interface {
	Pixels(id uuid.UUID) (image.Image, bool)
}

// Rasterizer rebuilds a layer's raster cache from its vector content.
type Rasterizer interface {
	Rebuild(l *Layer, px PixelSource)
}

// Document is the set of pages plus the decoded-pixel index shared by all
// image objects.
type Document struct {
	Pages []*Page

	current       int
	width, height int
	pixels        map[uuid.UUID]image.Image
	raster        Rasterizer
	onChange      func()
}

// NewDocument returns a document with one default page at the given page
// extent.
func NewDocument(width, height int) *Document {
	return &Document{
		Pages:  []*Page{NewPage()},
		width:  width,
		height: height,
		pixels: make(map[uuid.UUID]image.Image),
	}
}

// SetRasterizer installs the rasterizer and rebuilds every layer with it.
func (d *Document) SetRasterizer(r Rasterizer) {
	d.raster = r
	d.RebuildAll()
}

// OnChange registers fn to run after every content mutation.
func (d *Document) OnChange(fn func()) { d.onChange = fn }

// Size returns the fixed page extent.
func (d *Document) Size() (width, height int) { return d.width, d.height }

// Current returns the index of the current page.
func (d *Document) Current() int { return d.current }

// Page returns the current page.
func (d *Document) Page() *Page { return d.Pages[d.current] }

// AddPage appends a default page and returns its index.
func (d *Document) AddPage() int {
	p := NewPage()
	d.Pages = append(d.Pages, p)
	d.rebuildPage(p)
	d.changed()
	return len(d.Pages) - 1
}

// SwitchPage makes page i current.
func (d *Document) SwitchPage(i int) error {
	if i < 0 || i >= len(d.Pages) {
		return ErrNoSuchPage
	}
	d.current = i
	return nil
}

// DeletePage removes page i. The last remaining page cannot be deleted.
// The current page stays current unless it is the one removed, in which
// case its successor, or the new last page, takes its place.
func (d *Document) DeletePage(i int) error {
	if i < 0 || i >= len(d.Pages) {
		return ErrNoSuchPage
	}
	if len(d.Pages) <= 1 {
		return ErrLastPage
	}
	for _, l := range d.Pages[i].Layers {
		for _, im := range l.Images {
			delete(d.pixels, im.ID)
		}
	}
	d.Pages = slices.Delete(d.Pages, i, i+1)
	if i < d.current {
		d.current--
	}
	if d.current >= len(d.Pages) {
		d.current = len(d.Pages) - 1
	}
	d.changed()
	return nil
}

// ReplacePages swaps in a loaded set of pages together with the decoded
// pixels of their images and rebuilds every layer once. Pixels of the old
// pages are dropped.
func (d *Document) ReplacePages(pages []*Page, current int, pixels map[uuid.UUID]image.Image) {
	if len(pages) == 0 {
		pages = []*Page{NewPage()}
	}
	if current < 0 || current >= len(pages) {
		current = 0
	}
	d.Pages = pages
	d.current = current
	clear(d.pixels)
	for id, img := range pixels {
		d.pixels[id] = img
	}
	d.RebuildAll()
}

// ClearPage empties every layer of the current page and both of its
// stacks.
func (d *Document) ClearPage() {
	p := d.Page()
	for _, l := range p.Layers {
		for _, im := range l.Images {
			delete(d.pixels, im.ID)
		}
		l.Clear()
	}
	p.ClearHistory()
	d.rebuildPage(p)
	d.changed()
}

// Commit applies a to the current page, records it on the undo stack and
// clears the redo stack. Any change to a locked layer fails with
// ErrLayerLocked.
func (d *Document) Commit(a Action) error {
	p := d.Page()
	l, err := p.Layer(a.Layer)
	if err != nil {
		return err
	}
	if l.Locked {
		return ErrLayerLocked
	}
	a.apply(l)
	p.undo = append(p.undo, a)
	p.redo = nil
	logging.L().Debug("scene: commit", "action", a.Kind, "layer", l.ID)
	d.rebuild(l)
	d.changed()
	return nil
}

// Undo reverts the newest action of the current page.
func (d *Document) Undo() (Action, error) {
	p := d.Page()
	if len(p.undo) == 0 {
		return Action{}, ErrNothingToUndo
	}
	a := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	l := p.Layers[a.Layer]
	a.revert(l)
	p.redo = append(p.redo, a)
	d.rebuild(l)
	d.changed()
	return a, nil
}

// Redo re-applies the newest undone action of the current page.
func (d *Document) Redo() (Action, error) {
	p := d.Page()
	if len(p.redo) == 0 {
		return Action{}, ErrNothingToRedo
	}
	a := p.redo[len(p.redo)-1]
	p.redo = p.redo[:len(p.redo)-1]
	l := p.Layers[a.Layer]
	a.apply(l)
	p.undo = append(p.undo, a)
	d.rebuild(l)
	d.changed()
	return a, nil
}

// Touch rebuilds layer li of the current page after an unrecorded edit
// such as a move, resize or inspector change.
func (d *Document) Touch(li int) {
	l, err := d.Page().Layer(li)
	if err != nil {
		return
	}
	d.rebuild(l)
	d.changed()
}

// AddLayer appends a new layer to the current page, makes it active and
// returns its index.
func (d *Document) AddLayer(name string) int {
	p := d.Page()
	l := NewLayer("", name)
	p.Layers = append(p.Layers, l)
	p.Active = len(p.Layers) - 1
	d.rebuild(l)
	d.changed()
	return p.Active
}

// Pixels implements PixelSource.
func (d *Document) Pixels(id uuid.UUID) (image.Image, bool) {
	buf, ok := d.pixels[id]
	return buf, ok
}

// SetPixels records decoded pixels for image id and rebuilds the layers
// that show it.
func (d *Document) SetPixels(id uuid.UUID, img image.Image) {
	d.pixels[id] = img
	for _, p := range d.Pages {
		for _, l := range p.Layers {
			for _, im := range l.Images {
				if im.ID == id {
					d.rebuild(l)
					break
				}
			}
		}
	}
}

// FindImage returns the image object with the given id on any page.
func (d *Document) FindImage(id uuid.UUID) (*ImageObject, bool) {
	for _, p := range d.Pages {
		for _, l := range p.Layers {
			for _, im := range l.Images {
				if im.ID == id {
					return im, true
				}
			}
		}
	}
	return nil, false
}

// RebuildAll rebuilds every layer of every page.
func (d *Document) RebuildAll() {
	for _, p := range d.Pages {
		d.rebuildPage(p)
	}
}

func (d *Document) rebuildPage(p *Page) {
	for _, l := range p.Layers {
		d.rebuild(l)
	}
}

func (d *Document) rebuild(l *Layer) {
	if d.raster != nil {
		d.raster.Rebuild(l, d)
	}
}

func (d *Document) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}
