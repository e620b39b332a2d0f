package scene

// Default layer ids.
const (
	BackgroundLayerID  = "bg"
	MainLayerID        = "main"
	AnnotationsLayerID = "ann"
)

// Page is an independent canvas with its own layers and history.
type Page struct {
	Layers []*Layer
	Active int

	undo []Action
	redo []Action
}

// NewPage returns a page with the Background, Main and Annotations layers,
// Main active.
func NewPage() *Page {
	return &Page{
		Layers: []*Layer{
			NewLayer(BackgroundLayerID, "Background"),
			NewLayer(MainLayerID, "Main"),
			NewLayer(AnnotationsLayerID, "Annotations"),
		},
		Active: 1,
	}
}

// Layer returns layer i.
func (p *Page) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(p.Layers) {
		return nil, ErrNoSuchLayer
	}
	return p.Layers[i], nil
}

// ActiveLayer returns the layer new content goes to.
func (p *Page) ActiveLayer() *Layer {
	return p.Layers[p.Active]
}

// CanUndo reports whether the undo stack is non-empty.
func (p *Page) CanUndo() bool { return len(p.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (p *Page) CanRedo() bool { return len(p.redo) > 0 }

// History returns the number of undoable actions and the total of both
// stacks.
func (p *Page) History() (current, total int) {
	return len(p.undo), len(p.undo) + len(p.redo)
}

// ClearHistory drops both stacks.
func (p *Page) ClearHistory() {
	p.undo, p.redo = nil, nil
}

// Empty reports whether every layer is empty.
func (p *Page) Empty() bool {
	for _, l := range p.Layers {
		if !l.Empty() {
			return false
		}
	}
	return true
}

// LayerOfStroke returns the index of the layer holding s, or -1.
func (p *Page) LayerOfStroke(s *Stroke) int {
	for i, l := range p.Layers {
		if l.StrokeIndex(s) >= 0 {
			return i
		}
	}
	return -1
}

// LayerOfText returns the index of the layer holding t, or -1.
func (p *Page) LayerOfText(t *TextBox) int {
	for i, l := range p.Layers {
		if l.TextIndex(t) >= 0 {
			return i
		}
	}
	return -1
}

// LayerOfImage returns the index of the layer holding im, or -1.
func (p *Page) LayerOfImage(im *ImageObject) int {
	for i, l := range p.Layers {
		if l.ImageIndex(im) >= 0 {
			return i
		}
	}
	return -1
}
