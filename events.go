package inkwell

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/recognize"
	"github.com/inkwell-board/inkwell/scene"
	"github.com/inkwell-board/inkwell/selection"
)

// Event is one input to an Editor. Events are queued with Post and applied
// in order by Tick. The set is closed; DecodeEvent builds events from
// their JSON form.
type Event interface {
	apply(e *Editor) error
}

// Pointer input in screen pixels. Pressure is in [0, 1]; zero means the
// device reports none.
type (
	PointerDown struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Pressure float64 `json:"pressure"`
	}
	PointerMove struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Pressure float64 `json:"pressure"`
	}
	PointerUp     struct{}
	PointerCancel struct{}

	// Wheel zooms one notch about the pointer.
	Wheel struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Delta float64 `json:"delta"`
	}

	// Modifiers reports the constrain key.
	Modifiers struct {
		Shift bool `json:"shift"`
	}
)

func (ev PointerDown) apply(e *Editor) error {
	return e.PointerDown(geom.Pt(ev.X, ev.Y), ev.Pressure)
}

func (ev PointerMove) apply(e *Editor) error {
	e.PointerMove(geom.Pt(ev.X, ev.Y), ev.Pressure)
	return nil
}

func (PointerUp) apply(e *Editor) error { return e.PointerUp() }
func (PointerCancel) apply(e *Editor) error { return e.PointerCancel() }

func (ev Wheel) apply(e *Editor) error {
	e.Wheel(geom.Pt(ev.X, ev.Y), ev.Delta)
	return nil
}

func (ev Modifiers) apply(e *Editor) error {
	e.SetConstrain(ev.Shift)
	return nil
}

// Tool and setting changes.
type (
	// SelectTool switches tools. Variant names the stroke tool for "draw",
	// the erase mode for "eraser" and the figure for "shape".
	SelectTool struct {
		Tool    string `json:"tool"`
		Variant string `json:"variant,omitempty"`
	}
	SetColor struct {
		Color string `json:"color"`
	}
	SetPenSize struct {
		Size float64 `json:"size"`
	}
	SetEraserSize struct {
		Size float64 `json:"size"`
	}
	SetSmoothing struct {
		Mode string `json:"mode"`
	}
	SetSmartSnap struct {
		On bool `json:"on"`
	}
	SetTheme struct {
		Dark bool `json:"dark"`
	}
	SetTextStyle struct {
		Family string  `json:"fontFamily"`
		Size   float64 `json:"fontSize"`
		Bold   bool    `json:"bold"`
		Italic bool    `json:"italic"`
		Align  string  `json:"align"`
		Color  string  `json:"color"`
	}
)

func (ev SelectTool) apply(e *Editor) error {
	t, err := ParseToolKind(ev.Tool)
	if err != nil {
		return err
	}
	if ev.Variant != "" {
		switch t {
		case ToolDraw:
			st, err := scene.ParseTool(ev.Variant)
			if err != nil {
				return err
			}
			e.SetDrawTool(st)
		case ToolEraser:
			m, err := ParseEraseMode(ev.Variant)
			if err != nil {
				return err
			}
			e.SetEraseMode(m)
		case ToolShape:
			f, err := recognize.ParseFigure(ev.Variant)
			if err != nil {
				return err
			}
			e.SetFigure(f)
		}
	}
	e.SetTool(t)
	return nil
}

func (ev SetColor) apply(e *Editor) error {
	e.SetColor(ev.Color)
	return nil
}

func (ev SetPenSize) apply(e *Editor) error {
	e.SetPenSize(ev.Size)
	return nil
}

func (ev SetEraserSize) apply(e *Editor) error {
	e.SetEraserSize(ev.Size)
	return nil
}

func (ev SetSmoothing) apply(e *Editor) error {
	m, err := capture.ParseMode(ev.Mode)
	if err != nil {
		return err
	}
	e.SetSmoothingMode(m)
	return nil
}

func (ev SetSmartSnap) apply(e *Editor) error {
	e.SetSmartSnap(ev.On)
	return nil
}

func (ev SetTheme) apply(e *Editor) error {
	e.SetDarkMode(ev.Dark)
	return nil
}

func (ev SetTextStyle) apply(e *Editor) error {
	e.SetTextStyle(ev.style(e.textStyle))
	return nil
}

// style overlays the set fields of ev on base.
func (ev SetTextStyle) style(base scene.TextStyle) scene.TextStyle {
	st := base
	if ev.Family != "" {
		st.Family = ev.Family
	}
	if ev.Size > 0 {
		st.Size = ev.Size
	}
	if ev.Align != "" {
		st.Align = scene.ParseAlign(ev.Align)
	}
	if ev.Color != "" {
		st.Color = ev.Color
	}
	st.Bold, st.Italic = ev.Bold, ev.Italic
	return st
}

// Content edits.
type (
	Undo  struct{}
	Redo  struct{}
	Scrub struct {
		Target int `json:"target"`
	}
	// AddText places text at a page point in the current text style.
	AddText struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Text string  `json:"text"`
	}
	EditText struct {
		ID   uuid.UUID `json:"id"`
		Text string    `json:"text"`
	}
	// AddImage carries raw image bytes, base64-encoded by encoding/json,
	// or a data URL in Source.
	AddImage struct {
		Data   []byte `json:"data,omitempty"`
		Source string `json:"source,omitempty"`
	}
	DeleteSelection     struct{}
	DuplicateSelection  struct{}
	BringForward        struct{}
	SetSelectionSize    struct{ Size float64 `json:"size"` }
	SetSelectionOpacity struct{ Opacity float64 `json:"opacity"` }
	MoveSelection       struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	ResizeSelection struct {
		Handle string  `json:"handle"`
		DX     float64 `json:"dx"`
		DY     float64 `json:"dy"`
	}
)

func (Undo) apply(e *Editor) error {
	e.Undo()
	return nil
}

func (Redo) apply(e *Editor) error {
	e.Redo()
	return nil
}

func (ev Scrub) apply(e *Editor) error {
	e.ScrubHistory(ev.Target)
	return nil
}

func (ev AddText) apply(e *Editor) error {
	_, err := e.AddText(geom.Pt(ev.X, ev.Y), ev.Text, e.textStyle)
	return err
}

func (ev EditText) apply(e *Editor) error {
	tb, ok := e.TextByID(ev.ID)
	if !ok {
		return ErrNotOnPage
	}
	return e.EditText(tb, ev.Text)
}

func (ev AddImage) apply(e *Editor) error {
	src := ev.Data
	if len(src) == 0 {
		src = []byte(ev.Source)
	}
	_, err := e.AddImage(src)
	return err
}

func (DeleteSelection) apply(e *Editor) error {
	e.DeleteSelection()
	return nil
}

func (DuplicateSelection) apply(e *Editor) error { return e.DuplicateSelection() }
func (BringForward) apply(e *Editor) error { return e.BringSelectionForward() }

func (ev SetSelectionSize) apply(e *Editor) error {
	return e.SetSelectionSize(ev.Size)
}

func (ev SetSelectionOpacity) apply(e *Editor) error {
	return e.SetSelectionOpacity(ev.Opacity)
}

func (ev MoveSelection) apply(e *Editor) error {
	return e.MoveObject(ev.DX, ev.DY)
}

func (ev ResizeSelection) apply(e *Editor) error {
	h, err := selection.ParseHandle(ev.Handle)
	if err != nil {
		return err
	}
	return e.ResizeImage(h, ev.DX, ev.DY)
}

// View, page and layer changes.
type (
	SetZoom struct {
		Zoom float64 `json:"zoom"`
	}
	SetPan struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	ResetView  struct{}
	AddPage    struct{}
	SwitchPage struct {
		Index int `json:"index"`
	}
	DeletePage struct {
		Index int `json:"index"`
	}
	ClearPage struct{}
	AddLayer  struct {
		Name string `json:"name"`
	}
	SetActiveLayer struct {
		Index int `json:"index"`
	}
	SetLayerVisible struct {
		Index   int  `json:"index"`
		Visible bool `json:"visible"`
	}
	SetLayerLocked struct {
		Index  int  `json:"index"`
		Locked bool `json:"locked"`
	}
	SetLayerOpacity struct {
		Index   int     `json:"index"`
		Opacity float64 `json:"opacity"`
	}
	Resize struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
)

func (ev SetZoom) apply(e *Editor) error {
	e.SetZoom(ev.Zoom)
	return nil
}

func (ev SetPan) apply(e *Editor) error {
	e.SetPan(geom.Pt(ev.X, ev.Y))
	return nil
}

func (ResetView) apply(e *Editor) error {
	e.ResetView()
	return nil
}

func (AddPage) apply(e *Editor) error {
	e.AddPage()
	return nil
}

func (ev SwitchPage) apply(e *Editor) error { return e.SwitchPage(ev.Index) }
func (ev DeletePage) apply(e *Editor) error { return e.DeletePage(ev.Index) }

func (ClearPage) apply(e *Editor) error {
	e.ClearPage()
	return nil
}

func (ev AddLayer) apply(e *Editor) error {
	e.AddLayer(ev.Name)
	return nil
}

func (ev SetActiveLayer) apply(e *Editor) error { return e.SetActiveLayer(ev.Index) }

func (ev SetLayerVisible) apply(e *Editor) error {
	return e.SetLayerVisible(ev.Index, ev.Visible)
}

func (ev SetLayerLocked) apply(e *Editor) error {
	return e.SetLayerLocked(ev.Index, ev.Locked)
}

func (ev SetLayerOpacity) apply(e *Editor) error {
	return e.SetLayerOpacity(ev.Index, ev.Opacity)
}

func (ev Resize) apply(e *Editor) error {
	e.SetViewportSize(ev.Width, ev.Height)
	return nil
}

// Internal events posted by background work.
type (
	imageDecoded struct{ imaging.Result }
	autosave     struct{}
)

func (ev imageDecoded) apply(e *Editor) error {
	e.imageDecoded(ev.Result)
	return nil
}

func (autosave) apply(e *Editor) error {
	e.autosave()
	return nil
}

var eventTypes = map[string]func() Event{
	"pointerDown":        func() Event { return &PointerDown{} },
	"pointerMove":        func() Event { return &PointerMove{} },
	"pointerUp":          func() Event { return &PointerUp{} },
	"pointerCancel":      func() Event { return &PointerCancel{} },
	"wheel":              func() Event { return &Wheel{} },
	"modifiers":          func() Event { return &Modifiers{} },
	"tool":               func() Event { return &SelectTool{} },
	"color":              func() Event { return &SetColor{} },
	"penSize":            func() Event { return &SetPenSize{} },
	"eraserSize":         func() Event { return &SetEraserSize{} },
	"smoothing":          func() Event { return &SetSmoothing{} },
	"smartSnap":          func() Event { return &SetSmartSnap{} },
	"theme":              func() Event { return &SetTheme{} },
	"textStyle":          func() Event { return &SetTextStyle{} },
	"undo":               func() Event { return &Undo{} },
	"redo":               func() Event { return &Redo{} },
	"scrub":              func() Event { return &Scrub{} },
	"addText":            func() Event { return &AddText{} },
	"editText":           func() Event { return &EditText{} },
	"addImage":           func() Event { return &AddImage{} },
	"deleteSelection":    func() Event { return &DeleteSelection{} },
	"duplicateSelection": func() Event { return &DuplicateSelection{} },
	"bringForward":       func() Event { return &BringForward{} },
	"selectionSize":      func() Event { return &SetSelectionSize{} },
	"selectionOpacity":   func() Event { return &SetSelectionOpacity{} },
	"moveSelection":      func() Event { return &MoveSelection{} },
	"resizeSelection":    func() Event { return &ResizeSelection{} },
	"zoom":               func() Event { return &SetZoom{} },
	"pan":                func() Event { return &SetPan{} },
	"resetView":          func() Event { return &ResetView{} },
	"addPage":            func() Event { return &AddPage{} },
	"switchPage":         func() Event { return &SwitchPage{} },
	"deletePage":         func() Event { return &DeletePage{} },
	"clearPage":          func() Event { return &ClearPage{} },
	"addLayer":           func() Event { return &AddLayer{} },
	"activeLayer":        func() Event { return &SetActiveLayer{} },
	"layerVisible":       func() Event { return &SetLayerVisible{} },
	"layerLocked":        func() Event { return &SetLayerLocked{} },
	"layerOpacity":       func() Event { return &SetLayerOpacity{} },
	"resize":             func() Event { return &Resize{} },
}

// DecodeEvent parses one event of the form {"type": name, ...fields}.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("inkwell: decode event: %w", err)
	}
	mk, ok := eventTypes[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, head.Type)
	}
	ev := mk()
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("inkwell: decode %s event: %w", head.Type, err)
	}
	return ev, nil
}
