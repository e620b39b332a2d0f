// Package persist serialises documents to JSON snapshots and writes them
// to a Store, debounced so a burst of edits produces a single write.
//
// Loading is tolerant: a record that does not decode is skipped with a
// warning and the rest of the snapshot is kept.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/scene"
)

// Version is the snapshot schema version written by Marshal.
const Version = 1

// Errors.
var (
	// ErrNoSnapshot is returned by stores that hold no snapshot yet.
	ErrNoSnapshot = errors.New("persist: no snapshot")

	// ErrCorrupt is returned when the snapshot as a whole cannot be parsed.
	ErrCorrupt = errors.New("persist: corrupt snapshot")
)

// Snapshot is the persisted form of a document.
type Snapshot struct {
	Version int          `json:"version"`
	Current int          `json:"currentPage"`
	Pages   []PageRecord `json:"pages"`
}

// PageRecord is one page. Undo history is not persisted.
type PageRecord struct {
	Layers      []LayerRecord `json:"layers"`
	ActiveLayer int           `json:"activeLayer"`
}

// LayerRecord is one layer.
type LayerRecord struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Visible   bool           `json:"visible"`
	Locked    bool           `json:"locked"`
	Opacity   float64        `json:"opacity"`
	Strokes   []StrokeRecord `json:"strokes"`
	TextBoxes []TextRecord   `json:"textBoxes"`
	Images    []ImageRecord  `json:"images"`
}

// StrokeRecord is one stroke.
type StrokeRecord struct {
	ID      ID            `json:"id"`
	Tool    scene.Tool    `json:"tool"`
	Color   string        `json:"color"`
	Size    float64       `json:"size"`
	Opacity float64       `json:"opacity"`
	Points  []geom.Sample `json:"points"`
	IsShape bool          `json:"isShape,omitempty"`
}

// TextRecord is one text box.
type TextRecord struct {
	ID         ID      `json:"id"`
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Color      string  `json:"color"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`
	Align      string  `json:"align"`
}

// ImageRecord is one image. Only the encoded source is stored.
type ImageRecord struct {
	ID      ID      `json:"id"`
	DataURL string  `json:"dataURL"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ID is a record id. Ids that are not UUIDs, such as numeric ids, are
// replaced by fresh ones when read.
type ID uuid.UUID

// MarshalJSON encodes the id as a UUID string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

// UnmarshalJSON never fails.
func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		if u, err := uuid.Parse(s); err == nil {
			*id = ID(u)
			return nil
		}
	}
	*id = ID(uuid.New())
	return nil
}

func (id ID) value() uuid.UUID {
	if u := uuid.UUID(id); u != uuid.Nil {
		return u
	}
	return uuid.New()
}

// Capture records every page of d.
func Capture(d *scene.Document) Snapshot {
	s := Snapshot{Version: Version, Current: d.Current()}
	for _, p := range d.Pages {
		pr := PageRecord{ActiveLayer: p.Active, Layers: make([]LayerRecord, 0, len(p.Layers))}
		for _, l := range p.Layers {
			pr.Layers = append(pr.Layers, captureLayer(l))
		}
		s.Pages = append(s.Pages, pr)
	}
	return s
}

func captureLayer(l *scene.Layer) LayerRecord {
	lr := LayerRecord{
		ID:        l.ID,
		Name:      l.Name,
		Visible:   l.Visible,
		Locked:    l.Locked,
		Opacity:   l.Opacity,
		Strokes:   make([]StrokeRecord, 0, len(l.Strokes)),
		TextBoxes: make([]TextRecord, 0, len(l.Texts)),
		Images:    make([]ImageRecord, 0, len(l.Images)),
	}
	for _, s := range l.Strokes {
		lr.Strokes = append(lr.Strokes, StrokeRecord{
			ID: ID(s.ID), Tool: s.Tool, Color: s.Color, Size: s.Size,
			Opacity: s.Opacity, Points: s.Points, IsShape: s.IsShape,
		})
	}
	for _, t := range l.Texts {
		st := t.Style()
		lr.TextBoxes = append(lr.TextBoxes, TextRecord{
			ID: ID(t.ID), Text: t.Text(), X: t.Pos.X, Y: t.Pos.Y, Color: st.Color,
			FontFamily: st.Family, FontSize: st.Size, Bold: st.Bold, Italic: st.Italic,
			Align: st.Align.String(),
		})
	}
	for _, im := range l.Images {
		lr.Images = append(lr.Images, ImageRecord{
			ID: ID(im.ID), DataURL: dataURL(im.Source),
			X: im.Pos.X, Y: im.Pos.Y, Width: im.W, Height: im.H,
		})
	}
	return lr
}

func dataURL(src []byte) string {
	if bytes.HasPrefix(src, []byte("data:")) {
		return string(src)
	}
	return imaging.DataURL("", src)
}

// Restore builds pages from s. It also returns the encoded source of every
// image, keyed by image id, for decoding before the pages are shown.
func Restore(s Snapshot) (pages []*scene.Page, current int, sources map[uuid.UUID][]byte) {
	sources = make(map[uuid.UUID][]byte)
	for _, pr := range s.Pages {
		p := &scene.Page{}
		for i, lr := range pr.Layers {
			p.Layers = append(p.Layers, restoreLayer(i, lr, sources))
		}
		if len(p.Layers) == 0 {
			p = scene.NewPage()
		}
		p.Active = pr.ActiveLayer
		if p.Active < 0 || p.Active >= len(p.Layers) {
			p.Active = min(1, len(p.Layers)-1)
		}
		pages = append(pages, p)
	}
	current = s.Current
	if current < 0 || current >= len(pages) {
		current = 0
	}
	return pages, current, sources
}

func restoreLayer(i int, lr LayerRecord, sources map[uuid.UUID][]byte) *scene.Layer {
	name := lr.Name
	if name == "" {
		name = fmt.Sprintf("Layer %d", i+1)
	}
	l := scene.NewLayer(lr.ID, name)
	l.Visible = lr.Visible
	l.Locked = lr.Locked
	l.Opacity = lr.Opacity

	for _, sr := range lr.Strokes {
		l.Strokes = append(l.Strokes, &scene.Stroke{
			ID: sr.ID.value(), Tool: sr.Tool, Color: sr.Color, Size: sr.Size,
			Opacity: sr.Opacity, Points: sr.Points, IsShape: sr.IsShape,
		})
	}
	for _, tr := range lr.TextBoxes {
		st := scene.TextStyle{
			Family: tr.FontFamily, Size: tr.FontSize, Bold: tr.Bold,
			Italic: tr.Italic, Align: scene.ParseAlign(tr.Align), Color: tr.Color,
		}
		tb := scene.NewTextBox(geom.Pt(tr.X, tr.Y), tr.Text, st)
		tb.ID = tr.ID.value()
		l.Texts = append(l.Texts, tb)
	}
	for _, ir := range lr.Images {
		src := []byte(ir.DataURL)
		im := scene.NewImageObject(src, geom.Rect{X: ir.X, Y: ir.Y, W: ir.Width, H: ir.Height})
		im.ID = ir.ID.value()
		l.Images = append(l.Images, im)
		sources[im.ID] = src
	}
	return l
}

// Marshal encodes s.
func Marshal(s Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("persist: marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a snapshot. Besides the current schema it accepts a
// bare array of pages. Pages, layers and objects that fail to decode or
// validate are skipped.
func Unmarshal(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	var raw struct {
		Version int               `json:"version"`
		Current int               `json:"currentPage"`
		Pages   []json.RawMessage `json:"pages"`
	}
	switch {
	case len(data) == 0:
		return Snapshot{}, ErrNoSnapshot
	case data[0] == '[':
		if err := json.Unmarshal(data, &raw.Pages); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	s := Snapshot{Version: raw.Version, Current: raw.Current}
	for i, rp := range raw.Pages {
		pr, ok := decodePage(rp)
		if !ok {
			logging.L().Warn("persist: skipped corrupt page", "page", i)
			continue
		}
		s.Pages = append(s.Pages, pr)
	}
	if len(s.Pages) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no readable pages", ErrCorrupt)
	}
	return s, nil
}

func decodePage(b json.RawMessage) (PageRecord, bool) {
	var raw struct {
		Layers      []json.RawMessage `json:"layers"`
		ActiveLayer *int              `json:"activeLayer"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return PageRecord{}, false
	}
	pr := PageRecord{ActiveLayer: 1}
	if raw.ActiveLayer != nil {
		pr.ActiveLayer = *raw.ActiveLayer
	}
	for i, rl := range raw.Layers {
		lr, ok := decodeLayer(rl)
		if !ok {
			logging.L().Warn("persist: skipped corrupt layer", "layer", i)
			continue
		}
		pr.Layers = append(pr.Layers, lr)
	}
	return pr, true
}

func decodeLayer(b json.RawMessage) (LayerRecord, bool) {
	var raw struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		Visible   *bool             `json:"visible"`
		Locked    bool              `json:"locked"`
		Opacity   *float64          `json:"opacity"`
		Strokes   []json.RawMessage `json:"strokes"`
		TextBoxes []json.RawMessage `json:"textBoxes"`
		Images    []json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return LayerRecord{}, false
	}
	lr := LayerRecord{ID: raw.ID, Name: raw.Name, Visible: true, Locked: raw.Locked, Opacity: 1}
	if raw.Visible != nil {
		lr.Visible = *raw.Visible
	}
	if raw.Opacity != nil {
		lr.Opacity = math.Max(0, math.Min(1, *raw.Opacity))
	}
	lr.Strokes = decodeEach(raw.Strokes, "stroke", StrokeRecord.valid)
	lr.TextBoxes = decodeEach(raw.TextBoxes, "text box", TextRecord.valid)
	lr.Images = decodeEach(raw.Images, "image", ImageRecord.valid)
	return lr, true
}

func decodeEach[T any](raws []json.RawMessage, kind string, valid func(T) bool) []T {
	out := make([]T, 0, len(raws))
	for i, b := range raws {
		var v T
		if err := json.Unmarshal(b, &v); err != nil || !valid(v) {
			logging.L().Warn("persist: skipped corrupt record", "kind", kind, "index", i, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r StrokeRecord) valid() bool {
	return len(r.Points) > 0 && r.Size > 0 && r.Opacity >= 0
}

func (r TextRecord) valid() bool {
	return r.Text != ""
}

func (r ImageRecord) valid() bool {
	return r.DataURL != "" && r.Width > 0 && r.Height > 0
}
