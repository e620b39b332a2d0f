package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/geom"
)

// Stroke is one committed mark. Points are in page space.
type Stroke struct {
	ID      uuid.UUID
	Tool    Tool
	Color   string
	Size    float64
	Opacity float64
	Points  []geom.Sample

	// IsShape marks geometry produced by the shape tool or by shape
	// recognition. Such strokes render as plain polylines.
	IsShape bool
}

// NewStroke returns an empty stroke with a fresh id.
func NewStroke(tool Tool, color string, size float64) *Stroke {
	return &Stroke{
		ID:      uuid.New(),
		Tool:    tool,
		Color:   color,
		Size:    size,
		Opacity: tool.DefaultOpacity(),
	}
}

// Bounds returns the area covered by the stroke's ink.
func (s *Stroke) Bounds() geom.Rect {
	r, _ := geom.Bounds(s.Points)
	return r
}

// Clone returns a deep copy with a new id, offset by d.
func (s *Stroke) Clone(d geom.Point) *Stroke {
	c := *s
	c.ID = uuid.New()
	c.Points = make([]geom.Sample, len(s.Points))
	for i, p := range s.Points {
		c.Points[i] = geom.Sample{X: p.X + d.X, Y: p.Y + d.Y, Size: p.Size}
	}
	return &c
}

// Hit reports whether any point lies within radius plus half its width
// of p.
func (s *Stroke) Hit(p geom.Point, radius float64) bool {
	for _, q := range s.Points {
		w := q.Size
		if w == 0 {
			w = s.Size
		}
		if math.Hypot(q.X-p.X, q.Y-p.Y) < radius+w/2 {
			return true
		}
	}
	return false
}

// Align is the horizontal alignment of text lines within a text box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var alignNames = [...]string{"left", "center", "right"}

func (a Align) String() string {
	if a >= 0 && int(a) < len(alignNames) {
		return alignNames[a]
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign is the inverse of Align.String. Unknown names map to left.
func ParseAlign(s string) Align {
	for i, n := range alignNames {
		if n == s {
			return Align(i)
		}
	}
	return AlignLeft
}

// TextStyle describes how a text box is drawn.
type TextStyle struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
	Align  Align
	Color  string
}

// DefaultTextStyle is the style of new text boxes.
func DefaultTextStyle() TextStyle {
	return TextStyle{Family: "sans", Size: 24, Color: "#e8e6e3"}
}

// FontSize returns Size, or 24 when unset.
func (st TextStyle) FontSize() float64 {
	if st.Size <= 0 {
		return 24
	}
	return st.Size
}

// LineHeight is the distance between baselines.
func (st TextStyle) LineHeight() float64 {
	return st.FontSize() * 1.4
}

// TextBox is a block of text anchored at its top-left corner.
//
// The measured size is cached explicitly. SetText and SetStyle invalidate
// it, and the renderer fills it in through SetMeasured.
type TextBox struct {
	ID    uuid.UUID
	Pos   geom.Point
	text  string
	style TextStyle

	w, h     float64
	measured bool
}

// NewTextBox returns a text box with a fresh id.
func NewTextBox(pos geom.Point, text string, style TextStyle) *TextBox {
	return &TextBox{ID: uuid.New(), Pos: pos, text: text, style: style}
}

// Text returns the content.
func (t *TextBox) Text() string { return t.text }

// Style returns the style.
func (t *TextBox) Style() TextStyle { return t.style }

// Lines splits the content at line breaks.
func (t *TextBox) Lines() []string {
	return strings.Split(t.text, "\n")
}

// SetText replaces the content and invalidates the measured size.
func (t *TextBox) SetText(s string) {
	t.text = s
	t.Invalidate()
}

// SetStyle replaces the style and invalidates the measured size.
func (t *TextBox) SetStyle(st TextStyle) {
	t.style = st
	t.Invalidate()
}

// Invalidate drops the measured size.
func (t *TextBox) Invalidate() {
	t.measured = false
	t.w, t.h = 0, 0
}

// SetMeasured stores the measured size.
func (t *TextBox) SetMeasured(w, h float64) {
	t.w, t.h = w, h
	t.measured = true
}

// Measured reports whether the cached size is valid.
func (t *TextBox) Measured() bool { return t.measured }

// Size returns the measured size, or an estimate of 150 wide by one line
// height per line while unmeasured.
func (t *TextBox) Size() (w, h float64) {
	if t.measured && t.w > 0 {
		return t.w, t.h
	}
	return 150, t.style.LineHeight() * float64(len(t.Lines()))
}

// Bounds returns the box in page space.
func (t *TextBox) Bounds() geom.Rect {
	w, h := t.Size()
	return geom.Rect{X: t.Pos.X, Y: t.Pos.Y, W: w, H: h}
}

// Clone returns a copy with a new id, offset by d.
func (t *TextBox) Clone(d geom.Point) *TextBox {
	c := *t
	c.ID = uuid.New()
	c.Pos = t.Pos.Add(d)
	return &c
}

// ImageObject is a placed image. Decoded pixels are held by the Document,
// keyed by ID, never by the object itself.
type ImageObject struct {
	ID     uuid.UUID
	Pos    geom.Point
	W, H   float64
	Source []byte
}

// NewImageObject returns an image object with a fresh id.
func NewImageObject(src []byte, r geom.Rect) *ImageObject {
	return &ImageObject{ID: uuid.New(), Pos: geom.Pt(r.X, r.Y), W: r.W, H: r.H, Source: src}
}

// Bounds returns the placed rectangle.
func (im *ImageObject) Bounds() geom.Rect {
	return geom.Rect{X: im.Pos.X, Y: im.Pos.Y, W: im.W, H: im.H}
}
