package scene

import (
	"slices"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
)

// Layer is an ordered collection of strokes, text boxes and images with
// its own raster cache.
//
// Images draw first, then strokes, then text, each in list order.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
	Opacity float64

	Strokes []*Stroke
	Texts   []*TextBox
	Images  []*ImageObject

	raster *gg.Pixmap
}

// NewLayer returns a visible, unlocked, opaque layer. An empty id is
// replaced with a fresh one.
func NewLayer(id, name string) *Layer {
	if id == "" {
		id = uuid.NewString()
	}
	return &Layer{ID: id, Name: name, Visible: true, Opacity: 1}
}

// Raster returns the layer's cached rendering, or nil if it has never been
// rebuilt.
func (l *Layer) Raster() *gg.Pixmap { return l.raster }

// SetRaster replaces the cached rendering. Only the rasterizer calls it.
func (l *Layer) SetRaster(pm *gg.Pixmap) { l.raster = pm }

// Empty reports whether the layer holds no content.
func (l *Layer) Empty() bool {
	return len(l.Strokes) == 0 && len(l.Texts) == 0 && len(l.Images) == 0
}

// Clear removes all content.
func (l *Layer) Clear() {
	l.Strokes, l.Texts, l.Images = nil, nil, nil
}

// StrokeIndex returns the position of s, or -1.
func (l *Layer) StrokeIndex(s *Stroke) int { return slices.Index(l.Strokes, s) }

// TextIndex returns the position of t, or -1.
func (l *Layer) TextIndex(t *TextBox) int { return slices.Index(l.Texts, t) }

// ImageIndex returns the position of im, or -1.
func (l *Layer) ImageIndex(im *ImageObject) int { return slices.Index(l.Images, im) }

// RaiseStroke moves s to the top of the stroke list. It reports whether s
// belongs to the layer.
func (l *Layer) RaiseStroke(s *Stroke) bool {
	i := l.StrokeIndex(s)
	if i < 0 {
		return false
	}
	l.Strokes = append(slices.Delete(l.Strokes, i, i+1), s)
	return true
}

func insertAt[T any](list []T, i int, v T) []T {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	return slices.Insert(list, i, v)
}

func removeItem[T comparable](list []T, v T) ([]T, bool) {
	i := slices.Index(list, v)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}
