// Package viewport maps between screen pixels and page coordinates under a
// zoom factor and a pan offset.
package viewport

import (
	"math"

	"github.com/inkwell-board/inkwell/geom"
)

// Zoom limits.
const (
	MinZoom = 0.05
	MaxZoom = 12.0
)

// DefaultPan is the screen offset of the page origin after a reset.
var DefaultPan = geom.Pt(20, 20)

// Space is the screen/page affine map. The zero value is not usable; call
// New.
//
//	toPage(s)   = (s - pan) / zoom
//	toScreen(p) = p*zoom + pan
type Space struct {
	zoom float64
	pan  geom.Point
}

// New returns a Space at zoom 1 with the default pan.
func New() *Space {
	return &Space{zoom: 1, pan: DefaultPan}
}

// Zoom returns the current zoom factor.
func (s *Space) Zoom() float64 { return s.zoom }

// Pan returns the current pan offset in screen pixels.
func (s *Space) Pan() geom.Point { return s.pan }

// ToPage converts a screen point to page space.
func (s *Space) ToPage(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - s.pan.X) / s.zoom, Y: (p.Y - s.pan.Y) / s.zoom}
}

// ToScreen converts a page point to screen space.
func (s *Space) ToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.zoom + s.pan.X, Y: p.Y*s.zoom + s.pan.Y}
}

// SetPan sets the pan offset.
func (s *Space) SetPan(p geom.Point) {
	s.pan = p
}

// PanBy shifts the pan offset by d screen pixels.
func (s *Space) PanBy(d geom.Point) {
	s.pan = s.pan.Add(d)
}

// SetZoom sets the zoom about the screen origin's page point, i.e. without
// touching pan. Use ZoomAt to keep a point fixed on screen.
func (s *Space) SetZoom(z float64) {
	s.zoom = clamp(z)
}

// ZoomAt multiplies the zoom by factor while keeping the screen point pivot
// over the same page point.
func (s *Space) ZoomAt(factor float64, pivot geom.Point) {
	s.ZoomTo(s.zoom*factor, pivot)
}

// ZoomTo sets the zoom to z while keeping pivot fixed on screen.
func (s *Space) ZoomTo(z float64, pivot geom.Point) {
	w := s.ToPage(pivot)
	s.zoom = clamp(z)
	s.pan = geom.Point{X: pivot.X - w.X*s.zoom, Y: pivot.Y - w.Y*s.zoom}
}

// Reset restores zoom 1 and the default pan.
func (s *Space) Reset() {
	s.zoom = 1
	s.pan = DefaultPan
}

// VisiblePage returns the page-space rectangle covered by a viewport of the
// given pixel size.
func (s *Space) VisiblePage(w, h int) geom.Rect {
	a := s.ToPage(geom.Pt(0, 0))
	b := s.ToPage(geom.Pt(float64(w), float64(h)))
	return geom.RectFromPoints(a, b)
}

func clamp(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return MinZoom
	}
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}
