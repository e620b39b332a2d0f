// Package capture turns a raw pointer sample stream into the smoothed
// page-space samples that make up an in-progress stroke.
package capture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inkwell-board/inkwell/geom"
)

// Mode selects how incoming points are smoothed.
type Mode int

const (
	// Raw passes points through untouched.
	Raw Mode = iota
	// Standard averages over a short sliding window.
	Standard
	// Architect averages like Standard and snaps the direction from the
	// stroke's first point to the nearest 45 degrees.
	Architect
)

// String returns the mode name used in snapshots and events.
func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case Standard:
		return "std"
	case Architect:
		return "arch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "raw":
		return Raw, nil
	case "std", "standard":
		return Standard, nil
	case "arch", "architect":
		return Architect, nil
	}
	return Raw, fmt.Errorf("capture: unknown smoothing mode %q", s)
}

// Window is the number of past samples averaged with the current one.
func (m Mode) Window() int {
	switch m {
	case Standard:
		return 5
	case Architect:
		return 8
	default:
		return 0
	}
}

// Snaps reports whether the mode applies 45 degree snapping.
func (m Mode) Snaps() bool {
	return m == Architect
}

// DefaultPressure is used when the input device does not report pressure.
const DefaultPressure = 0.5

// Width returns the drawn width of a point for a drawing tool of base size
// under the given pressure. A pressure of zero counts as unreported.
func Width(base, pressure float64) float64 {
	if pressure <= 0 {
		pressure = DefaultPressure
	}
	return base * (0.6 + 0.6*math.Max(0.25, math.Min(1, pressure)))
}

// Smoother holds the sliding window of one stroke. It is not safe for
// concurrent use.
type Smoother struct {
	mode   Mode
	xs, ys []float64

	origin    geom.Point
	hasOrigin bool
}

// NewSmoother returns a Smoother in mode m.
func NewSmoother(m Mode) *Smoother {
	return &Smoother{mode: m}
}

// Mode returns the current mode.
func (s *Smoother) Mode() Mode { return s.mode }

// SetMode changes the mode and resets the window.
func (s *Smoother) SetMode(m Mode) {
	s.mode = m
	s.Reset()
}

// Reset empties the window and forgets the stroke origin. Call it at the
// start of every stroke.
func (s *Smoother) Reset() {
	s.xs = s.xs[:0]
	s.ys = s.ys[:0]
	s.hasOrigin = false
}

// Push feeds one page-space point and returns the smoothed point.
func (s *Smoother) Push(p geom.Point) geom.Point {
	out := p
	if n := s.mode.Window(); n > 0 {
		s.xs = append(s.xs, p.X)
		s.ys = append(s.ys, p.Y)
		if len(s.xs) > n+1 {
			s.xs = s.xs[1:]
			s.ys = s.ys[1:]
		}
		out = geom.Point{X: stat.Mean(s.xs, nil), Y: stat.Mean(s.ys, nil)}
	}
	if !s.hasOrigin {
		s.origin = out
		s.hasOrigin = true
		return out
	}
	if s.mode.Snaps() {
		out = Snap45(s.origin, out)
	}
	return out
}

// Snap45 rotates the vector from origin to p onto the nearest multiple of
// 45 degrees, keeping its length.
func Snap45(origin, p geom.Point) geom.Point {
	dx, dy := p.X-origin.X, p.Y-origin.Y
	step := math.Pi / 4
	a := math.Round(math.Atan2(dy, dx)/step) * step
	d := math.Hypot(dx, dy)
	return geom.Point{X: origin.X + math.Cos(a)*d, Y: origin.Y + math.Sin(a)*d}
}
