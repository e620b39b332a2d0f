package capture

import (
	"math"
	"testing"

	"github.com/inkwell-board/inkwell/geom"
)

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Raw, Standard, Architect} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Error("ParseMode(bogus) returned nil error")
	}
}

func TestRawPassesThrough(t *testing.T) {
	s := NewSmoother(Raw)
	for _, p := range []geom.Point{{X: 1, Y: 2}, {X: 50, Y: -3}, {X: 7, Y: 7}} {
		if got := s.Push(p); got != p {
			t.Errorf("Push(%v) = %v", p, got)
		}
	}
}

func TestStandardWindowIsCapped(t *testing.T) {
	s := NewSmoother(Standard)
	// Window 5 keeps 6 samples; after 10 pushes of x=i the mean is of 4..9.
	var got geom.Point
	for i := 0; i < 10; i++ {
		got = s.Push(geom.Pt(float64(i), 0))
	}
	if want := 6.5; math.Abs(got.X-want) > 1e-12 {
		t.Errorf("mean = %v, want %v", got.X, want)
	}
}

func TestResetStartsFresh(t *testing.T) {
	s := NewSmoother(Standard)
	s.Push(geom.Pt(100, 100))
	s.Push(geom.Pt(200, 200))
	s.Reset()
	if got := s.Push(geom.Pt(0, 0)); got != (geom.Point{}) {
		t.Errorf("first point after Reset = %v, want origin", got)
	}
}

func TestArchitectSnapsToDiagonal(t *testing.T) {
	s := NewSmoother(Architect)
	s.Push(geom.Pt(0, 0))
	var last geom.Point
	// Mostly diagonal, slightly off.
	for i := 1; i <= 20; i++ {
		last = s.Push(geom.Pt(float64(i)*10, float64(i)*9))
	}
	if math.Abs(last.X-last.Y) > 1e-9 {
		t.Errorf("architect point %v not on the 45 degree diagonal", last)
	}
}

func TestSnap45KeepsDistance(t *testing.T) {
	tests := []struct {
		p    geom.Point
		want geom.Point
	}{
		{geom.Pt(10, 1), geom.Pt(math.Hypot(10, 1), 0)},
		{geom.Pt(-1, 10), geom.Pt(0, math.Hypot(1, 10))},
		{geom.Pt(5, 5), geom.Pt(5, 5)},
	}
	for _, tt := range tests {
		got := Snap45(geom.Point{}, tt.p)
		if got.Dist(tt.want) > 1e-9 {
			t.Errorf("Snap45(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		base, pressure, want float64
	}{
		{10, 1, 12},
		{10, 0, 9},     // unreported pressure counts as 0.5
		{10, 0.1, 7.5}, // floor at 0.25
		{10, 0.5, 9},
	}
	for _, tt := range tests {
		if got := Width(tt.base, tt.pressure); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Width(%v, %v) = %v, want %v", tt.base, tt.pressure, got, tt.want)
		}
	}
}
