package selection

import (
	"testing"

	"github.com/inkwell-board/inkwell/geom"
)

func TestResize(t *testing.T) {
	box := geom.Rect{X: 100, Y: 100, W: 200, H: 100}
	tests := []struct {
		h      Handle
		dx, dy float64
		want   geom.Rect
	}{
		{SE, 10, 20, geom.Rect{X: 100, Y: 100, W: 210, H: 120}},
		{NW, 10, 20, geom.Rect{X: 110, Y: 120, W: 190, H: 80}},
		{NE, 10, 20, geom.Rect{X: 100, Y: 120, W: 210, H: 80}},
		{SW, 10, 20, geom.Rect{X: 110, Y: 100, W: 190, H: 120}},
		{E, -500, 99, geom.Rect{X: 100, Y: 100, W: MinSize, H: 100}},
		{W, 500, 0, geom.Rect{X: 300 - MinSize, Y: 100, W: MinSize, H: 100}},
		{N, 0, 500, geom.Rect{X: 100, Y: 200 - MinSize, W: 200, H: MinSize}},
		{S, 40, -10, geom.Rect{X: 100, Y: 100, W: 200, H: 90}},
	}
	for _, tt := range tests {
		t.Run(tt.h.String(), func(t *testing.T) {
			if got := Resize(box, tt.h, tt.dx, tt.dy); got != tt.want {
				t.Errorf("Resize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandleAt(t *testing.T) {
	box := geom.Rect{X: 0, Y: 0, W: 100, H: 50}
	tests := []struct {
		p    geom.Point
		want Handle
	}{
		{geom.Pt(1, 1), NW},
		{geom.Pt(99, 49), SE},
		{geom.Pt(50, 0), N},
		{geom.Pt(100, 26), E},
		{geom.Pt(50, 25), NoHandle},
	}
	for _, tt := range tests {
		if got := HandleAt(box, tt.p, 4); got != tt.want {
			t.Errorf("HandleAt(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestParseHandle(t *testing.T) {
	for h := N; h <= NW; h++ {
		got, err := ParseHandle(h.String())
		if err != nil || got != h {
			t.Errorf("ParseHandle(%q) = %v, %v", h.String(), got, err)
		}
	}
	if _, err := ParseHandle(""); err == nil {
		t.Error("empty handle name accepted")
	}
}
