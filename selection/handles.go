package selection

import (
	"fmt"
	"math"

	"github.com/inkwell-board/inkwell/geom"
)

// MinSize is the smallest width or height a resize produces.
const MinSize = 20

// Handle is one of the eight resize grips of a selected box.
type Handle int

const (
	NoHandle Handle = iota
	N
	NE
	E
	SE
	S
	SW
	W
	NW
)

var handleNames = [...]string{"", "n", "ne", "e", "se", "s", "sw", "w", "nw"}

func (h Handle) String() string {
	if h >= 0 && int(h) < len(handleNames) {
		return handleNames[h]
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, error) {
	for i, n := range handleNames {
		if i > 0 && n == s {
			return Handle(i), nil
		}
	}
	return NoHandle, fmt.Errorf("selection: unknown handle %q", s)
}

func (h Handle) west() bool  { return h == NW || h == W || h == SW }
func (h Handle) east() bool  { return h == NE || h == E || h == SE }
func (h Handle) north() bool { return h == NW || h == N || h == NE }
func (h Handle) south() bool { return h == SW || h == S || h == SE }

// Point returns the position of h on r.
func (h Handle) Point(r geom.Rect) geom.Point {
	r = r.Canon()
	x, y := r.X+r.W/2, r.Y+r.H/2
	switch {
	case h.west():
		x = r.X
	case h.east():
		x = r.MaxX()
	}
	switch {
	case h.north():
		y = r.Y
	case h.south():
		y = r.MaxY()
	}
	return geom.Pt(x, y)
}

// HandleAt returns the handle of r within tol of p, corners first.
func HandleAt(r geom.Rect, p geom.Point, tol float64) Handle {
	for _, h := range [...]Handle{NW, NE, SE, SW, N, E, S, W} {
		if h.Point(r).Dist(p) <= tol {
			return h
		}
	}
	return NoHandle
}

// Resize returns r with handle h dragged by (dx, dy). Width and height never
// drop below MinSize; the edge opposite the handle stays put.
func Resize(r geom.Rect, h Handle, dx, dy float64) geom.Rect {
	r = r.Canon()
	out := r
	switch {
	case h.east():
		out.W = math.Max(MinSize, r.W+dx)
	case h.west():
		out.W = math.Max(MinSize, r.W-dx)
		out.X = r.MaxX() - out.W
	}
	switch {
	case h.south():
		out.H = math.Max(MinSize, r.H+dy)
	case h.north():
		out.H = math.Max(MinSize, r.H-dy)
		out.Y = r.MaxY() - out.H
	}
	return out
}
