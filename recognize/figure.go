package recognize

import (
	"fmt"
	"math"

	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/geom"
)

// Figure is a shape drawn directly with the shape tool.
type Figure int

const (
	FigureLine Figure = iota
	FigureArrow
	FigureRect
	FigureEllipse
	FigureTriangle
	FigureDiamond
)

var figureNames = [...]string{"line", "arrow", "rect", "circle", "triangle", "diamond"}

func (f Figure) String() string {
	if f >= 0 && int(f) < len(figureNames) {
		return figureNames[f]
	}
	return fmt.Sprintf("Figure(%d)", int(f))
}

// ParseFigure is the inverse of Figure.String. "ellipse" is accepted as an
// alias of "circle".
func ParseFigure(s string) (Figure, error) {
	if s == "ellipse" {
		return FigureEllipse, nil
	}
	for i, n := range figureNames {
		if n == s {
			return Figure(i), nil
		}
	}
	return FigureLine, fmt.Errorf("recognize: unknown figure %q", s)
}

// Outline returns the polyline of figure f dragged from origin to p.
// With constrain set, lines and arrows snap to 45 degrees and boxed figures
// become square.
func (c Config) Outline(f Figure, origin, p geom.Point, size float64, constrain bool) []geom.Sample {
	at := func(x, y float64) geom.Sample { return geom.Sample{X: x, Y: y, Size: size} }

	if f == FigureLine || f == FigureArrow {
		end := p
		if constrain {
			end = capture.Snap45(origin, p)
		}
		if f == FigureArrow {
			return c.arrow(origin, end, size)
		}
		return []geom.Sample{at(origin.X, origin.Y), at(end.X, end.Y)}
	}

	dx, dy := p.X-origin.X, p.Y-origin.Y
	w, h := math.Abs(dx), math.Abs(dy)
	if constrain {
		side := math.Max(w, h)
		w, h = side, side
	}
	x1, y1 := origin.X, origin.Y
	if dx < 0 {
		x1 -= w
	}
	if dy < 0 {
		y1 -= h
	}
	box := geom.Rect{X: x1, Y: y1, W: w, H: h}
	x2, y2 := box.MaxX(), box.MaxY()
	mid := box.Center()

	switch f {
	case FigureRect:
		return closedBox(box, size)

	case FigureEllipse:
		rx, ry := w/2, h/2
		steps := int(math.Max(48, math.Round(math.Max(rx, ry)*0.8)))
		step := 2 * math.Pi / float64(steps)
		pts := make([]geom.Sample, 0, steps+1)
		for i := 0; i <= steps; i++ {
			a := float64(i) * step
			pts = append(pts, at(mid.X+math.Cos(a)*rx, mid.Y+math.Sin(a)*ry))
		}
		return pts

	case FigureTriangle:
		return []geom.Sample{at(mid.X, y1), at(x2, y2), at(x1, y2), at(mid.X, y1)}

	case FigureDiamond:
		return []geom.Sample{at(mid.X, y1), at(x2, mid.Y), at(mid.X, y2), at(x1, mid.Y), at(mid.X, y1)}
	}
	return nil
}
