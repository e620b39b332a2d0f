// Package simplify decimates finished stroke paths with the Douglas–Peucker
// algorithm.
package simplify

import (
	"math"

	"github.com/inkwell-board/inkwell/geom"
)

// DefaultTolerance is the distance, in page units, below which interior
// points are dropped.
const DefaultTolerance = 1.5

// Path returns the subset of pts whose perpendicular distance from the
// recursive chords exceeds eps. The first and last points are always kept.
// Paths of two points or fewer are returned unchanged. The input slice is
// not modified.
func Path(pts []geom.Sample, eps float64) []geom.Sample {
	if len(pts) <= 2 {
		return pts
	}
	out := make([]geom.Sample, 0, len(pts)/2+2)
	out = append(out, pts[0])
	out = decimate(pts, 0, len(pts)-1, eps, out)
	return append(out, pts[len(pts)-1])
}

func decimate(pts []geom.Sample, first, last int, eps float64, out []geom.Sample) []geom.Sample {
	maxDist, index := 0.0, 0
	for i := first + 1; i < last; i++ {
		if d := perpendicular(pts[i], pts[first], pts[last]); d > maxDist {
			maxDist, index = d, i
		}
	}
	if maxDist <= eps {
		return out
	}
	out = decimate(pts, first, index, eps, out)
	out = append(out, pts[index])
	return decimate(pts, index, last, eps, out)
}

// perpendicular returns the distance from p to the infinite line through a
// and b, or to a itself when the chord is degenerate.
func perpendicular(p, a, b geom.Sample) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / math.Hypot(dx, dy)
}
