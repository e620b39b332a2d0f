// Package recognize classifies finished freehand paths as simple shapes and
// builds the idealised geometry that replaces them.
package recognize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/inkwell-board/inkwell/geom"
)

// Kind identifies a recognised shape.
type Kind int

const (
	// None means the path is kept as drawn.
	None Kind = iota

	// Line is a straight segment between the path endpoints.
	Line

	// Arrow is a line with two barbs at its end.
	Arrow

	// Rectangle is an axis-aligned closed box.
	Rectangle

	// Circle is a closed round path.
	Circle
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Line:
		return "line"
	case Arrow:
		return "arrow"
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape holds the parameters of a recognised shape. The Kind field tells
// which parameters are meaningful.
type Shape struct {
	Kind   Kind
	From   geom.Point // Line and arrow start.
	To     geom.Point // Line and arrow end.
	Center geom.Point // Circle center.
	Radius float64    // Circle radius.
	Box    geom.Rect  // Rectangle bounds.
}

// Config holds the classification thresholds. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	// MinPoints is the shortest path considered at all.
	MinPoints int

	// LineStraightness is the direct/path length ratio above which a path
	// is a line.
	LineStraightness float64

	// ClosedStraightness is the ratio below which a path counts as closed.
	ClosedStraightness float64

	// Roundness is the bounding-box aspect (min/max side) above which a
	// closed path may be a circle.
	Roundness float64

	// CircumferenceMin and CircumferenceMax bound the ratio of path length
	// to the estimated circumference for a circle match.
	CircumferenceMin float64
	CircumferenceMax float64

	// ArrowStraightness and ArrowMinLength gate arrow classification.
	ArrowStraightness float64
	ArrowMinLength    float64

	// ArrowSpread is the barb angle in radians either side of the shaft.
	ArrowSpread float64

	// Barb length is max(ArrowHeadMin, ArrowHeadFactor*size).
	ArrowHeadFactor float64
	ArrowHeadMin    float64

	// CircleStep is the angular step in radians of the circle polygon.
	CircleStep float64
}

// DefaultConfig returns the thresholds used by the editor.
func DefaultConfig() Config {
	return Config{
		MinPoints:          4,
		LineStraightness:   0.88,
		ClosedStraightness: 0.18,
		Roundness:          0.75,
		CircumferenceMin:   0.5,
		CircumferenceMax:   1.15,
		ArrowStraightness:  0.65,
		ArrowMinLength:     20,
		ArrowSpread:        0.45,
		ArrowHeadFactor:    3,
		ArrowHeadMin:       10,
		CircleStep:         0.08,
	}
}

// Detect classifies pts. It returns a Shape with Kind None when the path is
// too short, degenerate, or matches nothing.
func (c Config) Detect(pts []geom.Sample) Shape {
	if len(pts) < c.MinPoints {
		return Shape{}
	}
	first, last := pts[0].Point(), pts[len(pts)-1].Point()
	pathLen := geom.PathLength(pts)
	if pathLen == 0 {
		return Shape{}
	}
	direct := first.Dist(last)
	straightness := direct / pathLen

	if straightness > c.LineStraightness {
		return Shape{Kind: Line, From: first, To: last}
	}

	if straightness < c.ClosedStraightness {
		box := extents(pts)
		aspect := math.Min(box.W, box.H) / math.Max(box.W, box.H)
		if aspect > c.Roundness {
			r := math.Max(box.W, box.H) / 2
			ratio := pathLen / (2 * math.Pi * r)
			if ratio > c.CircumferenceMin && ratio < c.CircumferenceMax {
				return Shape{Kind: Circle, Center: box.Center(), Radius: r}
			}
		}
		return Shape{Kind: Rectangle, Box: box}
	}

	if straightness > c.ArrowStraightness && direct > c.ArrowMinLength {
		return Shape{Kind: Arrow, From: first, To: last}
	}
	return Shape{}
}

// Build returns the idealised points of s, every point carrying size.
func (c Config) Build(s Shape, size float64) []geom.Sample {
	at := func(p geom.Point) geom.Sample { return geom.Sample{X: p.X, Y: p.Y, Size: size} }

	switch s.Kind {
	case Line:
		return []geom.Sample{at(s.From), at(s.To)}

	case Arrow:
		return c.arrow(s.From, s.To, size)

	case Circle:
		pts := make([]geom.Sample, 0, int((2*math.Pi+0.05)/c.CircleStep)+1)
		for a := 0.0; a <= 2*math.Pi+0.05; a += c.CircleStep {
			pts = append(pts, at(geom.Point{
				X: s.Center.X + math.Cos(a)*s.Radius,
				Y: s.Center.Y + math.Sin(a)*s.Radius,
			}))
		}
		return pts

	case Rectangle:
		return closedBox(s.Box, size)
	}
	return nil
}

// Apply runs Detect and, on a match, Build. ok is false when the path is
// kept as drawn, in which case pts is returned unchanged.
func (c Config) Apply(pts []geom.Sample, size float64) (out []geom.Sample, s Shape, ok bool) {
	s = c.Detect(pts)
	if s.Kind == None {
		return pts, s, false
	}
	return c.Build(s, size), s, true
}

// arrow returns the shaft followed by the two barbs, drawn as one polyline:
// from, to, barb, to, barb.
func (c Config) arrow(from, to geom.Point, size float64) []geom.Sample {
	head := math.Max(c.ArrowHeadMin, size*c.ArrowHeadFactor)
	a := math.Atan2(to.Y-from.Y, to.X-from.X)
	tip := geom.Sample{X: to.X, Y: to.Y, Size: size}
	barb := func(angle float64) geom.Sample {
		return geom.Sample{X: to.X - head*math.Cos(angle), Y: to.Y - head*math.Sin(angle), Size: size}
	}
	return []geom.Sample{
		{X: from.X, Y: from.Y, Size: size},
		tip,
		barb(a - c.ArrowSpread),
		tip,
		barb(a + c.ArrowSpread),
	}
}

func closedBox(r geom.Rect, size float64) []geom.Sample {
	return []geom.Sample{
		{X: r.X, Y: r.Y, Size: size},
		{X: r.MaxX(), Y: r.Y, Size: size},
		{X: r.MaxX(), Y: r.MaxY(), Size: size},
		{X: r.X, Y: r.MaxY(), Size: size},
		{X: r.X, Y: r.Y, Size: size},
	}
}

func extents(pts []geom.Sample) geom.Rect {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
