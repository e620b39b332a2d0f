package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
)

// widthJitter is the largest difference between consecutive point sizes
// that still counts as a constant-width stroke.
const widthJitter = 0.5

// traceStroke draws the geometry of s onto dc in the current color with
// round caps and joins. Compositing is the caller's concern.
func traceStroke(dc *gg.Context, s *scene.Stroke) {
	pts := s.Points
	if len(pts) == 0 {
		return
	}
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	size := func(p geom.Sample) float64 {
		if p.Size > 0 {
			return p.Size
		}
		return s.Size
	}

	if s.IsShape && len(pts) >= 2 {
		dc.SetLineWidth(math.Max(1, s.Size))
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		_ = dc.Stroke()
		return
	}

	switch len(pts) {
	case 1:
		dc.DrawCircle(pts[0].X, pts[0].Y, math.Max(1, size(pts[0])/2))
		_ = dc.Fill()
		return
	case 2:
		dc.SetLineWidth(math.Max(1, (size(pts[0])+size(pts[1]))/2))
		dc.MoveTo(pts[0].X, pts[0].Y)
		dc.LineTo(pts[1].X, pts[1].Y)
		_ = dc.Stroke()
		return
	}

	varying := false
	for i := 1; i < len(pts); i++ {
		if math.Abs(size(pts[i])-size(pts[i-1])) > widthJitter {
			varying = true
			break
		}
	}

	if !varying || s.Tool == scene.Eraser {
		var total float64
		for _, p := range pts {
			total += size(p)
		}
		dc.SetLineWidth(math.Max(1, total/float64(len(pts))))
		dc.MoveTo(pts[0].X, pts[0].Y)
		for i := 1; i < len(pts)-1; i++ {
			m := pts[i].Point().Mid(pts[i+1].Point())
			dc.QuadraticTo(pts[i].X, pts[i].Y, m.X, m.Y)
		}
		last := pts[len(pts)-1]
		dc.LineTo(last.X, last.Y)
		_ = dc.Stroke()
		return
	}

	// Per-segment widths, with discs over the joins to hide the seams.
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		dc.SetLineWidth(math.Max(1, (size(p0)+size(p1))/2))
		if i == 0 {
			dc.MoveTo(p0.X, p0.Y)
		} else {
			m := pts[i-1].Point().Mid(p0.Point())
			dc.MoveTo(m.X, m.Y)
		}
		if i < len(pts)-2 {
			m := p0.Point().Mid(p1.Point())
			dc.QuadraticTo(p0.X, p0.Y, m.X, m.Y)
		} else {
			dc.QuadraticTo(p0.X, p0.Y, p1.X, p1.Y)
		}
		_ = dc.Stroke()
	}
	for _, p := range pts[1:] {
		dc.DrawCircle(p.X, p.Y, math.Max(0.5, size(p)/2.2))
		_ = dc.Fill()
	}
}
