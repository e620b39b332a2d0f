package render

import (
	"github.com/gogpu/gg"

	"github.com/inkwell-board/inkwell/geom"
)

// Overlay is screen-space selection chrome drawn over a frame.
type Overlay struct {
	// Boxes are dashed outlines around selected objects.
	Boxes []geom.Rect
	// Handles are resize grips, drawn as small filled squares.
	Handles []geom.Point
	// Marquee is the drag rectangle of a selection in progress.
	Marquee    geom.Rect
	HasMarquee bool
}

// HandleSize is the side of a resize grip in screen pixels.
const HandleSize = 8

var accent = gg.Hex("#4c8dff")

// DrawOverlay paints o onto pm.
func DrawOverlay(pm *gg.Pixmap, o Overlay) {
	if len(o.Boxes) == 0 && len(o.Handles) == 0 && !o.HasMarquee {
		return
	}
	dc := gg.NewContext(pm.Width(), pm.Height(), gg.WithPixmap(pm))
	defer func() { _ = dc.Close() }()

	dc.SetColor(accent.Color())
	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	for _, b := range o.Boxes {
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		_ = dc.Stroke()
	}
	if o.HasMarquee {
		m := o.Marquee
		dc.DrawRectangle(m.X, m.Y, m.W, m.H)
		_ = dc.Stroke()
	}
	dc.SetDash()
	for _, h := range o.Handles {
		dc.DrawRectangle(h.X-HandleSize/2, h.Y-HandleSize/2, HandleSize, HandleSize)
		_ = dc.Fill()
	}
}
