package render

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
)

// Frame backgrounds.
var (
	DarkBackground  = gg.Hex("#1c1c21")
	LightBackground = gg.Hex("#f4f3ef")
)

// View is the screen viewport a frame is rendered for.
type View struct {
	Width, Height int
	Zoom          float64
	Pan           geom.Point
}

// Background returns the frame background of the current theme.
func (r *Renderer) Background() gg.RGBA {
	if r.dark {
		return DarkBackground
	}
	return LightBackground
}

// Frame composites the visible layers of page under v and paints live, the
// stroke being drawn, on top. live may be nil.
func (r *Renderer) Frame(page *scene.Page, v View, live *scene.Stroke) *gg.Pixmap {
	pm := gg.NewPixmap(v.Width, v.Height)
	bg := r.Background()
	pm.Clear(bg)

	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	s2d := f64.Aff3{zoom, 0, v.Pan.X, 0, zoom, v.Pan.Y}
	dst := nrgba(pm)
	forLayers(page, func(src *image.NRGBA, opts *draw.Options) {
		draw.ApproxBiLinear.Transform(dst, s2d, src, src.Bounds(), draw.Over, opts)
	})

	if live != nil && len(live.Points) > 0 {
		dc := gg.NewContext(v.Width, v.Height, gg.WithPixmap(pm))
		defer func() { _ = dc.Close() }()
		r.drawStroke(surface{dc: dc, pm: pm, zoom: zoom, pan: v.Pan}, live, &bg)
	}
	return pm
}

// Flatten returns the page at its full extent on an opaque white
// background, ignoring pan and zoom.
func (r *Renderer) Flatten(page *scene.Page) image.Image {
	dst := white(r.width, r.height)
	forLayers(page, func(src *image.NRGBA, opts *draw.Options) {
		var mask image.Image
		if opts != nil {
			mask = opts.SrcMask
		}
		draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
	})
	return dst
}

// Thumbnail returns the flattened page scaled to w×h.
func (r *Renderer) Thumbnail(page *scene.Page, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := white(w, h)
	forLayers(page, func(src *image.NRGBA, opts *draw.Options) {
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, opts)
	})
	return dst
}

func white(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	return dst
}

// forLayers calls fn for every visible layer raster of page in stack order.
// opts carries the layer opacity as a uniform source mask and is nil for
// opaque layers.
func forLayers(page *scene.Page, fn func(src *image.NRGBA, opts *draw.Options)) {
	for _, l := range page.Layers {
		pm := l.Raster()
		if !l.Visible || l.Opacity <= 0 || pm == nil {
			continue
		}
		var opts *draw.Options
		if l.Opacity < 1 {
			a := uint16(math.Round(l.Opacity * 0xffff))
			opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha16{A: a})}
		}
		fn(nrgba(pm), opts)
	}
}
