// Package render rasterises inkwell documents with gg.
//
// Every layer owns a page-sized raster that is rebuilt wholesale whenever
// its content changes: images first, then strokes, then text boxes, each
// in list order. Screen frames, exports and thumbnails are composites of
// those rasters and never re-draw vector content, except for the stroke
// still being drawn, which is painted on top of the frame.
package render

import (
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/scene"
)

// Tool compositing constants.
const (
	HighlighterAlpha = 0.4
	ChalkAlpha       = 0.72
	GraphiteAlpha    = 0.55
)

var chalkDash = []float64{3, 2}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	fonts *Fonts
	rng   *rand.Rand
	dark  bool
}

// WithFonts shares a font set between renderers.
func WithFonts(f *Fonts) Option {
	return func(o *options) { o.fonts = f }
}

// WithRand sets the source of the chalk dash offsets. Tests pass a seeded
// source to get repeatable rasters.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithDarkMode selects the screen blend for highlighters and the dark
// frame background.
func WithDarkMode(dark bool) Option {
	return func(o *options) { o.dark = dark }
}

// Renderer implements scene.Rasterizer on top of gg. It is not safe for
// concurrent use.
type Renderer struct {
	width, height int
	fonts         *Fonts
	rng           *rand.Rand
	dark          bool
}

// New returns a Renderer for pages of the given extent.
func New(width, height int, opts ...Option) *Renderer {
	o := options{dark: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fonts == nil {
		o.fonts = NewFonts()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Renderer{
		width:  width,
		height: height,
		fonts:  o.fonts,
		rng:    o.rng,
		dark:   o.dark,
	}
}

// Size returns the page extent.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Fonts returns the font set used for text boxes.
func (r *Renderer) Fonts() *Fonts { return r.fonts }

// DarkMode reports the current theme.
func (r *Renderer) DarkMode() bool { return r.dark }

// SetDarkMode switches the theme. Callers rebuild layers afterwards so
// highlighters pick up the new blend.
func (r *Renderer) SetDarkMode(dark bool) { r.dark = dark }

// Rebuild implements scene.Rasterizer.
func (r *Renderer) Rebuild(l *scene.Layer, px scene.PixelSource) {
	pm := l.Raster()
	if pm == nil || pm.Width() != r.width || pm.Height() != r.height {
		pm = gg.NewPixmap(r.width, r.height)
		l.SetRaster(pm)
	} else {
		pm.Clear(gg.Transparent)
	}

	dc := gg.NewContext(r.width, r.height, gg.WithPixmap(pm))
	defer func() { _ = dc.Close() }()
	s := surface{dc: dc, pm: pm, zoom: 1}

	for _, im := range l.Images {
		drawImage(pm, im, px)
	}
	for _, st := range l.Strokes {
		r.drawStroke(s, st, nil)
	}
	for _, tb := range l.Texts {
		r.drawText(dc, tb)
	}
	logging.L().Debug("render: layer rebuilt", "layer", l.ID,
		"strokes", len(l.Strokes), "texts", len(l.Texts), "images", len(l.Images))
}

// surface is a drawing target together with the page-to-device mapping
// already set on its context.
type surface struct {
	dc   *gg.Context
	pm   *gg.Pixmap
	zoom float64
	pan  geom.Point
}

func (s surface) toDevice(r geom.Rect) geom.Rect {
	return geom.Rect{X: r.X*s.zoom + s.pan.X, Y: r.Y*s.zoom + s.pan.Y, W: r.W * s.zoom, H: r.H * s.zoom}
}

// drawStroke composites st onto s. The stroke is traced opaque into a
// scratch raster covering its device bounds and then blended according to
// its tool. A non-nil eraseTo paints eraser strokes in that color instead
// of clearing pixels, which is how the live eraser shows on a frame.
func (r *Renderer) drawStroke(s surface, st *scene.Stroke, eraseTo *gg.RGBA) {
	if len(st.Points) == 0 {
		return
	}
	box := s.toDevice(st.Bounds().Inflate(math.Max(1, st.Size)))
	x0 := int(math.Max(0, math.Floor(box.X)))
	y0 := int(math.Max(0, math.Floor(box.Y)))
	x1 := int(math.Min(float64(s.pm.Width()), math.Ceil(box.MaxX())))
	y1 := int(math.Min(float64(s.pm.Height()), math.Ceil(box.MaxY())))
	if x1 <= x0 || y1 <= y0 {
		return
	}

	scratch := gg.NewPixmap(x1-x0, y1-y0)
	sc := gg.NewContext(x1-x0, y1-y0, gg.WithPixmap(scratch))
	defer func() { _ = sc.Close() }()
	sc.Translate(s.pan.X-float64(x0), s.pan.Y-float64(y0))
	sc.Scale(s.zoom, s.zoom)

	col := gg.Hex(st.Color)
	col.A = 1
	opts := gg.DrawImageOptions{X: float64(x0), Y: float64(y0), Interpolation: gg.InterpNearest}

	switch st.Tool {
	case scene.Eraser:
		if eraseTo == nil {
			sc.SetColor(gg.Black.Color())
			traceStroke(sc, st)
			eraseMask(s.pm, scratch, x0, y0)
			return
		}
		col = *eraseTo
		opts.Opacity = 1
	case scene.Highlighter:
		opts.Opacity = HighlighterAlpha
		opts.BlendMode = gg.BlendScreen
		if !r.dark {
			opts.BlendMode = gg.BlendMultiply
			whiten(s.pm, x0, y0, x1, y1)
		}
	case scene.Chalk:
		opts.Opacity = ChalkAlpha
		sc.SetDash(chalkDash...)
		sc.SetDashOffset(r.rng.Float64() * 4)
	case scene.Graphite:
		opts.Opacity = GraphiteAlpha
	case scene.Ink:
		opts.Opacity = math.Min(1, st.Opacity)
	}
	if opts.Opacity <= 0 {
		// gg reads a zero opacity as fully opaque.
		return
	}

	sc.SetColor(col.Color())
	traceStroke(sc, st)
	s.dc.Push()
	s.dc.Identity()
	s.dc.DrawImageEx(pixmapBuf(scratch), opts)
	s.dc.Pop()
}

// eraseMask scales the alpha of dst under mask by the mask's inverse
// coverage. gg exposes no destination-out operator, and the pixmap stores
// straight alpha, so only the alpha byte changes.
func eraseMask(dst, mask *gg.Pixmap, x0, y0 int) {
	d, m := dst.Data(), mask.Data()
	dw, mw := dst.Width(), mask.Width()
	for y := 0; y < mask.Height(); y++ {
		for x := 0; x < mw; x++ {
			a := uint32(m[(y*mw+x)*4+3])
			if a == 0 {
				continue
			}
			i := ((y0+y)*dw+x0+x)*4 + 3
			d[i] = uint8(uint32(d[i]) * (255 - a) / 255)
		}
	}
}

// whiten sets the color of fully transparent pixels in the rectangle to
// white so a multiply blend over empty canvas keeps the source color.
func whiten(pm *gg.Pixmap, x0, y0, x1, y1 int) {
	d, w := pm.Data(), pm.Width()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*w + x) * 4
			if d[i+3] == 0 {
				d[i], d[i+1], d[i+2] = 255, 255, 255
			}
		}
	}
}

// drawImage resamples the decoded pixels of im into its page rectangle.
func drawImage(pm *gg.Pixmap, im *scene.ImageObject, px scene.PixelSource) {
	if px == nil || im.W <= 0 || im.H <= 0 {
		return
	}
	src, ok := px.Pixels(im.ID)
	if !ok || src == nil {
		return
	}
	dr := image.Rect(
		int(math.Round(im.Pos.X)), int(math.Round(im.Pos.Y)),
		int(math.Round(im.Pos.X+im.W)), int(math.Round(im.Pos.Y+im.H)),
	)
	xdraw.BiLinear.Scale(nrgba(pm), dr, src, src.Bounds(), xdraw.Over, nil)
}

// drawText renders tb with its top-left at tb.Pos and stores the measured
// size on the box.
func (r *Renderer) drawText(dc *gg.Context, tb *scene.TextBox) {
	st := tb.Style()
	face := r.fonts.Face(st)
	lines := tb.Lines()
	lh := st.LineHeight()
	if face == nil {
		return
	}

	widths := make([]float64, len(lines))
	var maxW float64
	for i, line := range lines {
		widths[i] = face.Advance(line)
		maxW = math.Max(maxW, widths[i])
	}
	ascent := face.Metrics().Ascent

	dc.SetFont(face)
	dc.SetColor(gg.Hex(st.Color).Color())
	for i, line := range lines {
		var dx float64
		switch st.Align {
		case scene.AlignCenter:
			dx = (maxW - widths[i]) / 2
		case scene.AlignRight:
			dx = maxW - widths[i]
		}
		dc.DrawString(line, tb.Pos.X+dx, tb.Pos.Y+ascent+float64(i)*lh)
	}
	if !tb.Measured() {
		tb.SetMeasured(maxW, float64(len(lines))*lh)
	}
}

// nrgba views the pixels of pm as an image without copying. The pixmap
// holds straight RGBA, which is NRGBA layout.
func nrgba(pm *gg.Pixmap) *image.NRGBA {
	w, h := pm.Width(), pm.Height()
	return &image.NRGBA{Pix: pm.Data(), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// pixmapBuf copies pm into an ImageBuf for gg's blending path.
func pixmapBuf(pm *gg.Pixmap) *gg.ImageBuf {
	return gg.ImageBufFromImage(nrgba(pm))
}
