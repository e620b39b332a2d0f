package render

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
)

const pageW, pageH = 200, 150

var testFonts = NewFonts()

func newRenderer(t *testing.T, seed int64) *Renderer {
	t.Helper()
	return New(pageW, pageH, WithFonts(testFonts), WithRand(rand.New(rand.NewSource(seed))))
}

func hline(tool scene.Tool, y float64, sizes ...float64) *scene.Stroke {
	s := scene.NewStroke(tool, "#c50f1f", 8)
	for i, sz := range sizes {
		s.Points = append(s.Points, geom.Sample{X: 20 + float64(i)*20, Y: y, Size: sz})
	}
	return s
}

func alphaAt(pm *gg.Pixmap, x, y int) float64 {
	return pm.GetPixel(x, y).A
}

func TestRebuildAllocatesPageRaster(t *testing.T) {
	r := newRenderer(t, 1)
	l := scene.NewLayer("", "x")
	r.Rebuild(l, nil)
	pm := l.Raster()
	if pm == nil || pm.Width() != pageW || pm.Height() != pageH {
		t.Fatalf("raster = %v", pm)
	}
	for _, b := range pm.Data() {
		if b != 0 {
			t.Fatal("empty layer raster is not transparent")
		}
	}
}

func TestStrokeShapes(t *testing.T) {
	tests := []struct {
		name   string
		stroke *scene.Stroke
		x, y   int
	}{
		{"dot", hline(scene.Ink, 50, 10), 20, 50},
		{"segment", hline(scene.Ink, 50, 6, 6), 30, 50},
		{"constant", hline(scene.Ink, 50, 6, 6, 6, 6, 6), 60, 50},
		{"pressure", hline(scene.Ink, 50, 4, 8, 12, 6, 10), 60, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(t, 1)
			l := scene.NewLayer("", "x")
			l.Strokes = []*scene.Stroke{tt.stroke}
			r.Rebuild(l, nil)
			if a := alphaAt(l.Raster(), tt.x, tt.y); a < 0.5 {
				t.Errorf("alpha at (%d,%d) = %v, want ink", tt.x, tt.y, a)
			}
			if a := alphaAt(l.Raster(), 190, 140); a != 0 {
				t.Errorf("alpha far from the stroke = %v", a)
			}
		})
	}
}

func TestShapeStrokeIsPolyline(t *testing.T) {
	r := newRenderer(t, 1)
	l := scene.NewLayer("", "x")
	s := scene.NewStroke(scene.Ink, "#ffffff", 4)
	s.IsShape = true
	s.Points = []geom.Sample{{X: 20, Y: 20, Size: 4}, {X: 120, Y: 20, Size: 4}, {X: 120, Y: 120, Size: 4}}
	l.Strokes = []*scene.Stroke{s}
	r.Rebuild(l, nil)
	// The corner is kept sharp rather than smoothed through a midpoint.
	if a := alphaAt(l.Raster(), 120, 21); a < 0.5 {
		t.Errorf("corner alpha = %v", a)
	}
}

func TestRasterConsistencyAfterAddAndDelete(t *testing.T) {
	build := func(withExtra bool) []byte {
		r := newRenderer(t, 3)
		d := scene.NewDocument(pageW, pageH)
		d.SetRasterizer(r)
		base := hline(scene.Ink, 40, 6, 7, 8, 9)
		if err := d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 1, Stroke: base}); err != nil {
			t.Fatal(err)
		}
		if withExtra {
			extra := hline(scene.Ink, 45, 6, 6, 6)
			if err := d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 1, Stroke: extra}); err != nil {
				t.Fatal(err)
			}
			l := d.Page().Layers[1]
			if err := d.Commit(scene.Action{Kind: scene.StrokeErase, Layer: 1, Stroke: extra, Index: l.StrokeIndex(extra)}); err != nil {
				t.Fatal(err)
			}
		}
		return bytes.Clone(d.Page().Layers[1].Raster().Data())
	}
	if !bytes.Equal(build(true), build(false)) {
		t.Error("raster after add+delete differs from a raster that never had the stroke")
	}
}

func TestEraserClearsPixels(t *testing.T) {
	r := newRenderer(t, 1)
	l := scene.NewLayer("", "x")
	l.Strokes = []*scene.Stroke{hline(scene.Ink, 50, 10, 10, 10, 10, 10)}
	r.Rebuild(l, nil)
	if alphaAt(l.Raster(), 60, 50) < 0.5 {
		t.Fatal("ink not drawn")
	}
	eraser := scene.NewStroke(scene.Eraser, "#000", 24)
	eraser.Points = []geom.Sample{{X: 60, Y: 30, Size: 24}, {X: 60, Y: 50, Size: 24}, {X: 60, Y: 70, Size: 24}}
	l.Strokes = append(l.Strokes, eraser)
	r.Rebuild(l, nil)
	if a := alphaAt(l.Raster(), 60, 50); a > 0.05 {
		t.Errorf("alpha under the eraser = %v", a)
	}
	if alphaAt(l.Raster(), 100, 50) < 0.5 {
		t.Error("eraser removed ink outside its path")
	}
}

func TestToolOpacity(t *testing.T) {
	tests := []struct {
		tool     scene.Tool
		min, max float64
	}{
		{scene.Ink, 0.95, 1},
		{scene.Graphite, 0.45, 0.65},
		{scene.Highlighter, 0.3, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.tool.String(), func(t *testing.T) {
			r := newRenderer(t, 1)
			l := scene.NewLayer("", "x")
			l.Strokes = []*scene.Stroke{hline(tt.tool, 50, 12, 12, 12, 12)}
			r.Rebuild(l, nil)
			if a := alphaAt(l.Raster(), 50, 50); a < tt.min || a > tt.max {
				t.Errorf("alpha = %v, want in [%v, %v]", a, tt.min, tt.max)
			}
		})
	}
}

func TestChalkIsRepeatableWithSeed(t *testing.T) {
	raster := func(seed int64) []byte {
		r := newRenderer(t, seed)
		l := scene.NewLayer("", "x")
		l.Strokes = []*scene.Stroke{hline(scene.Chalk, 60, 6, 6, 6, 6, 6, 6)}
		r.Rebuild(l, nil)
		return bytes.Clone(l.Raster().Data())
	}
	if !bytes.Equal(raster(5), raster(5)) {
		t.Error("same seed produced different chalk rasters")
	}
}

type pixels map[uuid.UUID]image.Image

func (p pixels) Pixels(id uuid.UUID) (image.Image, bool) {
	img, ok := p[id]
	return img, ok
}

func solid(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestImagesDrawOnlyWhenDecoded(t *testing.T) {
	r := newRenderer(t, 1)
	l := scene.NewLayer("", "x")
	im := scene.NewImageObject([]byte("png"), geom.Rect{X: 10, Y: 10, W: 40, H: 30})
	l.Images = []*scene.ImageObject{im}

	r.Rebuild(l, pixels{})
	if alphaAt(l.Raster(), 30, 25) != 0 {
		t.Fatal("undecoded image was drawn")
	}

	r.Rebuild(l, pixels{im.ID: solid(4, 3, color.NRGBA{R: 0, G: 255, B: 0, A: 255})})
	for _, pt := range [][2]int{{11, 11}, {30, 25}, {48, 38}} {
		if p := l.Raster().GetPixel(pt[0], pt[1]); p.A < 0.99 || p.G < 0.99 {
			t.Errorf("image pixel at %v = %+v", pt, p)
		}
	}
	if alphaAt(l.Raster(), 52, 25) != 0 || alphaAt(l.Raster(), 30, 42) != 0 {
		t.Error("image drawn outside its rectangle")
	}
}

func TestTextIsMeasured(t *testing.T) {
	r := newRenderer(t, 1)
	l := scene.NewLayer("", "x")
	tb := scene.NewTextBox(geom.Pt(10, 10), "Hello\nwide world", scene.TextStyle{Family: "mono", Size: 16, Color: "#ffffff"})
	l.Texts = []*scene.TextBox{tb}
	r.Rebuild(l, nil)
	if !tb.Measured() {
		t.Fatal("text box not measured after rebuild")
	}
	w, h := tb.Size()
	if w <= 0 || w == 150 || h != 2*16*1.4 {
		t.Errorf("measured size = %v x %v", w, h)
	}
	var inked bool
	pm := l.Raster()
	for y := 10; y < 10+int(h); y++ {
		for x := 10; x < 10+int(w); x++ {
			if alphaAt(pm, x, y) > 0 {
				inked = true
			}
		}
	}
	if !inked {
		t.Error("no text pixels inside the measured box")
	}
}

func TestFlatten(t *testing.T) {
	r := newRenderer(t, 1)
	d := scene.NewDocument(pageW, pageH)
	d.SetRasterizer(r)
	d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 1, Stroke: hline(scene.Ink, 50, 10, 10, 10)})
	d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 2, Stroke: hline(scene.Ink, 100, 10, 10, 10)})
	d.Page().Layers[2].Visible = false

	img := r.Flatten(d.Page())
	if b := img.Bounds(); b.Dx() != pageW || b.Dy() != pageH {
		t.Fatalf("bounds = %v", b)
	}
	if _, _, _, a := img.At(190, 140).RGBA(); a != 0xffff {
		t.Error("background is not opaque")
	}
	if r0, g0, b0, _ := img.At(190, 140).RGBA(); r0 != 0xffff || g0 != 0xffff || b0 != 0xffff {
		t.Error("background is not white")
	}
	if _, g0, _, _ := img.At(40, 50).RGBA(); g0 > 0x8000 {
		t.Error("visible stroke missing from the flattened page")
	}
	if _, g0, _, _ := img.At(40, 100).RGBA(); g0 != 0xffff {
		t.Error("hidden layer leaked into the flattened page")
	}

	thumb := r.Thumbnail(d.Page(), 40, 30)
	if b := thumb.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("thumbnail bounds = %v", b)
	}
	// Page (40, 50) lands on thumbnail (8, 10).
	if _, g0, _, _ := thumb.At(8, 10).RGBA(); g0 > 0xc000 {
		t.Error("stroke missing from the thumbnail")
	}
	if _, g0, _, _ := thumb.At(8, 20).RGBA(); g0 != 0xffff {
		t.Error("hidden layer leaked into the thumbnail")
	}
}

func TestLayerOpacityInFlatten(t *testing.T) {
	r := newRenderer(t, 1)
	d := scene.NewDocument(pageW, pageH)
	d.SetRasterizer(r)
	d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 1, Stroke: hline(scene.Ink, 50, 10, 10, 10)})
	_, full, _, _ := r.Flatten(d.Page()).At(40, 50).RGBA()
	d.Page().Layers[1].Opacity = 0.5
	_, half, _, _ := r.Flatten(d.Page()).At(40, 50).RGBA()
	if half <= full || half == 0xffff {
		t.Errorf("green at half opacity = %#x, full = %#x", half, full)
	}
}

func TestFrame(t *testing.T) {
	r := newRenderer(t, 1)
	d := scene.NewDocument(pageW, pageH)
	d.SetRasterizer(r)

	live := hline(scene.Ink, 20, 8, 8, 8)
	pm := r.Frame(d.Page(), View{Width: 120, Height: 90, Zoom: 0.5, Pan: geom.Pt(10, 10)}, live)
	if pm.Width() != 120 || pm.Height() != 90 {
		t.Fatalf("frame is %dx%d", pm.Width(), pm.Height())
	}
	if !near(pm.GetPixel(110, 80), DarkBackground) {
		t.Errorf("background pixel = %+v, want %+v", pm.GetPixel(110, 80), DarkBackground)
	}
	// Page (40, 20) maps to screen (30, 20).
	if near(pm.GetPixel(30, 20), DarkBackground) {
		t.Error("live stroke not painted on the frame")
	}
}

func TestFrameScalesLayers(t *testing.T) {
	r := newRenderer(t, 1)
	d := scene.NewDocument(pageW, pageH)
	d.SetRasterizer(r)
	d.Commit(scene.Action{Kind: scene.StrokeAdd, Layer: 1, Stroke: hline(scene.Ink, 100, 12, 12, 12, 12)})

	pm := r.Frame(d.Page(), View{Width: 200, Height: 150, Zoom: 0.5, Pan: geom.Pt(10, 10)}, nil)
	// Page (50, 100) maps to screen (35, 60).
	if near(pm.GetPixel(35, 60), DarkBackground) {
		t.Error("committed stroke missing at its zoomed position")
	}
	if !near(pm.GetPixel(50, 100), DarkBackground) {
		t.Error("stroke drawn at its unzoomed position")
	}
}

func near(a, b gg.RGBA) bool {
	const eps = 2.0 / 255
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps && math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}
