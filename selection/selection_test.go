package selection

import (
	"testing"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/scene"
	"github.com/inkwell-board/inkwell/viewport"
)

func stroke(pts ...geom.Point) *scene.Stroke {
	s := scene.NewStroke(scene.Ink, "#fff", 4)
	for _, p := range pts {
		s.Points = append(s.Points, geom.Sample{X: p.X, Y: p.Y, Size: 4})
	}
	return s
}

func TestHitTextTopmostWins(t *testing.T) {
	page := scene.NewPage()
	low := scene.NewTextBox(geom.Pt(10, 10), "low", scene.DefaultTextStyle())
	mid := scene.NewTextBox(geom.Pt(20, 10), "mid", scene.DefaultTextStyle())
	top := scene.NewTextBox(geom.Pt(30, 10), "top", scene.DefaultTextStyle())
	page.Layers[0].Texts = []*scene.TextBox{low}
	page.Layers[1].Texts = []*scene.TextBox{top, mid}
	page.Layers[2].Texts = nil

	// Layer 1 is above layer 0; within layer 1 the later box is on top.
	got, li := HitText(page, geom.Pt(40, 20))
	if got != mid || li != 1 {
		t.Errorf("HitText = %q on layer %d, want mid on layer 1", got.Text(), li)
	}

	page.Layers[1].Visible = false
	if got, li = HitText(page, geom.Pt(40, 20)); got != low || li != 0 {
		t.Errorf("with layer 1 hidden got layer %d", li)
	}

	if got, li = HitText(page, geom.Pt(500, 500)); got != nil || li != -1 {
		t.Errorf("miss returned %v, %d", got, li)
	}
}

func TestHitImageEdgesIncluded(t *testing.T) {
	page := scene.NewPage()
	im := scene.NewImageObject([]byte("x"), geom.Rect{X: 10, Y: 10, W: 50, H: 40})
	page.Layers[1].Images = []*scene.ImageObject{im}

	tests := []struct {
		p   geom.Point
		hit bool
	}{
		{geom.Pt(10, 10), true},
		{geom.Pt(60, 50), true},
		{geom.Pt(35, 30), true},
		{geom.Pt(60.5, 30), false},
		{geom.Pt(9, 30), false},
	}
	for _, tt := range tests {
		got, _ := HitImage(page, tt.p)
		if (got != nil) != tt.hit {
			t.Errorf("HitImage(%v) = %v, want hit %v", tt.p, got, tt.hit)
		}
	}
}

func TestMarqueeAnyPointInside(t *testing.T) {
	page := scene.NewPage()
	crossing := stroke(geom.Pt(0, 0), geom.Pt(50, 50), geom.Pt(500, 500))
	outside := stroke(geom.Pt(300, 300), geom.Pt(400, 400))
	// The segment passes through the marquee but no sample lies inside.
	spanning := stroke(geom.Pt(-100, 40), geom.Pt(200, 40))
	page.Layers[1].Strokes = []*scene.Stroke{crossing, outside, spanning}

	vp := viewport.New()
	vp.SetPan(geom.Pt(0, 0))
	got := Marquee(page, geom.Rect{X: 100, Y: 100, W: -80, H: -80}, vp)
	if len(got) != 1 || got[0] != crossing {
		t.Errorf("Marquee = %d strokes, want only the crossing stroke", len(got))
	}
}

func TestMarqueeSkipsHiddenAndLocked(t *testing.T) {
	page := scene.NewPage()
	hidden := stroke(geom.Pt(10, 10))
	locked := stroke(geom.Pt(20, 20))
	open := stroke(geom.Pt(30, 30))
	page.Layers[0].Strokes = []*scene.Stroke{hidden}
	page.Layers[0].Visible = false
	page.Layers[1].Strokes = []*scene.Stroke{locked}
	page.Layers[1].Locked = true
	page.Layers[2].Strokes = []*scene.Stroke{open}

	vp := viewport.New()
	vp.SetPan(geom.Pt(0, 0))
	got := Marquee(page, geom.Rect{X: 0, Y: 0, W: 50, H: 50}, vp)
	if len(got) != 1 || got[0] != open {
		t.Errorf("Marquee = %d strokes, want only the stroke on the open layer", len(got))
	}
}

func TestMarqueeUsesScreenSpace(t *testing.T) {
	page := scene.NewPage()
	s := stroke(geom.Pt(100, 100))
	page.Layers[1].Strokes = []*scene.Stroke{s}

	vp := viewport.New()
	vp.SetPan(geom.Pt(10, 10))
	vp.SetZoom(2)
	// Page (100,100) is screen (210,210).
	if got := Marquee(page, geom.Rect{X: 90, Y: 90, W: 20, H: 20}, vp); len(got) != 0 {
		t.Error("marquee matched in page space")
	}
	if got := Marquee(page, geom.Rect{X: 200, Y: 200, W: 20, H: 20}, vp); len(got) != 1 {
		t.Error("marquee missed the projected point")
	}
}

func TestPressDragRelease(t *testing.T) {
	page := scene.NewPage()
	tb := scene.NewTextBox(geom.Pt(0, 0), "hi", scene.DefaultTextStyle())
	im := scene.NewImageObject([]byte("x"), geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	page.Layers[1].Texts = []*scene.TextBox{tb}
	page.Layers[1].Images = []*scene.ImageObject{im}
	s := stroke(geom.Pt(300, 300))
	page.Layers[1].Strokes = []*scene.Stroke{s}
	vp := viewport.New()
	vp.SetPan(geom.Pt(0, 0))

	var st State
	if k := st.Press(page, geom.Pt(5, 5), geom.Pt(5, 5)); k != Text || st.Text() != tb {
		t.Fatalf("press on text selected %v", k)
	}
	if k := st.Press(page, geom.Pt(90, 90), geom.Pt(90, 90)); k != Image || st.Image() != im || st.Text() != nil {
		t.Fatalf("press on image selected %v", k)
	}

	if k := st.Press(page, geom.Pt(250, 250), geom.Pt(250, 250)); k != None || !st.Empty() {
		t.Fatal("press on empty canvas kept the previous selection")
	}
	st.Drag(geom.Pt(350, 350))
	if r, ok := st.Marquee(); !ok || r.W != 100 {
		t.Errorf("marquee = %v, %v", r, ok)
	}
	if !st.Release(page, vp) {
		t.Fatal("release did not finish a marquee")
	}
	if st.Kind() != Strokes || !st.Contains(s) {
		t.Errorf("selection kind %v after marquee", st.Kind())
	}
	if st.Release(page, vp) {
		t.Error("second release reported a marquee")
	}

	// A new drag replaces the stroke selection.
	st.Press(page, geom.Pt(1000, 1000), geom.Pt(1000, 1000))
	if !st.Empty() {
		t.Error("new drag kept the old stroke selection")
	}
}

func TestForgetRemovedObjects(t *testing.T) {
	page := scene.NewPage()
	a, b := stroke(geom.Pt(1, 1)), stroke(geom.Pt(2, 2))
	page.Layers[1].Strokes = []*scene.Stroke{a}

	var st State
	st.SelectStrokes([]*scene.Stroke{a, b})
	st.Forget(page)
	if got := st.Strokes(); len(got) != 1 || got[0] != a {
		t.Errorf("strokes after Forget = %v", got)
	}

	tb := scene.NewTextBox(geom.Pt(0, 0), "gone", scene.DefaultTextStyle())
	st.SelectText(tb)
	st.Forget(page)
	if !st.Empty() {
		t.Error("text box not on the page stayed selected")
	}
}
