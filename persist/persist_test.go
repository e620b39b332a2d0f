package persist

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-board/inkwell/geom"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/scene"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleDocument(t *testing.T) *scene.Document {
	t.Helper()
	d := scene.NewDocument(400, 300)
	s := scene.NewStroke(scene.Chalk, "#0078d4", 6)
	s.Points = []geom.Sample{{X: 1, Y: 2, Size: 6}, {X: 30, Y: 40, Size: 7}}
	s.IsShape = true
	tb := scene.NewTextBox(geom.Pt(50, 60), "two\nlines", scene.TextStyle{Family: "mono", Size: 18, Bold: true, Align: scene.AlignRight, Color: "#fff"})
	im := scene.NewImageObject(pngBytes(t), geom.Rect{X: 5, Y: 6, W: 70, H: 80})

	for _, a := range []scene.Action{
		{Kind: scene.StrokeAdd, Layer: 1, Stroke: s},
		{Kind: scene.TextAdd, Layer: 2, Text: tb},
		{Kind: scene.ImageAdd, Layer: 0, Image: im},
	} {
		if err := d.Commit(a); err != nil {
			t.Fatal(err)
		}
	}
	d.Page().Layers[2].Opacity = 0.25
	d.Page().Layers[0].Visible = false
	d.AddPage()
	d.Pages[1].Layers[1].Locked = true
	if err := d.SwitchPage(1); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := sampleDocument(t)
	data, err := Marshal(Capture(d))
	if err != nil {
		t.Fatal(err)
	}
	snap, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	pages, current, sources := Restore(snap)
	if len(pages) != 2 || current != 1 {
		t.Fatalf("restored %d pages, current %d", len(pages), current)
	}

	orig, got := d.Pages[0], pages[0]
	if got.Active != orig.Active || len(got.Layers) != 3 {
		t.Fatalf("page 0: active %d, %d layers", got.Active, len(got.Layers))
	}
	for i, l := range got.Layers {
		o := orig.Layers[i]
		if l.ID != o.ID || l.Name != o.Name || l.Visible != o.Visible || l.Locked != o.Locked || l.Opacity != o.Opacity {
			t.Errorf("layer %d = %+v, want %+v", i, l, o)
		}
	}

	s, want := got.Layers[1].Strokes[0], orig.Layers[1].Strokes[0]
	if s.ID != want.ID || s.Tool != scene.Chalk || s.Color != want.Color || !s.IsShape || len(s.Points) != 2 || s.Points[1] != want.Points[1] {
		t.Errorf("stroke = %+v", s)
	}

	tb := got.Layers[2].Texts[0]
	if tb.Text() != "two\nlines" || tb.Style() != orig.Layers[2].Texts[0].Style() || tb.Pos != geom.Pt(50, 60) {
		t.Errorf("text = %q %+v at %v", tb.Text(), tb.Style(), tb.Pos)
	}

	im := got.Layers[0].Images[0]
	if im.Bounds() != (geom.Rect{X: 5, Y: 6, W: 70, H: 80}) {
		t.Errorf("image bounds = %v", im.Bounds())
	}
	if _, _, err := imaging.Decode(sources[im.ID]); err != nil {
		t.Errorf("image source does not decode: %v", err)
	}
	if !pages[1].Layers[1].Locked {
		t.Error("lock flag of page 1 lost")
	}
}

func TestUnmarshalSkipsCorruptRecords(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"pages": [
			{"layers": [
				{"name": "L", "strokes": [
					{"tool": "pen", "color": "#fff", "size": 4, "opacity": 1, "points": [{"x": 1, "y": 1, "size": 4}]},
					{"tool": "laser", "size": 4, "points": [{"x": 1, "y": 1, "size": 4}]},
					{"tool": "pen", "size": 4, "points": []},
					"garbage"
				],
				"textBoxes": [{"text": ""}, {"text": "ok", "x": 3}],
				"images": [{"dataURL": "", "width": 5, "height": 5}]}
			]},
			42
		]
	}`)
	snap, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Pages) != 1 {
		t.Fatalf("pages = %d", len(snap.Pages))
	}
	l := snap.Pages[0].Layers[0]
	if len(l.Strokes) != 1 || len(l.TextBoxes) != 1 || len(l.Images) != 0 {
		t.Errorf("kept %d strokes, %d texts, %d images", len(l.Strokes), len(l.TextBoxes), len(l.Images))
	}
	if !l.Visible || l.Opacity != 1 {
		t.Errorf("missing flags did not default: visible %v opacity %v", l.Visible, l.Opacity)
	}
	if snap.Pages[0].ActiveLayer != 1 {
		t.Errorf("active layer = %d", snap.Pages[0].ActiveLayer)
	}
}

func TestUnmarshalBareArrayWithNumericIDs(t *testing.T) {
	data := []byte(`[{"layers":[{"name":"Main","visible":true,"locked":false,"opacity":0.5,
		"strokes":[{"id":1712345678901,"tool":"highlighter","color":"#c19c00","size":10,"opacity":0.5,"points":[{"x":0,"y":0,"size":10}]}],
		"textBoxes":[],"images":[]}],"activeLayer":0}]`)
	snap, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	pages, _, _ := Restore(snap)
	s := pages[0].Layers[0].Strokes[0]
	if s.ID == uuid.Nil || s.Tool != scene.Highlighter {
		t.Errorf("stroke = %+v", s)
	}
	if pages[0].Active != 0 || pages[0].Layers[0].Opacity != 0.5 {
		t.Errorf("page = %+v", pages[0])
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "  ", ErrNoSnapshot},
		{"not json", "{oops", ErrCorrupt},
		{"no pages", `{"pages": []}`, ErrCorrupt},
		{"only bad pages", `[1, "x"]`, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRestoreFixesIndices(t *testing.T) {
	pages, current, _ := Restore(Snapshot{
		Current: 7,
		Pages:   []PageRecord{{ActiveLayer: 9}, {ActiveLayer: -1, Layers: []LayerRecord{{Name: "only", Visible: true, Opacity: 1}}}},
	})
	if current != 0 {
		t.Errorf("current = %d", current)
	}
	if len(pages[0].Layers) != 3 || pages[0].Active != 1 {
		t.Errorf("layerless page restored as %d layers, active %d", len(pages[0].Layers), pages[0].Active)
	}
	if pages[1].Active != 0 {
		t.Errorf("single-layer page active = %d", pages[1].Active)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "board.json"))
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("empty store: %v", err)
	}
	for _, data := range []string{"first", "second"} {
		if err := s.Save(ctx, []byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Load(ctx)
	if err != nil || string(got) != "second" {
		t.Errorf("Load = %q, %v", got, err)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".inkwell-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 4)
	d := NewDebouncer(100*time.Millisecond, func() {
		runs.Add(1)
		done <- struct{}{}
	})
	for range 10 {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}
	time.Sleep(250 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
	if d.Pending() {
		t.Error("still pending after the run")
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func() { runs.Add(1) })
	if d.Flush() {
		t.Error("Flush with nothing pending reported a run")
	}
	d.Trigger()
	if !d.Flush() || runs.Load() != 1 {
		t.Fatalf("Flush ran %d times", runs.Load())
	}
	d.Trigger()
	d.Stop()
	d.Trigger()
	if d.Pending() || d.Flush() || runs.Load() != 1 {
		t.Error("stopped debouncer still runs")
	}
}
