package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	for _, format := range []string{"png", "jpeg", "gif", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			src := encode(t, format, testImage(7, 5))
			img, got, err := Decode(src)
			if err != nil {
				t.Fatal(err)
			}
			if got != format {
				t.Errorf("format = %q", got)
			}
			if b := img.Bounds(); b.Dx() != 7 || b.Dy() != 5 {
				t.Errorf("bounds = %v", b)
			}
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := encode(t, "png", testImage(3, 3))
	url := DataURL("", raw)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("DataURL = %.40s", url)
	}
	img, format, err := Decode([]byte(url))
	if err != nil || format != "png" || img.Bounds().Dx() != 3 {
		t.Fatalf("Decode(data URL) = %v, %q, %v", img, format, err)
	}

	mt, data, err := ParseDataURL(url)
	if err != nil || mt != "image/png" || !bytes.Equal(data, raw) {
		t.Errorf("ParseDataURL = %q, %d bytes, %v", mt, len(data), err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want error
	}{
		{"nil", nil, ErrEmptySource},
		{"empty", []byte{}, ErrEmptySource},
		{"no comma", []byte("data:image/png;base64"), ErrBadDataURL},
		{"not base64 flag", []byte("data:image/png,abc"), ErrBadDataURL},
		{"bad payload", []byte("data:image/png;base64,@@@"), ErrBadDataURL},
		{"empty payload", []byte("data:image/png;base64,"), ErrEmptySource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.src); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Error("garbage decoded")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH float64
	}{
		{300, 200, 300, 200},
		{1200, 600, 600, 300},
		{400, 1600, 150, 600},
		{600, 600, 600, 600},
	}
	for _, tt := range tests {
		if w, h := Fit(tt.w, tt.h, 600); w != tt.wantW || h != tt.wantH {
			t.Errorf("Fit(%v, %v) = %v, %v", tt.w, tt.h, w, h)
		}
	}
}

func TestDecoderPostsEveryResult(t *testing.T) {
	var (
		mu      sync.Mutex
		results = map[uuid.UUID]Result{}
	)
	d := NewDecoder(func(r Result) {
		mu.Lock()
		results[r.ID] = r
		mu.Unlock()
	}, 2)

	good, bad := uuid.New(), uuid.New()
	d.Go(good, encode(t, "png", testImage(4, 4)))
	d.Go(bad, []byte("broken"))
	d.Wait()

	if r := results[good]; r.Err != nil || r.Image == nil {
		t.Errorf("good result = %+v", r)
	}
	if r := results[bad]; r.Err == nil || r.Image != nil {
		t.Errorf("bad result = %+v", r)
	}
}

func TestDecodeAllSkipsFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	got, err := DecodeAll(context.Background(), map[uuid.UUID][]byte{
		a: encode(t, "png", testImage(2, 2)),
		b: []byte("junk"),
		c: []byte(DataURL("", encode(t, "gif", testImage(2, 2)))),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[a] == nil || got[c] == nil {
		t.Errorf("decoded %d images", len(got))
	}
	if _, ok := got[b]; ok {
		t.Error("failed source has pixels")
	}
}

func TestDecodeAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeAll(ctx, map[uuid.UUID][]byte{uuid.New(): encode(t, "png", testImage(2, 2))})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
