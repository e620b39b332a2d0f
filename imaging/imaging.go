// Package imaging turns encoded image sources into decoded pixels.
//
// Sources are the raw bytes of a PNG, JPEG, GIF, WebP, BMP or TIFF file,
// or a base64 data URL wrapping one. Decoding happens off the event loop;
// results are posted back as values so the document is only ever touched
// by the goroutine that owns it.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"math"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// MaxPixels bounds the area of a decoded image.
const MaxPixels = 64 << 20

// Decode errors.
var (
	// ErrEmptySource is returned for a nil or empty source.
	ErrEmptySource = errors.New("imaging: empty source")

	// ErrBadDataURL is returned for a data URL that is not base64 image data.
	ErrBadDataURL = errors.New("imaging: malformed data URL")

	// ErrTooLarge is returned when the image header announces more than
	// MaxPixels pixels.
	ErrTooLarge = errors.New("imaging: image too large")
)

// Decode decodes src, which may be raw file bytes or a data URL, and
// returns the image together with its format name.
func Decode(src []byte) (image.Image, string, error) {
	data, err := Bytes(src)
	if err != nil {
		return nil, "", err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("imaging: decode %s: %w", format, err)
	}
	return img, format, nil
}

// Bytes returns the encoded image bytes of src, unwrapping a data URL.
func Bytes(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrEmptySource
	}
	if !bytes.HasPrefix(src, []byte("data:")) {
		return src, nil
	}
	_, data, err := ParseDataURL(string(src))
	return data, err
}

// ParseDataURL splits a base64 data URL into its media type and payload.
func ParseDataURL(s string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mediaType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	if len(data) == 0 {
		return "", nil, ErrEmptySource
	}
	return mediaType, data, nil
}

// DataURL encodes data as a base64 data URL. An empty mediaType is sniffed
// from the image header.
func DataURL(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = MediaType(data)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// MediaType returns the MIME type of encoded image data, or
// application/octet-stream when the format is not recognised.
func MediaType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "application/octet-stream"
	}
	return "image/" + format
}

// Fit scales w×h down to fit inside a max×max square, keeping the aspect
// ratio. Sizes already inside are returned unchanged.
func Fit(w, h, max float64) (float64, float64) {
	if w <= max && h <= max {
		return w, h
	}
	s := max / math.Max(w, h)
	return w * s, h * s
}
