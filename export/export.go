// Package export writes flattened page rasters as PNG or PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PointsPerPixel maps raster pixels to PDF points, treating the raster as
// 96 dpi.
const PointsPerPixel = 0.75

// ErrNoPages is returned by PDF when there is nothing to write.
var ErrNoPages = errors.New("export: no pages")

// PNG encodes img.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// PDF writes a document with one page per image. Each PDF page has the
// image's aspect ratio and is covered by it edge to edge.
func PDF(w io.Writer, pages []image.Image, title string) error {
	if len(pages) == 0 {
		return ErrNoPages
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	pdf.SetTitle(title, true)
	pdf.SetCreator("inkwell", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	var buf bytes.Buffer
	for i, img := range pages {
		b := img.Bounds()
		if b.Empty() {
			return fmt.Errorf("export: page %d is empty", i+1)
		}
		buf.Reset()
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("export: encode page %d: %w", i+1, err)
		}
		wd, ht := float64(b.Dx())*PointsPerPixel, float64(b.Dy())*PointsPerPixel
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wd, Ht: ht})

		name := fmt.Sprintf("page-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(buf.Bytes()))
		pdf.ImageOptions(name, 0, 0, wd, ht, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("export: page %d: %w", i+1, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
