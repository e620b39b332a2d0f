// Command inkwell replays an event script against a board and writes the
// result.
//
// A script holds one JSON event per line, in the form accepted by
// inkwell.DecodeEvent. Blank lines and lines starting with # are skipped.
//
//	inkwell -png out.png -pdf out.pdf script.jsonl
//	inkwell -snapshot board.json -out-snapshot board.json < edits.jsonl
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/inkwell-board/inkwell"
	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/persist"
)

func main() {
	var (
		snapshot  = flag.String("snapshot", "", "snapshot to load before replaying")
		outSnap   = flag.String("out-snapshot", "", "write the resulting snapshot here")
		outPNG    = flag.String("png", "", "export the current page as PNG")
		outPDF    = flag.String("pdf", "", "export all pages as PDF")
		width     = flag.Int("width", inkwell.DefaultPageWidth, "page width")
		height    = flag.Int("height", inkwell.DefaultPageHeight, "page height")
		smoothing = flag.String("smoothing", "std", "input smoothing: raw, std or arch")
		smart     = flag.Bool("smart", false, "recognise hand-drawn shapes")
		light     = flag.Bool("light", false, "use the light theme")
		verbose   = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	inkwell.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	mode, err := capture.ParseMode(*smoothing)
	if err != nil {
		log.Fatal(err)
	}

	opts := []inkwell.Option{
		inkwell.WithPageSize(*width, *height),
		inkwell.WithSmoothing(mode),
		inkwell.WithSmartSnap(*smart),
		inkwell.WithDarkMode(!*light),
	}
	e := inkwell.New(opts...)
	ctx := context.Background()
	defer func() { _ = e.Close(ctx) }()

	if *snapshot != "" {
		data, err := os.ReadFile(*snapshot)
		if err != nil {
			log.Fatalf("read snapshot: %v", err)
		}
		if err := e.LoadBytes(ctx, data); err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
	}

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 && flag.Arg(0) != "-" {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}
	n, err := replay(e, in)
	if err != nil {
		log.Fatal(err)
	}
	e.Settle()
	inkwell.Logger().Info("script replayed", "events", n, "pages", e.PageCount())

	if err := writeOutputs(e, *outPNG, *outPDF, *outSnap); err != nil {
		log.Fatal(err)
	}
}

func writeOutputs(e *inkwell.Editor, pngPath, pdfPath, snapPath string) error {
	if pngPath != "" {
		if err := writeFile(pngPath, e.ExportPNG); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		if err := writeFile(pdfPath, func(w io.Writer) error { return e.ExportPDF(w, "inkwell") }); err != nil {
			return err
		}
	}
	if snapPath != "" {
		data, err := persist.Marshal(e.Snapshot())
		if err != nil {
			return err
		}
		if err := persist.NewFileStore(snapPath).Save(context.Background(), data); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
