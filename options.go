package inkwell

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/persist"
	"github.com/inkwell-board/inkwell/recognize"
	"github.com/inkwell-board/inkwell/render"
	"github.com/inkwell-board/inkwell/simplify"
)

// Page and viewport defaults.
const (
	DefaultPageWidth      = 4000
	DefaultPageHeight     = 2800
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
)

// Option configures an Editor during creation.
//
// Example:
//
//	e := inkwell.New(
//	    inkwell.WithSmoothing(capture.Architect),
//	    inkwell.WithSmartSnap(true),
//	    inkwell.WithStore(persist.NewFileStore("board.json")),
//	)
type Option func(*options)

type options struct {
	pageW, pageH int
	viewW, viewH int
	smoothing    capture.Mode
	smartSnap    bool
	dark         bool
	store        persist.Store
	saveDelay    time.Duration
	fonts        *render.Fonts
	rng          *rand.Rand
	recognizer   recognize.Config
	tolerance    float64
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		pageW:      DefaultPageWidth,
		pageH:      DefaultPageHeight,
		viewW:      DefaultViewportWidth,
		viewH:      DefaultViewportHeight,
		smoothing:  capture.Standard,
		dark:       true,
		saveDelay:  persist.DefaultDelay,
		recognizer: recognize.DefaultConfig(),
		tolerance:  simplify.DefaultTolerance,
	}
}

// WithPageSize sets the fixed page extent.
func WithPageSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.pageW, o.pageH = w, h
		}
	}
}

// WithViewportSize sets the size of rendered frames.
func WithViewportSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.viewW, o.viewH = w, h
		}
	}
}

// WithSmoothing sets the initial input smoothing mode.
func WithSmoothing(m capture.Mode) Option {
	return func(o *options) { o.smoothing = m }
}

// WithSmartSnap enables shape recognition of committed strokes.
func WithSmartSnap(on bool) Option {
	return func(o *options) { o.smartSnap = on }
}

// WithDarkMode selects the theme.
func WithDarkMode(dark bool) Option {
	return func(o *options) { o.dark = dark }
}

// WithStore enables autosave to s.
func WithStore(s persist.Store) Option {
	return func(o *options) { o.store = s }
}

// WithSaveDelay sets the quiet period before an autosave.
func WithSaveDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.saveDelay = d
		}
	}
}

// WithFonts shares a font set between editors.
func WithFonts(f *render.Fonts) Option {
	return func(o *options) { o.fonts = f }
}

// WithRand fixes the chalk texture source, for repeatable output.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithRecognizer replaces the shape recognition thresholds.
func WithRecognizer(c recognize.Config) Option {
	return func(o *options) { o.recognizer = c }
}

// WithSimplifyTolerance sets the decimation tolerance for committed
// strokes. Zero disables simplification.
func WithSimplifyTolerance(eps float64) Option {
	return func(o *options) { o.tolerance = eps }
}

// WithLogger installs l as the package logger, as SetLogger does.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
