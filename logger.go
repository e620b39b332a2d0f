package inkwell

import (
	"log/slog"

	"github.com/inkwell-board/inkwell/internal/logging"
)

// SetLogger configures the logger for inkwell and all its sub-packages.
// By default inkwell produces no log output. Pass nil to restore silence.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by inkwell:
//   - [slog.LevelDebug]: per-operation diagnostics (layer rebuilds,
//     recognised shapes, coalesced frames)
//   - [slog.LevelInfo]: lifecycle events (snapshot loaded, server listening)
//   - [slog.LevelWarn]: non-fatal failures (image decode, snapshot writes,
//     corrupt snapshot records)
//
// Example:
//
//	inkwell.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger. It never returns nil.
func Logger() *slog.Logger {
	return logging.L()
}
