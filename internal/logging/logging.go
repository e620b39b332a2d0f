// Package logging holds the logger shared by every inkwell package.
//
// The root package exposes SetLogger and Logger on top of this package so
// that sub-packages can log without importing the root and creating a cycle.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all records. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNop() *slog.Logger { return slog.New(nopHandler{}) }

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newNop())
}

// Set replaces the shared logger. A nil logger restores silence.
func Set(l *slog.Logger) {
	if l == nil {
		l = newNop()
	}
	current.Store(l)
}

// L returns the shared logger. It never returns nil.
func L() *slog.Logger {
	return current.Load()
}
