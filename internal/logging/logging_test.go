package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	l := L()
	if l == nil {
		t.Fatal("L() returned nil")
	}
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Handler().Enabled(context.Background(), lvl) {
			t.Errorf("default logger enabled at %v", lvl)
		}
	}
}

func TestSetAndRestore(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	L().Debug("layer rebuilt", "layer", "main")
	if !strings.Contains(buf.String(), "layer rebuilt") {
		t.Errorf("output %q missing message", buf.String())
	}

	Set(nil)
	if L().Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("Set(nil) did not restore the silent logger")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Set(slog.Default())
		}()
		go func() {
			defer wg.Done()
			L().Info("tick")
		}()
	}
	wg.Wait()
}
