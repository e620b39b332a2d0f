package inkwell

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/inkwell-board/inkwell/export"
	"github.com/inkwell-board/inkwell/imaging"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/persist"
)

// autosaveTimeout bounds one background snapshot write.
const autosaveTimeout = 30 * time.Second

// scheduleSave restarts the autosave quiet period.
func (e *Editor) scheduleSave() {
	if e.saver != nil {
		e.saver.Trigger()
	}
}

// Snapshot captures the document in its persisted form.
func (e *Editor) Snapshot() persist.Snapshot {
	return persist.Capture(e.doc)
}

// autosave writes a snapshot in the background. The document is captured
// and encoded here, on the editing goroutine; only the write runs
// concurrently.
func (e *Editor) autosave() {
	if e.store == nil || !e.unsaved {
		return
	}
	e.unsaved = false
	data, err := persist.Marshal(e.Snapshot())
	if err != nil {
		logging.L().Warn("inkwell: encode snapshot", "err", err)
		return
	}
	e.saveSeq++
	seq := e.saveSeq
	e.writes.Add(1)
	go func() {
		defer e.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
		defer cancel()
		if err := e.write(ctx, seq, data); err != nil {
			logging.L().Warn("inkwell: autosave failed", "err", err)
			return
		}
		logging.L().Debug("inkwell: autosaved", "bytes", len(data))
	}()
}

// write stores snapshot number seq. Writes are serialised, and a snapshot
// older than the last one stored is dropped.
func (e *Editor) write(ctx context.Context, seq uint64, data []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if seq < e.written {
		logging.L().Debug("inkwell: stale snapshot dropped", "seq", seq, "written", e.written)
		return nil
	}
	if err := e.store.Save(ctx, data); err != nil {
		return err
	}
	e.written = seq
	return nil
}

// Save writes a snapshot to the store now and cancels any pending
// autosave.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}
	if e.saver != nil {
		e.saver.Cancel()
	}
	data, err := persist.Marshal(e.Snapshot())
	if err != nil {
		return err
	}
	e.saveSeq++
	if err := e.write(ctx, e.saveSeq, data); err != nil {
		return err
	}
	e.unsaved = false
	return nil
}

// Load replaces the document with the store's snapshot. A missing snapshot
// leaves the default document in place and is not an error. An unreadable
// one is logged and reported, and the document is kept.
func (e *Editor) Load(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}
	data, err := e.store.Load(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.LoadBytes(ctx, data)
}

// LoadBytes replaces the document with an encoded snapshot. Images are
// decoded concurrently before the swap, so the first frame after loading
// already shows them.
func (e *Editor) LoadBytes(ctx context.Context, data []byte) error {
	snap, err := persist.Unmarshal(data)
	if err != nil {
		logging.L().Warn("inkwell: unreadable snapshot, keeping current document", "err", err)
		return err
	}
	return e.Restore(ctx, snap)
}

// Restore replaces the document with snap.
func (e *Editor) Restore(ctx context.Context, snap persist.Snapshot) error {
	pages, current, sources := persist.Restore(snap)
	pixels, err := imaging.DecodeAll(ctx, sources)
	if err != nil {
		return fmt.Errorf("inkwell: restore images: %w", err)
	}

	e.finishGesture()
	e.live = nil
	e.sel.Clear()
	clear(e.pendingFit)
	e.doc.ReplacePages(pages, current, pixels)
	e.view.Reset()
	e.dirty = true
	e.unsaved = false
	logging.L().Info("inkwell: snapshot loaded", "pages", len(pages), "images", len(pixels))
	return nil
}

// Close stops autosave, writes any pending change, and waits for
// background work. Events posted afterwards are dropped.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	e.mu.Unlock()

	var err error
	if e.store != nil && e.unsaved {
		err = e.Save(ctx)
	}
	if e.saver != nil {
		e.saver.Stop()
	}
	e.decoder.Wait()
	e.writes.Wait()
	return err
}

// ExportPNG writes the current page flattened on white as PNG.
func (e *Editor) ExportPNG(w io.Writer) error {
	return export.PNG(w, e.rend.Flatten(e.doc.Page()))
}

// ExportPDF writes every page, flattened on white, as one PDF page each.
func (e *Editor) ExportPDF(w io.Writer, title string) error {
	pages := make([]image.Image, len(e.doc.Pages))
	for i, p := range e.doc.Pages {
		pages[i] = e.rend.Flatten(p)
	}
	return export.PDF(w, pages, title)
}
