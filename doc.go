// Package inkwell is the editing core of a multi-page whiteboard.
//
// # Overview
//
// An Editor owns a document of pages, each a stack of layers holding
// strokes, text boxes and images, together with the tool, selection and
// view state of one editing session. Layers keep a cached raster that is
// rebuilt only when their content changes, so frames are composited from
// a handful of bitmaps no matter how much ink a page holds.
//
// # Quick Start
//
//	e := inkwell.New(inkwell.WithStore(persist.NewFileStore("board.json")))
//	defer e.Close(context.Background())
//	_ = e.Load(context.Background())
//
//	e.Post(inkwell.PointerDown{X: 100, Y: 100, Pressure: 0.5})
//	e.Post(inkwell.PointerMove{X: 180, Y: 140, Pressure: 0.6})
//	e.Post(inkwell.PointerUp{})
//	if e.Tick() {
//	    show(e.Frame())
//	}
//
// # Events and Rendering
//
// Input arrives as Events. Post is safe from any goroutine; Tick applies
// everything queued so far on the caller's goroutine and renders at most
// one frame, however many events it drained. Background work, image
// decoding and autosave, reports back by posting events of its own, so the
// document is only ever touched from the Tick goroutine.
//
// # Coordinate System
//
// Pointer events are in screen pixels. Content is stored in page units on
// a fixed page, 4000×2800 by default. The viewport maps between the two
// with a zoom factor and a pan offset:
//
//	page = (screen - pan) / zoom
//
// # Persistence
//
// With a store configured every change restarts a short quiet period,
// after which a JSON snapshot of all pages is written in the background.
// Close writes any change still pending.
package inkwell
