package inkwell

import "errors"

// Editor errors. Undo and redo on empty stacks are not errors; those
// operations report false instead.
var (
	// ErrNoStore is returned by Save and Load when no store is configured.
	ErrNoStore = errors.New("inkwell: no store configured")

	// ErrNothingSelected is returned by selection edits with an empty
	// selection.
	ErrNothingSelected = errors.New("inkwell: nothing selected")

	// ErrUnknownEvent is returned when decoding an event of an unknown type.
	ErrUnknownEvent = errors.New("inkwell: unknown event type")

	// ErrClosed is returned by operations on a closed editor.
	ErrClosed = errors.New("inkwell: editor closed")
)
