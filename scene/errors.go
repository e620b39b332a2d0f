package scene

import "errors"

var (
	// ErrNothingToUndo is returned by Undo when the undo stack is empty.
	ErrNothingToUndo = errors.New("scene: nothing to undo")

	// ErrNothingToRedo is returned by Redo when the redo stack is empty.
	ErrNothingToRedo = errors.New("scene: nothing to redo")

	// ErrLastPage is returned when deleting the only page of a document.
	ErrLastPage = errors.New("scene: cannot delete the last page")

	// ErrLayerLocked is returned when adding content to a locked layer.
	ErrLayerLocked = errors.New("scene: layer is locked")

	// ErrNoSuchPage is returned for an out-of-range page index.
	ErrNoSuchPage = errors.New("scene: no such page")

	// ErrNoSuchLayer is returned for an out-of-range layer index.
	ErrNoSuchLayer = errors.New("scene: no such layer")
)
