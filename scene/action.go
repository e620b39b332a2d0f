package scene

import "fmt"

// ActionKind tags an Action.
type ActionKind int

const (
	StrokeAdd ActionKind = iota
	StrokeErase
	TextAdd
	TextErase
	TextDelete
	ImageAdd
	ImageDelete
)

var actionNames = [...]string{"stroke-add", "stroke-erase", "text-add", "text-erase", "text-delete", "image-add", "image-delete"}

func (k ActionKind) String() string {
	if k >= 0 && int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is one invertible mutation of a layer. Exactly one of Stroke,
// Text and Image is set, matching Kind. Index is the position the object
// occupied before a removal.
type Action struct {
	Kind  ActionKind
	Layer int

	Stroke *Stroke
	Text   *TextBox
	Image  *ImageObject

	Index int
}

// apply performs the forward mutation on l.
func (a Action) apply(l *Layer) {
	switch a.Kind {
	case StrokeAdd:
		l.Strokes = append(l.Strokes, a.Stroke)
	case StrokeErase:
		l.Strokes, _ = removeItem(l.Strokes, a.Stroke)
	case TextAdd:
		l.Texts = append(l.Texts, a.Text)
	case TextErase, TextDelete:
		l.Texts, _ = removeItem(l.Texts, a.Text)
	case ImageAdd:
		l.Images = append(l.Images, a.Image)
	case ImageDelete:
		l.Images, _ = removeItem(l.Images, a.Image)
	default:
		panic(fmt.Sprintf("scene: unknown action kind %d", int(a.Kind)))
	}
}

// revert undoes apply on l.
func (a Action) revert(l *Layer) {
	switch a.Kind {
	case StrokeAdd:
		l.Strokes, _ = removeItem(l.Strokes, a.Stroke)
	case StrokeErase:
		l.Strokes = insertAt(l.Strokes, a.Index, a.Stroke)
	case TextAdd:
		l.Texts, _ = removeItem(l.Texts, a.Text)
	case TextErase, TextDelete:
		l.Texts = insertAt(l.Texts, a.Index, a.Text)
	case ImageAdd:
		l.Images, _ = removeItem(l.Images, a.Image)
	case ImageDelete:
		l.Images = insertAt(l.Images, a.Index, a.Image)
	default:
		panic(fmt.Sprintf("scene: unknown action kind %d", int(a.Kind)))
	}
}
