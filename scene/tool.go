package scene

import "fmt"

// Tool selects how a stroke is composited into its layer.
type Tool int

const (
	Ink Tool = iota
	Highlighter
	Chalk
	Graphite
	Eraser
)

var toolNames = [...]string{"pen", "highlighter", "chalk", "graphite", "pixel-eraser"}

// String returns the name stored in snapshots.
func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool is the inverse of Tool.String. "ink" and "eraser" are accepted
// as aliases.
func ParseTool(s string) (Tool, error) {
	switch s {
	case "ink":
		return Ink, nil
	case "eraser":
		return Eraser, nil
	}
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return Ink, fmt.Errorf("scene: unknown tool %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DefaultOpacity returns the opacity new strokes of tool t start with.
func (t Tool) DefaultOpacity() float64 {
	if t == Highlighter {
		return 0.5
	}
	return 1
}
