package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/cache"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"

	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/scene"
)

// Font family names understood by Fonts.
const (
	FamilySans      = "sans"
	FamilyMono      = "mono"
	FamilySmallCaps = "smallcaps"
)

type fontKey struct {
	family       string
	bold, italic bool
}

// builtin maps every family/weight/slant to embedded TTF data. Small caps
// has no bold cut; bold requests fall back to the regular weight.
var builtin = map[fontKey][]byte{
	{FamilySans, false, false}:      goregular.TTF,
	{FamilySans, true, false}:       gobold.TTF,
	{FamilySans, false, true}:       goitalic.TTF,
	{FamilySans, true, true}:        gobolditalic.TTF,
	{FamilyMono, false, false}:      gomono.TTF,
	{FamilyMono, true, false}:       gomonobold.TTF,
	{FamilyMono, false, true}:       gomonoitalic.TTF,
	{FamilyMono, true, true}:        gomonobolditalic.TTF,
	{FamilySmallCaps, false, false}: gosmallcaps.TTF,
	{FamilySmallCaps, true, false}:  gosmallcaps.TTF,
	{FamilySmallCaps, false, true}:  gosmallcapsitalic.TTF,
	{FamilySmallCaps, true, true}:   gosmallcapsitalic.TTF,
}

// Fonts resolves text styles to font faces. Sources are parsed on first
// use and faces are cached by style and size. Fonts is safe for concurrent
// use.
type Fonts struct {
	mu      sync.Mutex
	sources map[fontKey]*text.FontSource
	faces   *cache.ShardedCache[string, text.Face]
}

// NewFonts returns a Fonts backed by the embedded Go font families.
func NewFonts() *Fonts {
	return &Fonts{
		sources: make(map[fontKey]*text.FontSource),
		faces:   cache.NewSharded[string, text.Face](256, cache.StringHasher),
	}
}

// Face returns the face for st. Unknown families fall back to sans. It
// returns nil only if the embedded font data fails to parse.
func (f *Fonts) Face(st scene.TextStyle) text.Face {
	key := fontKey{family: st.Family, bold: st.Bold, italic: st.Italic}
	if _, ok := builtin[key]; !ok {
		key.family = FamilySans
	}
	size := st.FontSize()
	name := fmt.Sprintf("%s/%t/%t/%.2f", key.family, key.bold, key.italic, size)
	return f.faces.GetOrCreate(name, func() text.Face {
		src, err := f.source(key)
		if err != nil {
			logging.L().Warn("render: font unavailable", "font", name, "err", err)
			return nil
		}
		return src.Face(size)
	})
}

func (f *Fonts) source(key fontKey) (*text.FontSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if src, ok := f.sources[key]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(builtin[key])
	if err != nil {
		return nil, fmt.Errorf("render: parse %s font: %w", key.family, err)
	}
	f.sources[key] = src
	return src, nil
}

// Close releases parsed font sources.
func (f *Fonts) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for k, src := range f.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.sources, k)
	}
	f.faces.Clear()
	return first
}
