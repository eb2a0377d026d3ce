package imagepkg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

const DefaultFamily = "Go"

type fontStyle int

const (
	styleRegular fontStyle = iota
	styleBold
	styleItalic
	styleBoldItalic
)

func styleOf(bold, italic bool) fontStyle {
	switch {
	case bold && italic:
		return styleBoldItalic
	case bold:
		return styleBold
	case italic:
		return styleItalic
	}
	return styleRegular
}

type fontKey struct {
	family string
	style  fontStyle
}

// FontBook maps family names to parsed fonts. Parsed fonts are shared;
// faces are created per render because they are not safe for concurrent use.
type FontBook struct {
	mu    sync.RWMutex
	fonts map[fontKey]*truetype.Font
}

// NewFontBook registers the built-in Go font families.
func NewFontBook() *FontBook {
	b := &FontBook{fonts: make(map[fontKey]*truetype.Font)}
	builtin := []struct {
		family string
		style  fontStyle
		ttf    []byte
	}{
		{"Go", styleRegular, goregular.TTF},
		{"Go", styleBold, gobold.TTF},
		{"Go", styleItalic, goitalic.TTF},
		{"Go", styleBoldItalic, gobolditalic.TTF},
		{"Go Medium", styleRegular, gomedium.TTF},
		{"Go Medium", styleItalic, gomediumitalic.TTF},
		{"Go Mono", styleRegular, gomono.TTF},
		{"Go Mono", styleBold, gomonobold.TTF},
		{"Go Mono", styleItalic, gomonoitalic.TTF},
		{"Go Mono", styleBoldItalic, gomonobolditalic.TTF},
		{"Go Smallcaps", styleRegular, gosmallcaps.TTF},
		{"Go Smallcaps", styleItalic, gosmallcapsitalic.TTF},
	}
	for _, f := range builtin {
		parsed, err := truetype.Parse(f.ttf)
		if err != nil {
			panic(fmt.Sprintf("parsing built-in font %s: %v", f.family, err))
		}
		b.fonts[fontKey{f.family, f.style}] = parsed
	}
	return b
}

// Register adds a TrueType font under family and style.
func (b *FontBook) Register(family string, bold, italic bool, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parsing font %s: %w", family, err)
	}
	b.mu.Lock()
	b.fonts[fontKey{family, styleOf(bold, italic)}] = f
	b.mu.Unlock()
	return nil
}

// LoadDir registers every .ttf file in dir. The family is the file stem
// with a trailing -Bold, -Italic or -BoldItalic removed.
func (b *FontBook) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".ttf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, err
		}
		family, bold, italic := parseFontName(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err := b.Register(family, bold, italic, data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func parseFontName(stem string) (family string, bold, italic bool) {
	lower := strings.ToLower(stem)
	for _, s := range []struct {
		suffix       string
		bold, italic bool
	}{
		{"-bolditalic", true, true},
		{"-bold", true, false},
		{"-italic", false, true},
		{"-regular", false, false},
	} {
		if strings.HasSuffix(lower, s.suffix) {
			return stem[:len(stem)-len(s.suffix)], s.bold, s.italic
		}
	}
	return stem, false, false
}

func (b *FontBook) Families() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range b.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// Face returns a new face for the closest registered match, falling back
// to the regular style and then to the default family.
func (b *FontBook) Face(family string, size float64, bold, italic bool) font.Face {
	b.mu.RLock()
	defer b.mu.RUnlock()
	style := styleOf(bold, italic)
	candidates := []fontKey{
		{family, style},
		{family, styleOf(bold, false)},
		{family, styleRegular},
		{DefaultFamily, style},
		{DefaultFamily, styleRegular},
	}
	for _, k := range candidates {
		if f, ok := b.fonts[k]; ok {
			return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
		}
	}
	return nil
}
