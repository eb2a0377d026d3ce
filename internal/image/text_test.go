package imagepkg

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youruser/quotecanvas/internal/settings"
)

// charMeasurer gives every rune, spaces included, the same width.
type charMeasurer float64

func (m charMeasurer) Measure(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(m)
}

func TestWrap_ThreeWordsPerLine(t *testing.T) {
	quote := strings.TrimSpace(strings.Repeat("abc ", 9))

	// "abc abc abc " is 12 runes wide; a fourth word would need 16
	lines := Wrap(quote, 120, charMeasurer(10))

	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, "abc abc abc", l)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"empty", "", 100, nil},
		{"only spaces", "   ", 100, nil},
		{"fits on one line", "to be or not", 1000, []string{"to be or not"}},
		{"long word keeps its own line", "a supercalifragilistic b", 50, []string{"a", "supercalifragilistic", "b"}},
		{"first word never wraps", "enormous", 10, []string{"enormous"}},
		{"collapses whitespace", "one   two\nthree", 1000, []string{"one two three"}},
		{"uneven words", "aa b cccc d", 60, []string{"aa b", "cccc", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.maxWidth, charMeasurer(10)))
		})
	}
}

func TestWrap_Deterministic(t *testing.T) {
	quote := "The only way to do great work is to love what you do"
	a := Wrap(quote, 150, charMeasurer(7))
	b := Wrap(quote, 150, charMeasurer(7))
	assert.Equal(t, a, b)
}

func TestLayoutLines_VerticalCentering(t *testing.T) {
	s := settings.Default()
	s.FontSize = 40
	s.LineHeight = 150
	s.Padding = 20

	lines := LayoutLines([]string{"a", "b", "c"}, 400, 300, s)

	// line height 60, block 180, first middle at (300-180)/2 + 30
	require.Len(t, lines, 3)
	assert.InDelta(t, 90, lines[0].Y, 1e-9)
	assert.InDelta(t, 150, lines[1].Y, 1e-9)
	assert.InDelta(t, 210, lines[2].Y, 1e-9)
}

func TestLayoutLines_Alignment(t *testing.T) {
	s := settings.Default()
	s.Padding = 20

	s.TextAlign = settings.AlignLeft
	assert.Equal(t, 20.0, LayoutLines([]string{"x"}, 400, 100, s)[0].X)
	s.TextAlign = settings.AlignRight
	assert.Equal(t, 380.0, LayoutLines([]string{"x"}, 400, 100, s)[0].X)
	s.TextAlign = settings.AlignCenter
	assert.Equal(t, 200.0, LayoutLines([]string{"x"}, 400, 100, s)[0].X)
}

func TestLeftEdge(t *testing.T) {
	assert.Equal(t, 10.0, leftEdge(10, 50, settings.AlignLeft))
	assert.Equal(t, 50.0, leftEdge(100, 50, settings.AlignRight))
	assert.Equal(t, 75.0, leftEdge(100, 50, settings.AlignCenter))
}

func textSettings() settings.RenderSettings {
	s := settings.Default()
	s.Width, s.Height = 200, 120
	s.FontSize = 24
	s.Padding = 10
	s.Shadow = "none"
	s.BackgroundColor = "#000000"
	return s
}

func countBright(t *testing.T, s settings.RenderSettings, quote string) int {
	t.Helper()
	dst := NewSurface(s)
	fillSolid(dst, s.BackgroundColor)
	DrawText(dst, quote, s, NewFontBook())
	n := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] > 128 {
			n++
		}
	}
	return n
}

func TestDrawText_PaintsGlyphs(t *testing.T) {
	s := textSettings()
	assert.Zero(t, countBright(t, s, ""))
	assert.Positive(t, countBright(t, s, "Hello"))
}

func TestDrawText_UnderlineAddsPixels(t *testing.T) {
	s := textSettings()
	plain := countBright(t, s, "Hello")
	s.Underline = true
	assert.Greater(t, countBright(t, s, "Hello"), plain)
}

func TestDrawText_OutlineUsesShadowColor(t *testing.T) {
	s := textSettings()
	s.Shadow = "outline"
	s.ShadowColor = "#ff0000"
	s.ShadowOpacity = 100
	s.FontSize = 60

	dst := NewSurface(s)
	fillSolid(dst, s.BackgroundColor)
	DrawText(dst, "O", s, NewFontBook())

	red := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] > 200 && dst.Pix[i+1] < 60 {
			red++
		}
	}
	assert.Positive(t, red)
}

func TestDrawText_ShadowDarkensBelowText(t *testing.T) {
	s := textSettings()
	s.BackgroundColor = "#ffffff"
	s.TextColor = "#ffffff"
	s.Shadow = "hard"
	s.ShadowOpacity = 100

	dst := NewSurface(s)
	fillSolid(dst, s.BackgroundColor)
	DrawText(dst, "Shadow", s, NewFontBook())

	dark := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] < 100 {
			dark++
		}
	}
	assert.Positive(t, dark)
}

func TestFontBook_FallsBackToDefaultFamily(t *testing.T) {
	b := NewFontBook()
	face := b.Face("Comic Nonexistent", 20, true, true)
	require.NotNil(t, face)
	defer face.Close()
	assert.Positive(t, faceMeasurer{face}.Measure("abc"))
	assert.Contains(t, b.Families(), "Go Mono")
}

func TestParseFontName(t *testing.T) {
	tests := []struct {
		stem         string
		family       string
		bold, italic bool
	}{
		{"Lobster-Regular", "Lobster", false, false},
		{"Lobster-Bold", "Lobster", true, false},
		{"Lobster-Italic", "Lobster", false, true},
		{"Lobster-BoldItalic", "Lobster", true, true},
		{"Lobster", "Lobster", false, false},
	}
	for _, tt := range tests {
		family, bold, italic := parseFontName(tt.stem)
		assert.Equal(t, tt.family, family, tt.stem)
		assert.Equal(t, tt.bold, bold, tt.stem)
		assert.Equal(t, tt.italic, italic, tt.stem)
	}
}

func TestFontBook_RegisterRejectsGarbage(t *testing.T) {
	assert.Error(t, NewFontBook().Register("Bad", false, false, []byte("not a font")))
}
