package imagepkg

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/youruser/quotecanvas/internal/settings"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the advance width of a string in pixels.
type Measurer interface {
	Measure(s string) float64
}

type faceMeasurer struct{ face font.Face }

func (m faceMeasurer) Measure(s string) float64 {
	return fromFixed(font.MeasureString(m.face, s))
}

// Wrap fills lines greedily: a word moves to a new line only when adding it
// (plus a trailing space) would exceed maxWidth and the current line already
// holds a word. A single over-long word gets a line of its own.
func Wrap(text string, maxWidth float64, m Measurer) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := line + word + " "
		if line != "" && m.Measure(candidate) > maxWidth {
			lines = append(lines, strings.TrimSpace(line))
			line = word + " "
			continue
		}
		line = candidate
	}
	if last := strings.TrimSpace(line); last != "" {
		lines = append(lines, last)
	}
	return lines
}

// Line is a wrapped line anchored at X (per alignment) with Y at its
// vertical middle.
type Line struct {
	Text string
	X, Y float64
}

// LayoutLines centres the block of lines vertically and anchors each one
// horizontally according to the alignment.
func LayoutLines(lines []string, width, height int, s settings.RenderSettings) []Line {
	lineHeight := s.FontSize * float64(s.LineHeight) / 100
	total := float64(len(lines)) * lineHeight
	startY := (float64(height)-total)/2 + lineHeight/2

	var x float64
	switch s.TextAlign {
	case settings.AlignLeft:
		x = float64(s.Padding)
	case settings.AlignRight:
		x = float64(width - s.Padding)
	default:
		x = float64(width) / 2
	}

	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Text: l, X: x, Y: startY + float64(i)*lineHeight}
	}
	return out
}

// leftEdge converts an alignment anchor into the left edge of a run of
// the given width.
func leftEdge(anchor, width float64, align string) float64 {
	switch align {
	case settings.AlignLeft:
		return anchor
	case settings.AlignRight:
		return anchor - width
	default:
		return anchor - width/2
	}
}

type shadowPreset struct {
	alpha    float64
	dx, dy   int
	blur     float64
	ownColor bool
}

var shadowPresets = map[string]shadowPreset{
	"subtle": {alpha: 0.6, dx: 1, dy: 1, blur: 1},
	"soft":   {alpha: 1, dx: 2, dy: 2, blur: 4},
	"hard":   {alpha: 1, dx: 3, dy: 3, blur: 0},
	"long":   {alpha: 0.8, dx: 6, dy: 6, blur: 2},
	"glow":   {alpha: 1, dx: 0, dy: 0, blur: 8, ownColor: true},
}

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// DrawText wraps quote and draws it onto dst. Decorations for each line go
// down in order: outline stroke, underline, glyph fill. The drop shadow is
// derived from the finished text layer and composited beneath it.
func DrawText(dst *image.NRGBA, quote string, s settings.RenderSettings, fonts *FontBook) {
	face := fonts.Face(s.FontFamily, s.FontSize, s.Bold(), s.Italic)
	if face == nil {
		return
	}
	defer face.Close()

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	m := faceMeasurer{face}
	lines := LayoutLines(Wrap(quote, float64(w-2*s.Padding), m), w, h, s)
	if len(lines) == 0 {
		return
	}

	textColor := colorOr(s.TextColor, white)
	shadowColor := colorOr(s.ShadowColor, black)
	metrics := face.Metrics()
	ascent, descent := fromFixed(metrics.Ascent), fromFixed(metrics.Descent)

	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, ln := range lines {
		width := m.Measure(ln.Text)
		x := leftEdge(ln.X, width, s.TextAlign)
		baseline := ln.Y + (ascent-descent)/2

		if s.Shadow == "outline" {
			lineWidth := math.Max(1, s.FontSize*0.03)
			stroke := withAlpha(shadowColor, float64(s.ShadowOpacity)/100)
			strokeText(layer, face, ln.Text, x, baseline, lineWidth/2, stroke)
		}
		if s.Underline {
			thickness := math.Max(1, s.FontSize*0.05)
			y := baseline + s.FontSize*0.1
			fillRect(layer, x, y-thickness/2, x+width, y+thickness/2, textColor)
		}
		fillText(layer, face, ln.Text, x, baseline, textColor)
	}

	if p, ok := shadowPresets[s.Shadow]; ok {
		c := withAlpha(shadowColor, float64(s.ShadowOpacity)/100*p.alpha)
		if p.ownColor {
			c = textColor
		}
		drawShadow(dst, layer, c, p)
	}
	draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
}

func fillText(dst draw.Image, face font.Face, text string, x, y float64, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(text)
}

// strokeText approximates an outline stroke by stamping the glyphs at every
// integer offset inside a disc of the given radius.
func strokeText(dst draw.Image, face font.Face, text string, x, y, radius float64, c color.Color) {
	r := int(math.Max(1, math.Round(radius)))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 || dx*dx+dy*dy > r*r+r {
				continue
			}
			fillText(dst, face, text, x+float64(dx), y+float64(dy), c)
		}
	}
}

func fillRect(dst draw.Image, x0, y0, x1, y1 float64, c color.Color) {
	r := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
	if r.Dy() == 0 {
		r.Max.Y = r.Min.Y + 1
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func drawShadow(dst *image.NRGBA, layer *image.RGBA, c color.NRGBA, p shadowPreset) {
	if c.A == 0 {
		return
	}
	sh := image.NewNRGBA(layer.Bounds())
	for i := 0; i < len(layer.Pix); i += 4 {
		a := layer.Pix[i+3]
		if a == 0 {
			continue
		}
		sh.Pix[i+0] = c.R
		sh.Pix[i+1] = c.G
		sh.Pix[i+2] = c.B
		sh.Pix[i+3] = uint8(uint32(a) * uint32(c.A) / 255)
	}
	var src image.Image = sh
	if p.blur > 0 {
		src = imaging.Blur(sh, p.blur/2)
	}
	draw.Draw(dst, dst.Bounds().Add(image.Pt(p.dx, p.dy)), src, image.Point{}, draw.Over)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
