package imagepkg

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor reads a #rgb or #rrggbb color.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func colorOr(hex string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = clamp8(alpha * 255)
	return c
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// blendOver composites (r,g,b) with alpha a (0..1) over one NRGBA pixel.
func blendOver(p []uint8, r, g, b, a float64) {
	if a <= 0 {
		return
	}
	da := float64(p[3]) / 255
	oa := a + da*(1-a)
	if oa <= 0 {
		return
	}
	p[0] = clamp8((r*a + float64(p[0])*da*(1-a)) / oa)
	p[1] = clamp8((g*a + float64(p[1])*da*(1-a)) / oa)
	p[2] = clamp8((b*a + float64(p[2])*da*(1-a)) / oa)
	p[3] = clamp8(oa * 255)
}
