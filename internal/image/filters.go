package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/youruser/quotecanvas/internal/settings"
)

// Op is one primitive background filter. Amount is in px for blur, degrees
// for hue-rotate and percent for everything else.
type Op struct {
	Kind   string
	Amount float64
}

func (o Op) String() string {
	switch o.Kind {
	case "blur":
		return fmt.Sprintf("blur(%gpx)", o.Amount)
	case "hue-rotate":
		return fmt.Sprintf("hue-rotate(%gdeg)", o.Amount)
	default:
		return fmt.Sprintf("%s(%g%%)", o.Kind, o.Amount)
	}
}

// FilterChain is applied left to right.
type FilterChain []Op

var presetFilters = map[string]FilterChain{
	"grayscale": {{"grayscale", 100}},
	"sepia":     {{"sepia", 100}},
	"vintage":   {{"sepia", 50}, {"contrast", 120}, {"brightness", 90}},
	"cool":      {{"hue-rotate", 180}, {"saturate", 120}},
	"warm":      {{"hue-rotate", 30}, {"saturate", 110}, {"brightness", 110}},
}

// BuildFilterChain orders the primitives blur, brightness, contrast,
// saturation and then the preset. Identity values are left out.
func BuildFilterChain(s settings.RenderSettings) FilterChain {
	var c FilterChain
	if s.Blur > 0 {
		c = append(c, Op{"blur", float64(s.Blur)})
	}
	if s.Brightness != 100 {
		c = append(c, Op{"brightness", float64(s.Brightness)})
	}
	if s.Contrast != 100 {
		c = append(c, Op{"contrast", float64(s.Contrast)})
	}
	if s.Saturation != 100 {
		c = append(c, Op{"saturate", float64(s.Saturation)})
	}
	c = append(c, presetFilters[s.Filter]...)
	return c
}

func (c FilterChain) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, len(c))
	for i, op := range c {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

func (c FilterChain) Apply(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for _, op := range c {
		out = op.apply(out)
	}
	return out
}

func (o Op) apply(img *image.NRGBA) *image.NRGBA {
	a := o.Amount / 100
	switch o.Kind {
	case "blur":
		return imaging.Blur(img, o.Amount)
	case "brightness":
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: clamp8(float64(c.R) * a), G: clamp8(float64(c.G) * a), B: clamp8(float64(c.B) * a), A: c.A}
		})
	case "contrast":
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			f := func(v uint8) uint8 { return clamp8(((float64(v)/255-0.5)*a + 0.5) * 255) }
			return color.NRGBA{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
		})
	case "saturate":
		return imaging.AdjustFunc(img, matrixFunc(saturateMatrix(math.Max(0, a))))
	case "grayscale":
		return imaging.Grayscale(img)
	case "sepia":
		return imaging.AdjustFunc(img, matrixFunc(sepiaMatrix(clamp01(a))))
	case "hue-rotate":
		return imaging.AdjustFunc(img, matrixFunc(hueRotateMatrix(o.Amount)))
	}
	return img
}

type matrix3 [3][3]float64

func matrixFunc(m matrix3) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		return color.NRGBA{
			R: clamp8(m[0][0]*r + m[0][1]*g + m[0][2]*b),
			G: clamp8(m[1][0]*r + m[1][1]*g + m[1][2]*b),
			B: clamp8(m[2][0]*r + m[2][1]*g + m[2][2]*b),
			A: c.A,
		}
	}
}

func sepiaMatrix(a float64) matrix3 {
	k := 1 - a
	return matrix3{
		{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k},
		{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k},
		{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k},
	}
}

// saturateMatrix has no upper bound on a; 0 is fully desaturated.
func saturateMatrix(a float64) matrix3 {
	return matrix3{
		{0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a},
		{0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a},
		{0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a},
	}
}

func hueRotateMatrix(deg float64) matrix3 {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return matrix3{
		{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928},
		{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283},
		{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072},
	}
}

// paint composites the color returned by fn over every pixel of dst.
func paint(dst *image.NRGBA, fn func(x, y int) (color.NRGBA, float64)) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, a := fn(x-b.Min.X, y-b.Min.Y)
			if a <= 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			blendOver(dst.Pix[i:i+4], float64(c.R), float64(c.G), float64(c.B), a)
		}
	}
}

var black = color.NRGBA{A: 0xff}

// radial returns the distance of pixel (x, y) from the centre of a w×h
// surface divided by radius, capped at 1.
func radial(x, y, w, h int, radius float64) float64 {
	dx := float64(x) + 0.5 - float64(w)/2
	dy := float64(y) + 0.5 - float64(h)/2
	return math.Min(math.Hypot(dx, dy)/radius, 1)
}

// ApplyVignette darkens towards the edges: transparent at the centre,
// strength% black at 0.7×max(w,h) and beyond.
func ApplyVignette(dst *image.NRGBA, strength int) {
	if strength <= 0 {
		return
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	radius := 0.7 * float64(max(w, h))
	s := float64(strength) / 100
	paint(dst, func(x, y int) (color.NRGBA, float64) {
		return black, s * radial(x, y, w, h, radius)
	})
}

// ApplyGradient draws one of the fixed gradient overlay recipes.
func ApplyGradient(dst *image.NRGBA, s settings.RenderSettings) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	t := func(y int) float64 { return (float64(y) + 0.5) / float64(h) }

	switch s.Gradient {
	case "dark-bottom":
		paint(dst, func(_, y int) (color.NRGBA, float64) { return black, 0.6 * t(y) })
	case "dark-top":
		paint(dst, func(_, y int) (color.NRGBA, float64) { return black, 0.6 * (1 - t(y)) })
	case "dark-center":
		radius := float64(max(w, h)) / 2
		paint(dst, func(x, y int) (color.NRGBA, float64) { return black, 0.5 * radial(x, y, w, h, radius) })
	case "custom":
		c1, err1 := colorful.Hex(s.GradientColor1)
		c2, err2 := colorful.Hex(s.GradientColor2)
		if err1 != nil || err2 != nil {
			return
		}
		rows := make([]color.NRGBA, h)
		for y := range rows {
			r, g, b := c1.BlendRgb(c2, t(y)).Clamped().RGB255()
			rows[y] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
		}
		paint(dst, func(_, y int) (color.NRGBA, float64) { return rows[y], 0.7 })
	}
}

// ApplyOverlay lays flat black at opacity% over the whole surface.
func ApplyOverlay(dst *image.NRGBA, opacity int) {
	if opacity <= 0 {
		return
	}
	a := float64(opacity) / 100
	paint(dst, func(_, _ int) (color.NRGBA, float64) { return black, a })
}
