package imagepkg

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/youruser/quotecanvas/internal/settings"
)

func TestBuildFilterChain_IdentityIsEmpty(t *testing.T) {
	c := BuildFilterChain(settings.Default())
	assert.Empty(t, c)
	assert.Equal(t, "none", c.String())
}

func TestBuildFilterChain_FixedOrder(t *testing.T) {
	s := settings.Default()
	s.Filter = "vintage"
	s.Saturation = 80
	s.Blur = 3
	s.Contrast = 150
	s.Brightness = 110

	assert.Equal(t,
		"blur(3px) brightness(110%) contrast(150%) saturate(80%) sepia(50%) contrast(120%) brightness(90%)",
		BuildFilterChain(s).String())
}

func TestBuildFilterChain_Presets(t *testing.T) {
	tests := map[string]string{
		"grayscale": "grayscale(100%)",
		"sepia":     "sepia(100%)",
		"cool":      "hue-rotate(180deg) saturate(120%)",
		"warm":      "hue-rotate(30deg) saturate(110%) brightness(110%)",
		"none":      "none",
	}
	for preset, want := range tests {
		s := settings.Default()
		s.Filter = preset
		assert.Equal(t, want, BuildFilterChain(s).String(), preset)
	}
}

func TestFilterChain_Apply(t *testing.T) {
	src := imaging.New(2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 0xff})

	gray := FilterChain{{"grayscale", 100}}.Apply(src)
	px := gray.NRGBAAt(0, 0)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)

	dark := FilterChain{{"brightness", 50}}.Apply(src)
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 0xff}, dark.NRGBAAt(1, 1))

	flat := FilterChain{{"contrast", 0}}.Apply(src)
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 0xff}, flat.NRGBAAt(0, 1))

	same := FilterChain{{"hue-rotate", 0}}.Apply(src)
	assert.Equal(t, src.NRGBAAt(0, 0), same.NRGBAAt(0, 0))

	// the source is never modified
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 0xff}, src.NRGBAAt(0, 0))
}

func TestFilterChain_SaturateBeyondDouble(t *testing.T) {
	src := imaging.New(1, 1, color.NRGBA{R: 140, G: 110, B: 100, A: 0xff})
	at := func(amount float64) color.NRGBA {
		return FilterChain{{"saturate", amount}}.Apply(src).NRGBAAt(0, 0)
	}

	assert.Equal(t, color.NRGBA{R: 140, G: 110, B: 100, A: 0xff}, at(100))
	assert.Equal(t, color.NRGBA{R: 116, G: 116, B: 116, A: 0xff}, at(0))
	assert.Equal(t, color.NRGBA{R: 164, G: 104, B: 84, A: 0xff}, at(200))
	assert.Equal(t, color.NRGBA{R: 176, G: 101, B: 76, A: 0xff}, at(250))
}

func TestApplyVignette(t *testing.T) {
	dst := imaging.New(101, 101, color.White)
	ApplyVignette(dst, 100)

	center := dst.NRGBAAt(50, 50)
	corner := dst.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), center.R)
	assert.Less(t, corner.R, uint8(128))
}

func TestApplyVignette_ZeroIsNoop(t *testing.T) {
	dst := imaging.New(10, 10, color.White)
	ApplyVignette(dst, 0)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, dst.NRGBAAt(0, 0))
}

func TestApplyGradient(t *testing.T) {
	s := settings.Default()

	s.Gradient = "dark-bottom"
	dst := imaging.New(10, 100, color.White)
	ApplyGradient(dst, s)
	assert.Greater(t, dst.NRGBAAt(5, 0).R, dst.NRGBAAt(5, 99).R)
	assert.InDelta(t, 255*0.4, float64(dst.NRGBAAt(5, 99).R), 3)

	s.Gradient = "dark-top"
	dst = imaging.New(10, 100, color.White)
	ApplyGradient(dst, s)
	assert.Less(t, dst.NRGBAAt(5, 0).R, dst.NRGBAAt(5, 99).R)

	s.Gradient = "dark-center"
	dst = imaging.New(100, 100, color.White)
	ApplyGradient(dst, s)
	assert.Greater(t, dst.NRGBAAt(50, 50).R, dst.NRGBAAt(0, 0).R)

	s.Gradient = "custom"
	s.GradientColor1 = "#ff0000"
	s.GradientColor2 = "#0000ff"
	dst = imaging.New(10, 100, color.Black)
	ApplyGradient(dst, s)
	top, bottom := dst.NRGBAAt(5, 0), dst.NRGBAAt(5, 99)
	assert.Greater(t, top.R, top.B)
	assert.Greater(t, bottom.B, bottom.R)

	s.Gradient = "none"
	dst = imaging.New(4, 4, color.White)
	ApplyGradient(dst, s)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, dst.NRGBAAt(2, 2))
}

func TestApplyOverlay(t *testing.T) {
	dst := imaging.New(4, 4, color.White)
	ApplyOverlay(dst, 50)
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, dst.NRGBAAt(1, 1))
}
