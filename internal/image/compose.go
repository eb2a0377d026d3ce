package imagepkg

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/youruser/quotecanvas/internal/settings"
)

// Renderer composes a quote graphic: background and effects, then text,
// then the optional QR stamp.
type Renderer struct {
	fonts *FontBook
}

func NewRenderer(fonts *FontBook) *Renderer {
	if fonts == nil {
		fonts = NewFontBook()
	}
	return &Renderer{fonts: fonts}
}

func (r *Renderer) Fonts() *FontBook { return r.fonts }

// NewSurface allocates a transparent surface at the export size.
func NewSurface(s settings.RenderSettings) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
}

// Render clears dst and draws quote over bg (which may be nil). Identical
// inputs always produce identical pixels.
func (r *Renderer) Render(dst *image.NRGBA, quote string, bg image.Image, s settings.RenderSettings) error {
	return r.render(dst, quote, bg, s, true)
}

// RenderUnfiltered is Render without the background filter chain, vignette
// and gradient. The readability overlay is still applied.
func (r *Renderer) RenderUnfiltered(dst *image.NRGBA, quote string, bg image.Image, s settings.RenderSettings) error {
	return r.render(dst, quote, bg, s, false)
}

func (r *Renderer) render(dst *image.NRGBA, quote string, bg image.Image, s settings.RenderSettings, effects bool) error {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawBackground(dst, bg, s, effects)
	DrawText(dst, quote, s, r.fonts)
	if s.QR.Enabled {
		return DrawQRStamp(dst, quote, s.QR)
	}
	return nil
}

// RenderImage renders onto a fresh surface sized from s.
func (r *Renderer) RenderImage(quote string, bg image.Image, s settings.RenderSettings) (*image.NRGBA, error) {
	dst := NewSurface(s)
	if err := r.Render(dst, quote, bg, s); err != nil {
		return nil, err
	}
	return dst, nil
}

// RenderUnfilteredImage is RenderImage through RenderUnfiltered.
func (r *Renderer) RenderUnfilteredImage(quote string, bg image.Image, s settings.RenderSettings) (*image.NRGBA, error) {
	dst := NewSurface(s)
	if err := r.RenderUnfiltered(dst, quote, bg, s); err != nil {
		return nil, err
	}
	return dst, nil
}

// DrawBackground paints bg with the filter chain and overlay effects, or the
// solid background color when bg is nil. A background that cannot be drawn
// falls back to the solid color instead of failing the render.
func DrawBackground(dst *image.NRGBA, bg image.Image, s settings.RenderSettings) {
	drawBackground(dst, bg, s, true)
}

func drawBackground(dst *image.NRGBA, bg image.Image, s settings.RenderSettings, effects bool) {
	if bg == nil || bg.Bounds().Empty() || !drawImageBackground(dst, bg, s, effects) {
		fillSolid(dst, s.BackgroundColor)
	}
}

func drawImageBackground(dst *image.NRGBA, bg image.Image, s settings.RenderSettings, effects bool) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	var scaled *image.NRGBA
	if s.BackgroundFit == settings.FitCover {
		scaled = imaging.Fill(bg, w, h, imaging.Center, imaging.Lanczos)
	} else {
		scaled = imaging.Resize(bg, w, h, imaging.Lanczos)
	}
	if effects {
		scaled = BuildFilterChain(s).Apply(scaled)
	}
	draw.Draw(dst, dst.Bounds(), scaled, image.Point{}, draw.Over)

	if effects {
		ApplyVignette(dst, s.Vignette)
		ApplyGradient(dst, s)
	}
	ApplyOverlay(dst, s.OverlayOpacity)
	return true
}

// Thumbnail decodes f and fits it within size x size, keeping the aspect
// ratio. Images smaller than the box are not enlarged.
func Thumbnail(f File, size int) (*image.NRGBA, error) {
	img, err := f.Decode()
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, size, size, imaging.Lanczos), nil
}

func fillSolid(dst *image.NRGBA, hex string) {
	c := colorOr(hex, black)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
