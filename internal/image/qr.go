package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/youruser/quotecanvas/internal/settings"
)

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	if _, err := png.DecodeConfig(bytes.NewReader(pngBytes)); err != nil {
		return nil, err
	}
	return pngBytes, nil
}

// GenerateQRImage returns a QR code as an image for composition.
func GenerateQRImage(text string, size int) (image.Image, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}

// DrawQRStamp places a QR code for stamp.Text (with {quote} expanded) in
// the configured corner of dst.
func DrawQRStamp(dst *image.NRGBA, quote string, stamp settings.QRStamp) error {
	text := strings.ReplaceAll(stamp.Text, "{quote}", quote)
	if text == "" {
		text = quote
	}
	qr, err := GenerateQRImage(text, stamp.Size)
	if err != nil {
		return fmt.Errorf("qr stamp: %w", err)
	}

	b := dst.Bounds()
	size := qr.Bounds().Size()
	var at image.Point
	switch stamp.Corner {
	case "top-left":
		at = image.Pt(b.Min.X+stamp.Margin, b.Min.Y+stamp.Margin)
	case "top-right":
		at = image.Pt(b.Max.X-stamp.Margin-size.X, b.Min.Y+stamp.Margin)
	case "bottom-left":
		at = image.Pt(b.Min.X+stamp.Margin, b.Max.Y-stamp.Margin-size.Y)
	default:
		at = image.Pt(b.Max.X-stamp.Margin-size.X, b.Max.Y-stamp.Margin-size.Y)
	}
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(size)}, qr, qr.Bounds().Min, draw.Over)
	return nil
}
