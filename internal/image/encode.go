package imagepkg

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/disintegration/imaging"
	"github.com/youruser/quotecanvas/internal/settings"
)

const previewSize = 320

// Encode serializes img in the export format and quality from s.
func Encode(img image.Image, s settings.RenderSettings) ([]byte, error) {
	ext := s.Extension()
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, &EncodeError{Format: ext, Err: err}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(s.Quality)); err != nil {
		return nil, &EncodeError{Format: ext, Err: err}
	}
	return buf.Bytes(), nil
}

// PreviewURI returns a small JPEG thumbnail as a data URI.
func PreviewURI(img image.Image) (string, error) {
	thumb := imaging.Fit(img, previewSize, previewSize, imaging.Linear)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(70)); err != nil {
		return "", &EncodeError{Format: "jpeg", Err: err}
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ContentType returns the MIME type for the export format in s.
func ContentType(s settings.RenderSettings) string {
	switch s.Extension() {
	case "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}
