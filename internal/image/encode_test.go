package imagepkg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youruser/quotecanvas/internal/settings"
)

func TestEncode_Formats(t *testing.T) {
	img := imaging.New(16, 8, color.NRGBA{R: 200, G: 10, B: 10, A: 0xff})
	for _, format := range []string{"png", "jpeg", "gif", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			s := settings.Default()
			s.Format = format
			data, err := Encode(img, s)
			require.NoError(t, err)

			decoded, name, err := image.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 16, decoded.Bounds().Dx())
			assert.Equal(t, 8, decoded.Bounds().Dy())
			assert.NotEmpty(t, name)
		})
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	s := settings.Default()
	s.Format = "webp"

	_, err := Encode(imaging.New(2, 2, color.White), s)

	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "webp", encErr.Format)
}

func TestPreviewURI(t *testing.T) {
	uri, err := PreviewURI(imaging.New(1080, 540, color.White))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestContentType(t *testing.T) {
	s := settings.Default()
	assert.Equal(t, "image/png", ContentType(s))
	s.Format = "jpeg"
	assert.Equal(t, "image/jpeg", ContentType(s))
	s.Format = "tiff"
	assert.Equal(t, "image/tiff", ContentType(s))
}

func TestExecute(t *testing.T) {
	r := NewRenderer(nil)
	s := smallSettings()

	t.Run("with background", func(t *testing.T) {
		res, err := r.Execute(Task{Index: 3, Quote: "hello", Settings: s, Background: pngBytes(t, 4, 4, color.White)})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Index)
		assert.True(t, res.BackgroundUsed)
		assert.NoError(t, res.BackgroundErr)
	})

	t.Run("undecodable background falls back", func(t *testing.T) {
		res, err := r.Execute(Task{Quote: "hello", Settings: s, Background: []byte("garbage")})
		require.NoError(t, err)
		assert.False(t, res.BackgroundUsed)
		assert.Error(t, res.BackgroundErr)

		img, err := imaging.Decode(bytes.NewReader(res.Data))
		require.NoError(t, err)
		assert.Equal(t, s.Width, img.Bounds().Dx())
	})
}
