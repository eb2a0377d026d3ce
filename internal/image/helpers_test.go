package imagepkg

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, c)))
	return buf.Bytes()
}

// fakeLoader hands out 1×1 images whose red channel is the index.
type fakeLoader struct {
	n       int
	fail    map[int]bool
	decodes map[int]int
	during  func()
}

func newFakeLoader(n int) *fakeLoader {
	return &fakeLoader{n: n, fail: map[int]bool{}, decodes: map[int]int{}}
}

func (l *fakeLoader) Decode(_ context.Context, index int) (image.Image, error) {
	if index < 0 || index >= l.n {
		return nil, &InvalidIndexError{Index: index, Len: l.n}
	}
	if l.during != nil {
		l.during()
	}
	if l.fail[index] {
		return nil, &DecodeError{Name: "broken", Err: image.ErrFormat}
	}
	l.decodes[index]++
	return imaging.New(1, 1, color.NRGBA{R: uint8(index), A: 0xff}), nil
}

func redOf(img image.Image) uint8 {
	return color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA).R
}
