package imagepkg

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile_RejectsNonImages(t *testing.T) {
	_, err := NewFile("notes.txt", []byte("just some text"))

	var unsupported *UnsupportedFileTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "notes.txt", unsupported.Name)
}

func TestNewFile_AcceptsPNG(t *testing.T) {
	f, err := NewFile("bg.png", pngBytes(t, 4, 4, color.White))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
}

func TestFile_DecodeError(t *testing.T) {
	_, err := File{Name: "broken.png", Data: []byte("\x89PNG\r\n\x1a\nnope")}.Decode()

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "broken.png", decErr.Name)
}

func newBackgrounds(t *testing.T, n int) *Backgrounds {
	t.Helper()
	b := NewBackgrounds(3)
	var files []File
	for i := 0; i < n; i++ {
		f, err := NewFile("bg.png", pngBytes(t, 2, 2, color.NRGBA{R: uint8(i * 10), A: 0xff}))
		require.NoError(t, err)
		files = append(files, f)
	}
	b.Replace(files)
	return b
}

func TestBackgrounds_GetGoesThroughCache(t *testing.T) {
	ctx := context.Background()
	b := newBackgrounds(t, 5)

	img, err := b.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(40), redOf(img))
	assert.Equal(t, []int{4}, b.Cache().Keys())

	_, err = b.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestBackgrounds_RemoveAtShiftsFilesAndCache(t *testing.T) {
	ctx := context.Background()
	b := newBackgrounds(t, 4)
	for _, i := range []int{1, 3} {
		_, err := b.Get(ctx, i)
		require.NoError(t, err)
	}

	require.NoError(t, b.RemoveAt(1))

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{2}, b.Cache().Keys())
	img, err := b.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), redOf(img))

	assert.ErrorIs(t, b.RemoveAt(3), ErrInvalidIndex)
}

func TestBackgrounds_ReplaceAndClearEmptyCache(t *testing.T) {
	ctx := context.Background()
	b := newBackgrounds(t, 2)
	_, err := b.Get(ctx, 0)
	require.NoError(t, err)

	b.Replace(nil)
	assert.Zero(t, b.Cache().Len())
	assert.Zero(t, b.Len())

	b = newBackgrounds(t, 2)
	_, err = b.Get(ctx, 1)
	require.NoError(t, err)
	b.Clear()
	assert.Zero(t, b.Cache().Len())
}

func TestBackgrounds_AppendKeepsCache(t *testing.T) {
	ctx := context.Background()
	b := newBackgrounds(t, 2)
	_, err := b.Get(ctx, 0)
	require.NoError(t, err)

	f, err := NewFile("more.png", pngBytes(t, 2, 2, color.Black))
	require.NoError(t, err)
	b.Append(f)

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{0}, b.Cache().Keys())
	assert.Equal(t, "more.png", b.Names()[2])
}
