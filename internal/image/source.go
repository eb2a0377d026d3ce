package imagepkg

import (
	"bytes"
	"context"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// File is a raw, undecoded background upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFile checks that data looks like an image and wraps it.
func NewFile(name string, data []byte) (File, error) {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if ct != "application/octet-stream" || !strings.HasPrefix(byExt, "image/") {
			return File{}, &UnsupportedFileTypeError{Name: name, ContentType: ct}
		}
		ct = byExt
	}
	return File{Name: name, ContentType: ct, Data: data}, nil
}

// Decode turns the raw bytes into an image, honouring EXIF orientation.
func (f File) Decode() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Name: f.Name, Err: err}
	}
	return img, nil
}

// Backgrounds is the ordered set of background files. It is the source of
// truth for count and order; decoded images only ever live in its cache.
type Backgrounds struct {
	mu    sync.RWMutex
	files []File
	cache *Cache
}

func NewBackgrounds(cacheSize int) *Backgrounds {
	b := &Backgrounds{}
	b.cache = NewCache(cacheSize, b)
	return b
}

// Replace swaps the whole set and empties the cache.
func (b *Backgrounds) Replace(files []File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append([]File(nil), files...)
	b.cache.Clear()
}

// Append adds files after the existing ones. Cached indices stay valid.
func (b *Backgrounds) Append(files ...File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, files...)
}

// RemoveAt drops the file at index and shifts the cache keys above it.
func (b *Backgrounds) RemoveAt(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.files) {
		return &InvalidIndexError{Index: index, Len: len(b.files)}
	}
	b.files = append(b.files[:index], b.files[index+1:]...)
	b.cache.RemoveAt(index)
	return nil
}

func (b *Backgrounds) Clear() {
	b.Replace(nil)
}

func (b *Backgrounds) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.files)
}

func (b *Backgrounds) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, len(b.files))
	for i, f := range b.files {
		names[i] = f.Name
	}
	return names
}

// File returns a copy of the raw file at index.
func (b *Backgrounds) File(index int) (File, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.files) {
		return File{}, &InvalidIndexError{Index: index, Len: len(b.files)}
	}
	return b.files[index], nil
}

// Decode loads the file at index without touching the cache.
func (b *Backgrounds) Decode(_ context.Context, index int) (image.Image, error) {
	f, err := b.File(index)
	if err != nil {
		return nil, err
	}
	return f.Decode()
}

// Get returns the decoded background at index through the LRU cache.
func (b *Backgrounds) Get(ctx context.Context, index int) (image.Image, error) {
	return b.cache.Get(ctx, index)
}

func (b *Backgrounds) Cache() *Cache { return b.cache }
