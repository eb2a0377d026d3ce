// Package archive bundles generated images into a single zip download.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// Level selects the deflate compression level.
type Level int

const (
	LevelFast     Level = 1
	LevelBalanced Level = 6
	LevelBest     Level = 9
)

// ParseLevel accepts fast, balanced or best; empty means balanced.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "balanced":
		return LevelBalanced, nil
	case "fast":
		return LevelFast, nil
	case "best":
		return LevelBest, nil
	}
	return 0, fmt.Errorf("unknown compression level %q", s)
}

func (l Level) String() string {
	switch l {
	case LevelFast:
		return "fast"
	case LevelBest:
		return "best"
	default:
		return "balanced"
	}
}

// Entry is one file inside the archive.
type Entry struct {
	Name     string
	Data     []byte
	Modified time.Time
}

// Name returns the download name for an archive holding n images.
func Name(n int) string {
	return fmt.Sprintf("quote-images-%d.zip", n)
}

// Write streams entries into a zip archive on w. Repeated names get -2,
// -3... inserted before the extension.
func Write(w io.Writer, entries []Entry, level Level) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, int(level))
	})

	names := NewNamer()
	for _, e := range entries {
		hdr := &zip.FileHeader{
			Name:     names.Unique(e.Name),
			Method:   zip.Deflate,
			Modified: e.Modified,
		}
		if hdr.Modified.IsZero() {
			hdr.Modified = time.Now()
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("adding %s: %w", hdr.Name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return fmt.Errorf("writing %s: %w", hdr.Name, err)
		}
	}
	return zw.Close()
}

// Namer hands out unique file names.
type Namer struct {
	used map[string]int
}

func NewNamer() *Namer {
	return &Namer{used: map[string]int{}}
}

func (n *Namer) Unique(name string) string {
	key := strings.ToLower(name)
	count := n.used[key]
	n.used[key] = count + 1
	if count == 0 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := count + 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if n.used[strings.ToLower(candidate)] == 0 {
			n.used[strings.ToLower(candidate)] = 1
			return candidate
		}
	}
}
