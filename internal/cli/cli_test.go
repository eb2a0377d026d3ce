package cli

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"QC_SETTINGS_PATH", "QC_QUOTES_PATH", "QC_FONT_DIR", "LOG_LEVEL", "LOG_OUTPUT"} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func writeFixture(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writePNG(t *testing.T, path string, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func smallSettings(t *testing.T, dir string) string {
	return writeFixture(t, filepath.Join(dir, "settings.yaml"), "width: 64\nheight: 48\nfont_size: 12\n")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerateWritesDirectory(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), "First\nSecond\nFirst\n")
	bgDir := filepath.Join(dir, "bg")
	require.NoError(t, os.Mkdir(bgDir, 0o755))
	writePNG(t, filepath.Join(bgDir, "a.png"), color.White)
	writeFixture(t, filepath.Join(bgDir, "notes.txt"), "not an image")
	out := filepath.Join(dir, "out")

	stdout, stderr, err := run(t, "generate",
		"--quotes", quotes,
		"--backgrounds", bgDir,
		"--settings", smallSettings(t, dir),
		"--out", out,
		"--pattern", "{index}-{quote}",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 generated, 0 failed")
	assert.Contains(t, stderr, "[1/3] First")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"1-First.png", "2-Second.png", "3-First.png"}, names)
}

func TestGenerateDedupeAndGrep(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), "Love wins\nHate loses\nLove wins\n")
	out := filepath.Join(dir, "out")

	stdout, _, err := run(t, "generate",
		"--quotes", quotes,
		"--settings", smallSettings(t, dir),
		"--out", out,
		"--grep", "love",
		"--dedupe",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 generated")
}

func TestGenerateZip(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.json"), `["One", "Two"]`)
	zipPath := filepath.Join(dir, "nested", "all.zip")

	_, _, err := run(t, "generate",
		"--quotes", quotes,
		"--settings", smallSettings(t, dir),
		"--zip", zipPath,
		"--level", "best",
		"--index-padding", "2",
	)
	require.NoError(t, err)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "quote-01.png", zr.File[0].Name)
	assert.Equal(t, "quote-02.png", zr.File[1].Name)
}

func TestGenerateRequiresDestination(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), "One\n")

	_, _, err := run(t, "generate", "--quotes", quotes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")
}

func TestGenerateRejectsBadLevel(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), "One\n")

	_, _, err := run(t, "generate", "--quotes", quotes, "--zip", filepath.Join(dir, "a.zip"), "--level", "ultra")
	require.Error(t, err)
}

func TestGenerateNoQuotes(t *testing.T) {
	dir := isolate(t)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), "\n\n")

	_, _, err := run(t, "generate", "--quotes", quotes, "--out", filepath.Join(dir, "out"))
	require.EqualError(t, err, "no quotes to render")
}

func TestGenerateReportsFailures(t *testing.T) {
	dir := isolate(t)
	long := strings.Repeat("word ", 800)
	quotes := writeFixture(t, filepath.Join(dir, "quotes.txt"), long+"\nShort\n")
	settingsPath := writeFixture(t, filepath.Join(dir, "settings.yaml"),
		"width: 64\nheight: 48\nqr:\n  enabled: true\n  text: \"{quote}\"\n  size: 20\n  corner: top-left\n")

	stdout, stderr, err := run(t, "generate", "--quotes", quotes, "--settings", settingsPath, "--out", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 images failed")
	assert.Contains(t, stdout, "1 generated, 1 failed")
	assert.Contains(t, stderr, "failed #1")
}

func TestPreview(t *testing.T) {
	dir := isolate(t)
	bg := writePNG(t, filepath.Join(dir, "bg.png"), color.RGBA{R: 200, A: 255})
	out := filepath.Join(dir, "p.jpg")

	stdout, _, err := run(t, "preview",
		"--quote", "Less is more",
		"--settings", smallSettings(t, dir),
		"--background", bg,
		"--format", "jpeg",
		"--out", out,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Pt(64, 48), img.Bounds().Size())
}

func TestPreviewBadBackgroundFallsBack(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "p.png")

	_, _, err := run(t, "preview",
		"--quote", "Still renders",
		"--settings", smallSettings(t, dir),
		"--background", filepath.Join(dir, "missing.png"),
		"--out", out,
	)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestPreviewRequiresQuote(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "preview")
	require.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("http://example.com/a.png"))
	assert.True(t, isURL("https://example.com/a.png"))
	assert.False(t, isURL("./http.png"))
	assert.False(t, isURL("https:"))
}
