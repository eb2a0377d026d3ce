package naming

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)

func TestGenerate_DefaultPatternPadded(t *testing.T) {
	opts := DefaultOptions()
	opts.IndexPadding = 3

	assert.Equal(t, "quote-001.png", Generate(0, "anything", opts, fixedNow))
	assert.Equal(t, "quote-042.png", Generate(41, "anything", opts, fixedNow))
}

func TestGenerate_ZeroOptionsFallBackToDefaults(t *testing.T) {
	got := Generate(4, "x", Options{}, fixedNow)
	assert.Equal(t, "quote-4.png", got)
}

func TestGenerate_Tokens(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		date    string
		time    string
		want    string
	}{
		{"quote token", "{index}_{quote}", "", "", "1_Stay-hungry.png"},
		{"default date", "{date}", "", "", "2024-03-05.png"},
		{"us date", "{date}", "MM-DD-YYYY", "", "03-05-2024.png"},
		{"eu date", "{date}", "DD-MM-YYYY", "", "05-03-2024.png"},
		{"compact date", "{date}", "YYYYMMDD", "", "20240305.png"},
		{"default time", "{time}", "", "", "07-08-09.png"},
		{"short time", "{time}", "", "HH-MM", "07-08.png"},
		{"compact time", "{time}", "", "HHMMSS", "070809.png"},
		{"compact short time", "{time}", "", "HHMM", "0708.png"},
		{"timestamp", "img-{timestamp}", "", "", "img-1709622489.png"},
		{"repeated token", "{index}-{index}", "", "", "1-1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Pattern = tt.pattern
			opts.DateFormat = tt.date
			opts.TimeFormat = tt.time
			assert.Equal(t, tt.want, Generate(0, "Stay hungry!", opts, fixedNow))
		})
	}
}

func TestGenerate_ResanitizesPattern(t *testing.T) {
	opts := DefaultOptions()
	opts.Pattern = "  my: <quote> {index}  "
	assert.Equal(t, "my-quote-1.png", Generate(0, "", opts, fixedNow))
}

func TestGenerate_Extension(t *testing.T) {
	opts := DefaultOptions()
	opts.Extension = ".jpg"
	assert.Equal(t, "quote-1.jpg", Generate(0, "q", opts, fixedNow))
}

func TestSanitizeQuote_Truncates(t *testing.T) {
	got := SanitizeQuote("Life is what happens: when you're busy!", 20)

	assert.LessOrEqual(t, len(got), 20)
	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, "'")
	assert.False(t, strings.HasPrefix(got, "-"))
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.Equal(t, "Life-is-what-happens", got)
}

func TestSanitizeQuote_TrimsHyphenLeftByCut(t *testing.T) {
	assert.Equal(t, "ab", SanitizeQuote("ab cd", 3))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello-world"},
		{"  padded  ", "padded"},
		{"a - b", "a-b"},
		{`bad<>:"/\|?*chars`, "badchars"},
		{"tab\there", "tabhere"},
		{"émoji 🎉 ok", "moji-ok"},
		{"dots.and_underscores", "dots.and_underscores"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Life is what happens: when you're busy!",
		"  -- leading and trailing --  ",
		"multi   space\n\nnewlines",
		"x/y\\z",
		"ünïcödé ∑ text",
		"a-- -b",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}
