// Package naming builds filesystem-safe file names for generated images.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPattern        = "quote-{index}"
	DefaultQuoteMaxLength = 30
	DefaultExtension      = "png"
)

// Options controls how Generate expands a naming pattern.
type Options struct {
	Pattern        string `json:"pattern" yaml:"pattern"`
	IndexStart     int    `json:"index_start" yaml:"index_start"`
	IndexPadding   int    `json:"index_padding" yaml:"index_padding"`
	QuoteMaxLength int    `json:"quote_max_length" yaml:"quote_max_length"`
	DateFormat     string `json:"date_format" yaml:"date_format"`
	TimeFormat     string `json:"time_format" yaml:"time_format"`
	Extension      string `json:"extension" yaml:"extension"`
}

func DefaultOptions() Options {
	return Options{
		Pattern:        DefaultPattern,
		IndexStart:     1,
		QuoteMaxLength: DefaultQuoteMaxLength,
		DateFormat:     "YYYY-MM-DD",
		TimeFormat:     "HH-MM-SS",
		Extension:      DefaultExtension,
	}
}

var (
	reserved   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespace = regexp.MustCompile(`\s+`)
	unsafe     = regexp.MustCompile(`[^\w\-.]`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Sanitize reduces s to word characters, dots and single hyphens.
// Sanitize(Sanitize(s)) == Sanitize(s) for every s.
func Sanitize(s string) string {
	s = reserved.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = unsafe.ReplaceAllString(s, "")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeQuote sanitizes a quote and cuts it to at most maxLen characters.
func SanitizeQuote(quote string, maxLen int) string {
	s := Sanitize(quote)
	if maxLen > 0 && len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}
	return s
}

// Generate expands opts.Pattern for the item at index. Only the
// {date}, {time} and {timestamp} tokens depend on now.
func Generate(index int, quote string, opts Options, now time.Time) string {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	maxLen := opts.QuoteMaxLength
	if maxLen <= 0 {
		maxLen = DefaultQuoteMaxLength
	}
	ext := strings.TrimPrefix(opts.Extension, ".")
	if ext == "" {
		ext = DefaultExtension
	}

	display := strconv.Itoa(index + opts.IndexStart)
	if opts.IndexPadding > 0 {
		display = fmt.Sprintf("%0*d", opts.IndexPadding, index+opts.IndexStart)
	}

	r := strings.NewReplacer(
		"{index}", display,
		"{quote}", SanitizeQuote(quote, maxLen),
		"{date}", FormatDate(now, opts.DateFormat),
		"{time}", FormatTime(now, opts.TimeFormat),
		"{timestamp}", strconv.FormatInt(now.Unix(), 10),
	)
	return Sanitize(r.Replace(pattern)) + "." + ext
}

func FormatDate(t time.Time, format string) string {
	switch format {
	case "MM-DD-YYYY":
		return t.Format("01-02-2006")
	case "DD-MM-YYYY":
		return t.Format("02-01-2006")
	case "YYYYMMDD":
		return t.Format("20060102")
	default:
		return t.Format("2006-01-02")
	}
}

func FormatTime(t time.Time, format string) string {
	switch format {
	case "HH-MM":
		return t.Format("15-04")
	case "HHMMSS":
		return t.Format("150405")
	case "HHMM":
		return t.Format("1504")
	default:
		return t.Format("15-04-05")
	}
}
