package quotes

import (
	"strings"
	"unicode/utf8"
)

type FilterOptions struct {
	FreeWords string `form:"q" json:"q"`
	MinLength int    `form:"min" json:"min"`
	MaxLength int    `form:"max" json:"max"`
	Dedupe    bool   `form:"dedupe" json:"dedupe"`
}

// Filter keeps quotes containing every free word (case-insensitive) and
// whose rune length lies within the bounds. Zero bounds are ignored.
func Filter(list []string, opt FilterOptions) []string {
	kw := strings.Fields(strings.ToLower(opt.FreeWords))
	seen := map[string]bool{}
	var out []string
	for _, q := range list {
		n := utf8.RuneCountInString(q)
		if opt.MinLength > 0 && n < opt.MinLength {
			continue
		}
		if opt.MaxLength > 0 && n > opt.MaxLength {
			continue
		}
		if len(kw) > 0 {
			lower := strings.ToLower(q)
			ok := true
			for _, k := range kw {
				if !strings.Contains(lower, k) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		if opt.Dedupe {
			if seen[q] {
				continue
			}
			seen[q] = true
		}
		out = append(out, q)
	}
	return out
}
