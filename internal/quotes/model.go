package quotes

import "fmt"

// File is an uploaded or on-disk text source.
type File struct {
	Name string
	Data []byte
}

// ParseError reports a text source that could not be read. Loading
// continues past it; callers count these.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadResult is the outcome of loading several sources at once.
type LoadResult struct {
	Quotes []string `json:"quotes"`
	Files  int      `json:"files"`
	Errors []error  `json:"-"`
}

// Status mirrors the message shown after an upload, e.g.
// "12 quotes loaded from 3 files (1 errors)".
func (r LoadResult) Status() string {
	source := fmt.Sprintf("%d files", r.Files)
	if r.Files == 1 {
		source = "1 file"
	}
	if len(r.Errors) > 0 {
		return fmt.Sprintf("%d quotes loaded from %s (%d errors)", len(r.Quotes), source, len(r.Errors))
	}
	return fmt.Sprintf("%d quotes loaded from %s", len(r.Quotes), source)
}
