package quotes

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Parse extracts quotes from one source. The format follows the file
// extension: .json, .csv, anything else is one quote per non-empty line.
func Parse(name string, data []byte) ([]string, error) {
	var (
		out []string
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		out, err = parseJSON(data)
	case ".csv":
		out, err = parseCSV(data)
	default:
		out = FromText(string(data))
	}
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return out, nil
}

// FromText splits manually entered text into trimmed non-empty lines.
func FromText(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseJSON(data []byte) ([]string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return jsonItems(t), nil
	case map[string]any:
		if list, ok := t["quotes"].([]any); ok {
			return jsonItems(list), nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []string{string(raw)}, nil
}

// jsonItems takes strings as-is, the text or quote field of objects, and
// the JSON encoding of anything else. Blank strings are dropped.
func jsonItems(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
			continue
		}
		if obj, ok := item.(map[string]any); ok {
			if s := firstString(obj, "text", "quote"); s != "" {
				out = append(out, s)
				continue
			}
		}
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		out = append(out, string(raw))
	}
	return out
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func parseCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := 0
	header := rows[0]
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "quote" || name == "text" {
			col = i
			rows = rows[1:]
			break
		}
	}

	var out []string
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if t := strings.TrimSpace(row[col]); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// LoadFiles parses every file and aggregates the quotes in order. A file
// that fails to parse is counted in Errors and skipped.
func LoadFiles(files []File) LoadResult {
	res := LoadResult{Files: len(files)}
	for _, f := range files {
		qs, err := Parse(f.Name, f.Data)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Quotes = append(res.Quotes, qs...)
	}
	return res
}

// LoadPaths reads and parses files from disk. Unreadable paths are
// reported as *ParseError like malformed content.
func LoadPaths(paths ...string) LoadResult {
	res := LoadResult{Files: len(paths)}
	for _, p := range paths {
		data, err := readFile(p)
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{Name: p, Err: err})
			continue
		}
		qs, err := Parse(p, data)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Quotes = append(res.Quotes, qs...)
	}
	return res
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, errors.New("is a directory")
	}
	return os.ReadFile(path)
}

// Joined wraps all load errors into one, or returns nil.
func (r LoadResult) Joined() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed: %w", len(r.Errors), r.Files, errors.Join(r.Errors...))
}
