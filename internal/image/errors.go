package imagepkg

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is matched by every *InvalidIndexError.
var ErrInvalidIndex = errors.New("invalid background index")

type InvalidIndexError struct {
	Index int
	Len   int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid background index %d (have %d)", e.Index, e.Len)
}

func (e *InvalidIndexError) Is(target error) bool { return target == ErrInvalidIndex }

// DecodeError means a background file could not be turned into an image.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError means a rendered surface could not be serialized.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// UnsupportedFileTypeError rejects a non-image background upload.
type UnsupportedFileTypeError struct {
	Name        string
	ContentType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("%s: not an image file (%s)", e.Name, e.ContentType)
}
