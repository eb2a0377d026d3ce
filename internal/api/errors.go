package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/youruser/quotecanvas/internal/batch"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/quotes"
	"github.com/youruser/quotecanvas/internal/session"
)

// badRequest marks client input errors that carry no type of their own,
// such as settings validation failures.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusOf(err error) int {
	var (
		parseErr       *quotes.ParseError
		unsupportedErr *imagepkg.UnsupportedFileTypeError
		decodeErr      *imagepkg.DecodeError
		br             badRequest
	)
	switch {
	case errors.Is(err, imagepkg.ErrInvalidIndex):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoQuotes),
		errors.Is(err, batch.ErrBusy),
		errors.Is(err, batch.ErrNothingToRetry):
		return http.StatusConflict
	case errors.As(err, &parseErr),
		errors.As(err, &unsupportedErr),
		errors.As(err, &decodeErr),
		errors.As(err, &br):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes {"error": ...} with the status matching err and records it
// for the request logger.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
