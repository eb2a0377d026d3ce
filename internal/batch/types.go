package batch

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/youruser/quotecanvas/internal/naming"
	"github.com/youruser/quotecanvas/internal/settings"
)

var (
	// ErrBusy is returned when a run or retry starts while another is active.
	ErrBusy = errors.New("batch generation already in progress")
	// ErrNothingToRetry is returned by RetryFailed with an empty failed list.
	ErrNothingToRetry = errors.New("no failed images to retry")
)

type State int32

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// GeneratedImage is an encoded result. Index is the absolute quote index.
type GeneratedImage struct {
	Index      int    `json:"index"`
	Quote      string `json:"quote"`
	Filename   string `json:"filename"`
	PreviewURI string `json:"preview_uri"`
	Data       []byte `json:"-"`
	Success    bool   `json:"success"`
}

// FailedImage records an item that could not be produced.
type FailedImage struct {
	Index int    `json:"index"`
	Quote string `json:"quote"`
	Err   string `json:"error"`
}

type Stats struct {
	StartedAt  time.Time     `json:"started_at"`
	Generated  int           `json:"generated"`
	Failed     int           `json:"failed"`
	Total      int           `json:"total"`
	Throughput float64       `json:"throughput"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Summary is handed to the sink when a run ends.
type Summary struct {
	JobID      string        `json:"job_id"`
	Outcome    Outcome       `json:"outcome"`
	Generated  int           `json:"generated"`
	Failed     int           `json:"failed"`
	Total      int           `json:"total"`
	Elapsed    time.Duration `json:"elapsed"`
	Throughput float64       `json:"throughput"`
}

// ItemResult carries exactly one of Image or Failure.
type ItemResult struct {
	Index   int
	Image   *GeneratedImage
	Failure *FailedImage
}

// ProgressSink observes a run. Calls happen on the generating goroutine.
type ProgressSink interface {
	Progress(current, total int, label string)
	Item(res ItemResult)
	Done(sum Summary)
}

type nopSink struct{}

func (nopSink) Progress(int, int, string) {}
func (nopSink) Item(ItemResult)           {}
func (nopSink) Done(Summary)              {}

// BackgroundSource is the part of the background list a run needs.
type BackgroundSource interface {
	Len() int
	Get(ctx context.Context, index int) (image.Image, error)
}

// Job is everything a run reads. Settings are a snapshot; later changes in
// the session do not affect a run in progress.
type Job struct {
	Quotes      []string
	Backgrounds BackgroundSource
	Settings    settings.RenderSettings
	Naming      naming.Options
	Sink        ProgressSink
	Now         func() time.Time
}
