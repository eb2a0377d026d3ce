package api

import (
	"sync"

	"github.com/youruser/quotecanvas/internal/batch"
	"go.uber.org/zap"
)

// Progress is the last position reported by a running batch.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
}

// tracker is the batch sink behind GET /api/generate. Each started run
// gets its own, so a new run never shows the previous summary.
type tracker struct {
	log *zap.Logger

	mu       sync.Mutex
	progress Progress
	last     *batch.Summary
}

func newTracker(log *zap.Logger) *tracker {
	return &tracker{log: log}
}

func (t *tracker) Progress(current, total int, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = Progress{Current: current, Total: total, Label: label}
}

func (t *tracker) Item(res batch.ItemResult) {
	if res.Failure != nil {
		t.log.Debug("item failed", zap.Int("index", res.Index), zap.String("error", res.Failure.Err))
	}
}

func (t *tracker) Done(sum batch.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &sum
}

func (t *tracker) snapshot() (Progress, *batch.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress, t.last
}
