// Package batch renders a whole quote list, one item at a time, with
// cooperative pause, resume, cancel and retry of failed items.
package batch

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/naming"
	"go.uber.org/zap"
)

const (
	labelLength = 50
	yieldEvery  = 3
)

type item struct {
	index int
	quote string
}

// Generator owns job-scoped state: stats, the pause gate, the cancel flag
// and the result lists. One run at a time.
type Generator struct {
	renderer *imagepkg.Renderer
	log      *zap.Logger

	cancelled atomic.Bool

	mu        sync.Mutex
	state     State
	resume    chan struct{} // non-nil while paused
	jobID     string
	generated []GeneratedImage
	failed    []FailedImage
	stats     Stats
}

func NewGenerator(renderer *imagepkg.Renderer, log *zap.Logger) *Generator {
	if renderer == nil {
		renderer = imagepkg.NewRenderer(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{renderer: renderer, log: log.Named("batch")}
}

// Run processes every quote in job, replacing previous results. It blocks
// until the list is done or the run is cancelled, then returns to Idle.
func (g *Generator) Run(ctx context.Context, job Job) (Summary, error) {
	items, err := g.begin(job, false)
	if err != nil {
		return Summary{}, err
	}
	return g.process(ctx, job, items, "run"), nil
}

// RetryFailed re-runs only the failed items, keeping their original indices
// for background selection and filenames. New results are appended.
func (g *Generator) RetryFailed(ctx context.Context, job Job) (Summary, error) {
	items, err := g.begin(job, true)
	if err != nil {
		return Summary{}, err
	}
	return g.process(ctx, job, items, "retry"), nil
}

// Start is Run on its own goroutine. The generator is Running when Start
// returns, so a concurrent Start or StartRetry gets ErrBusy. It returns the
// number of items queued.
func (g *Generator) Start(ctx context.Context, job Job) (int, error) {
	items, err := g.begin(job, false)
	if err != nil {
		return 0, err
	}
	go g.process(ctx, job, items, "run")
	return len(items), nil
}

// StartRetry is RetryFailed on its own goroutine.
func (g *Generator) StartRetry(ctx context.Context, job Job) (int, error) {
	items, err := g.begin(job, true)
	if err != nil {
		return 0, err
	}
	go g.process(ctx, job, items, "retry")
	return len(items), nil
}

// begin moves an idle generator to Running and returns the items to render.
func (g *Generator) begin(job Job, retry bool) ([]item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return nil, ErrBusy
	}

	var items []item
	if retry {
		if len(g.failed) == 0 {
			return nil, ErrNothingToRetry
		}
		items = make([]item, len(g.failed))
		for i, f := range g.failed {
			items[i] = item{index: f.Index, quote: f.Quote}
		}
	} else {
		items = make([]item, len(job.Quotes))
		for i, q := range job.Quotes {
			items[i] = item{index: i, quote: q}
		}
		g.generated = nil
	}

	g.state = StateRunning
	g.resume = nil
	g.cancelled.Store(false)
	g.jobID = uuid.NewString()
	g.failed = nil
	g.stats = Stats{StartedAt: time.Now(), Total: len(items)}
	return items, nil
}

func (g *Generator) process(ctx context.Context, job Job, items []item, kind string) Summary {
	sink := job.Sink
	if sink == nil {
		sink = nopSink{}
	}
	now := job.Now
	if now == nil {
		now = time.Now
	}
	opts := job.Naming
	opts.Extension = job.Settings.Extension()

	log := g.log.With(zap.String("job_id", g.JobID()), zap.String("kind", kind))
	log.Info("batch started", zap.Int("total", len(items)))

	outcome := OutcomeCompleted
	for n, it := range items {
		if !g.wait(ctx) {
			outcome = OutcomeCancelled
			break
		}
		sink.Progress(n+1, len(items), label(it.quote))

		start := time.Now()
		img, err := g.renderItem(ctx, job, opts, it, now(), log)
		renderSeconds.Observe(time.Since(start).Seconds())

		res := ItemResult{Index: it.index}
		g.mu.Lock()
		if err != nil {
			f := FailedImage{Index: it.index, Quote: it.quote, Err: err.Error()}
			g.failed = append(g.failed, f)
			g.stats.Failed++
			res.Failure = &f
		} else {
			g.generated = append(g.generated, img)
			g.stats.Generated++
			res.Image = &img
		}
		g.mu.Unlock()

		if err != nil {
			imagesFailedTotal.Inc()
			log.Warn("item failed", zap.Int("index", it.index), zap.Error(err))
		} else {
			imagesGeneratedTotal.Inc()
		}
		sink.Item(res)

		if (n+1)%yieldEvery == 0 {
			runtime.Gosched()
		}
	}

	g.mu.Lock()
	g.stats.Elapsed = time.Since(g.stats.StartedAt)
	g.stats.Throughput = throughput(g.stats.Generated, g.stats.Elapsed)
	sum := Summary{
		JobID:      g.jobID,
		Outcome:    outcome,
		Generated:  g.stats.Generated,
		Failed:     g.stats.Failed,
		Total:      g.stats.Total,
		Elapsed:    g.stats.Elapsed,
		Throughput: g.stats.Throughput,
	}
	g.state = StateIdle
	g.resume = nil
	g.mu.Unlock()

	batchRunsTotal.WithLabelValues(kind, string(outcome)).Inc()
	log.Info("batch finished",
		zap.String("outcome", string(outcome)),
		zap.Int("generated", sum.Generated),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", sum.Elapsed),
	)
	sink.Done(sum)
	return sum
}

// renderItem produces one image on a fresh surface. A background that
// cannot be fetched is logged and the item is drawn on the solid color.
func (g *Generator) renderItem(ctx context.Context, job Job, opts naming.Options, it item, now time.Time, log *zap.Logger) (img GeneratedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	s := job.Settings
	dst := imagepkg.NewSurface(s)

	var bg image.Image
	if job.Backgrounds != nil {
		if count := job.Backgrounds.Len(); count > 0 {
			bgIndex := it.index % count
			bg, err = job.Backgrounds.Get(ctx, bgIndex)
			if err != nil {
				log.Warn("background unavailable", zap.Int("background", bgIndex), zap.Error(err))
				bg, err = nil, nil
			}
		}
	}

	if err := g.renderer.Render(dst, it.quote, bg, s); err != nil {
		return GeneratedImage{}, err
	}
	data, err := imagepkg.Encode(dst, s)
	if err != nil {
		return GeneratedImage{}, err
	}
	uri, err := imagepkg.PreviewURI(dst)
	if err != nil {
		return GeneratedImage{}, err
	}
	return GeneratedImage{
		Index:      it.index,
		Quote:      it.quote,
		Filename:   naming.Generate(it.index, it.quote, opts, now),
		PreviewURI: uri,
		Data:       data,
		Success:    true,
	}, nil
}

// wait blocks while paused and reports whether the next item may start.
func (g *Generator) wait(ctx context.Context) bool {
	for {
		if g.cancelled.Load() || ctx.Err() != nil {
			return false
		}
		g.mu.Lock()
		gate := g.resume
		g.mu.Unlock()
		if gate == nil {
			return true
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return false
		}
	}
}

// Pause takes effect before the next item. It reports whether the state
// changed.
func (g *Generator) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateRunning {
		return false
	}
	g.state = StatePaused
	g.resume = make(chan struct{})
	return true
}

func (g *Generator) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePaused {
		return false
	}
	g.state = StateRunning
	close(g.resume)
	g.resume = nil
	return true
}

// Cancel stops the run before its next item. Finished items are kept.
func (g *Generator) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateIdle {
		return false
	}
	g.cancelled.Store(true)
	if g.resume != nil {
		close(g.resume)
		g.resume = nil
		g.state = StateRunning
	}
	return true
}

func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Generator) JobID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.jobID
}

func (g *Generator) Generated() []GeneratedImage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GeneratedImage(nil), g.generated...)
}

func (g *Generator) Failed() []FailedImage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]FailedImage(nil), g.failed...)
}

// Stats returns a snapshot; elapsed time and throughput are live while a
// run is in progress.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.stats
	if g.state != StateIdle {
		st.Elapsed = time.Since(st.StartedAt)
		st.Throughput = throughput(st.Generated, st.Elapsed)
	}
	return st
}

// Clear drops all results. It fails while a run is active.
func (g *Generator) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return ErrBusy
	}
	g.generated, g.failed = nil, nil
	g.stats = Stats{}
	return nil
}

// throughput is images per minute.
func throughput(generated int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(generated) / elapsed.Minutes()
}

func label(quote string) string {
	r := []rune(quote)
	if len(r) > labelLength {
		return string(r[:labelLength]) + "..."
	}
	return quote
}
