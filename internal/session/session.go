// Package session holds the editing state of one user: loaded quotes, the
// background set, render settings and the batch generator working on them.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/youruser/quotecanvas/internal/batch"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/naming"
	"github.com/youruser/quotecanvas/internal/quotes"
	"github.com/youruser/quotecanvas/internal/settings"
	"go.uber.org/zap"
)

var ErrNoQuotes = errors.New("no quotes loaded")

type Options struct {
	CacheSize int
	Renderer  *imagepkg.Renderer
	Logger    *zap.Logger
	Settings  *settings.RenderSettings
	Naming    *naming.Options
}

type Session struct {
	mu          sync.RWMutex
	quotes      []string
	current     int
	bgIndex     int
	backgrounds *imagepkg.Backgrounds
	settings    settings.RenderSettings
	naming      naming.Options

	renderer *imagepkg.Renderer
	gen      *batch.Generator
	log      *zap.Logger
	intn     func(n int) int
	now      func() time.Time
}

func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = imagepkg.NewRenderer(nil)
	}
	s := &Session{
		backgrounds: imagepkg.NewBackgrounds(opts.CacheSize),
		settings:    settings.Default(),
		naming:      naming.DefaultOptions(),
		renderer:    renderer,
		gen:         batch.NewGenerator(renderer, log),
		log:         log.Named("session"),
		intn:        rand.IntN,
		now:         time.Now,
	}
	if opts.Settings != nil {
		s.settings = *opts.Settings
	}
	if opts.Naming != nil {
		s.naming = *opts.Naming
	}
	return s
}

// Position describes the current quote.
type Position struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Quote   string `json:"quote"`
	HasPrev bool   `json:"has_prev"`
	HasNext bool   `json:"has_next"`
}

// SetQuotes replaces the quote list and moves to the first quote. An empty
// list is rejected and the previous quotes stay.
func (s *Session) SetQuotes(list []string) error {
	if len(list) == 0 {
		return ErrNoQuotes
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append([]string(nil), list...)
	s.current = 0
	return nil
}

// LoadQuoteFiles parses uploaded text sources. Files that fail to parse are
// counted in the result; the list is replaced only when quotes were found.
func (s *Session) LoadQuoteFiles(files []quotes.File) (quotes.LoadResult, error) {
	res := quotes.LoadFiles(files)
	for _, err := range res.Errors {
		s.log.Warn("quote source skipped", zap.Error(err))
	}
	if err := s.SetQuotes(res.Quotes); err != nil {
		return res, err
	}
	s.log.Info("quotes loaded", zap.Int("quotes", len(res.Quotes)), zap.Int("errors", len(res.Errors)))
	return res, nil
}

func (s *Session) LoadQuoteText(text string) (int, error) {
	list := quotes.FromText(text)
	if err := s.SetQuotes(list); err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Session) Quotes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.quotes...)
}

func (s *Session) Current() Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position()
}

func (s *Session) position() Position {
	p := Position{Index: s.current, Total: len(s.quotes)}
	if len(s.quotes) > 0 {
		p.Quote = s.quotes[s.current]
		p.HasPrev = s.current > 0
		p.HasNext = s.current < len(s.quotes)-1
	}
	return p
}

// Next and Previous stop at the ends of the list.
func (s *Session) Next() (Position, error) {
	return s.move(func(i, _ int) int { return i + 1 })
}

func (s *Session) Previous() (Position, error) {
	return s.move(func(i, _ int) int { return i - 1 })
}

func (s *Session) Random() (Position, error) {
	return s.move(func(_, n int) int { return s.intn(n) })
}

// Goto jumps to index, which must be within the list.
func (s *Session) Goto(index int) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.quotes) == 0 {
		return Position{}, ErrNoQuotes
	}
	if index < 0 || index >= len(s.quotes) {
		return s.position(), fmt.Errorf("quote index %d out of range [0, %d)", index, len(s.quotes))
	}
	s.current = index
	return s.position(), nil
}

func (s *Session) move(next func(i, n int) int) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.quotes)
	if n == 0 {
		return Position{}, ErrNoQuotes
	}
	s.current = min(max(next(s.current, n), 0), n-1)
	return s.position(), nil
}

// Upload is a raw file as received from a client.
type Upload struct {
	Name string
	Data []byte
}

// BackgroundResult reports how many files were accepted and why the others
// were not.
type BackgroundResult struct {
	Added  int     `json:"added"`
	Errors []error `json:"-"`
}

// AddBackgrounds replaces the background set with the image uploads.
// Non-images are rejected and counted; the set is left unchanged when none
// are accepted.
func (s *Session) AddBackgrounds(uploads []Upload) BackgroundResult {
	var (
		res   BackgroundResult
		files []imagepkg.File
	)
	for _, u := range uploads {
		f, err := imagepkg.NewFile(u.Name, u.Data)
		if err != nil {
			s.log.Warn("background rejected", zap.String("name", u.Name), zap.Error(err))
			res.Errors = append(res.Errors, err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return res
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounds.Replace(files)
	s.bgIndex = 0
	res.Added = len(files)
	return res
}

// AppendBackground adds one already validated file to the end of the set.
func (s *Session) AppendBackground(f imagepkg.File) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounds.Append(f)
	return s.backgrounds.Len()
}

// RemoveBackground drops background index and keeps the selection within
// range.
func (s *Session) RemoveBackground(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backgrounds.RemoveAt(index); err != nil {
		return err
	}
	if n := s.backgrounds.Len(); s.bgIndex >= n {
		s.bgIndex = max(0, n-1)
	}
	return nil
}

func (s *Session) ClearBackgrounds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounds.Clear()
	s.bgIndex = 0
}

func (s *Session) SelectBackground(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.backgrounds.Len(); index < 0 || index >= n {
		return &imagepkg.InvalidIndexError{Index: index, Len: n}
	}
	s.bgIndex = index
	return nil
}

// BackgroundInfo lists the background names and the selected index.
type BackgroundInfo struct {
	Names    []string            `json:"names"`
	Selected int                 `json:"selected"`
	Cache    imagepkg.CacheStats `json:"cache"`
}

func (s *Session) Backgrounds() BackgroundInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BackgroundInfo{
		Names:    s.backgrounds.Names(),
		Selected: s.bgIndex,
		Cache:    s.backgrounds.Cache().Stats(),
	}
}

// BackgroundFile returns the raw bytes of a background, e.g. to build a
// render task.
func (s *Session) BackgroundFile(index int) (imagepkg.File, error) {
	return s.backgrounds.File(index)
}

func (s *Session) Settings() settings.RenderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates and stores a new settings snapshot.
func (s *Session) UpdateSettings(rs settings.RenderSettings) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = rs
	return nil
}

func (s *Session) ApplyPreset(name string) (settings.RenderSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, err := s.settings.ApplyPreset(name)
	if err != nil {
		return s.settings, err
	}
	s.settings = rs
	return rs, nil
}

func (s *Session) ResetEffects() settings.RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.ResetEffects()
	return s.settings
}

func (s *Session) ExportSettings() settings.Export {
	return s.Settings().Export()
}

func (s *Session) Naming() naming.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.naming
}

func (s *Session) SetNaming(opts naming.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.naming = opts
}

// NamingPreview is the filename the current quote would be exported under.
func (s *Session) NamingPreview() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := s.naming
	opts.Extension = s.settings.Extension()
	quote := "Sample quote text"
	if len(s.quotes) > 0 {
		quote = s.quotes[s.current]
	}
	return naming.Generate(s.current, quote, opts, s.now())
}

// snapshot captures what a single render needs under one read lock.
type snapshot struct {
	index    int
	quote    string
	bgIndex  int
	bgCount  int
	settings settings.RenderSettings
	naming   naming.Options
}

func (s *Session) snapshot() (snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.quotes) == 0 {
		return snapshot{}, ErrNoQuotes
	}
	return snapshot{
		index:    s.current,
		quote:    s.quotes[s.current],
		bgIndex:  s.bgIndex,
		bgCount:  s.backgrounds.Len(),
		settings: s.settings,
		naming:   s.naming,
	}, nil
}

// background fetches the selected background through the cache. Failures
// are logged and rendering continues on the solid color.
func (s *Session) background(ctx context.Context, snap snapshot) image.Image {
	if snap.bgCount == 0 {
		return nil
	}
	bg, err := s.backgrounds.Get(ctx, snap.bgIndex)
	if err != nil {
		s.log.Warn("background unavailable", zap.Int("background", snap.bgIndex), zap.Error(err))
		return nil
	}
	return bg
}

// Preview renders the current quote on the selected background, scaled by
// scale (0 < scale <= 1).
func (s *Session) Preview(ctx context.Context, scale float64) (*image.NRGBA, error) {
	return s.preview(ctx, scale, s.renderer.RenderImage)
}

// ComparisonPreview is Preview with the background left unfiltered, for
// side-by-side comparison with the effects applied.
func (s *Session) ComparisonPreview(ctx context.Context, scale float64) (*image.NRGBA, error) {
	return s.preview(ctx, scale, s.renderer.RenderUnfilteredImage)
}

type renderFunc func(quote string, bg image.Image, rs settings.RenderSettings) (*image.NRGBA, error)

func (s *Session) preview(ctx context.Context, scale float64, render renderFunc) (*image.NRGBA, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	img, err := render(snap.quote, s.background(ctx, snap), snap.settings)
	if err != nil {
		return nil, err
	}
	if scale > 0 && scale < 1 {
		w := max(1, int(float64(img.Bounds().Dx())*scale))
		h := max(1, int(float64(img.Bounds().Dy())*scale))
		img = imaging.Resize(img, w, h, imaging.Linear)
	}
	return img, nil
}

// BackgroundThumbnail decodes the raw background at index and fits it in a
// size x size box. The decode bypasses the cache.
func (s *Session) BackgroundThumbnail(index, size int) (*image.NRGBA, error) {
	f, err := s.backgrounds.File(index)
	if err != nil {
		return nil, err
	}
	return imagepkg.Thumbnail(f, size)
}

// Rendered is an encoded single export.
type Rendered struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RenderCurrent produces the full-size export of the current quote.
func (s *Session) RenderCurrent(ctx context.Context) (Rendered, error) {
	snap, err := s.snapshot()
	if err != nil {
		return Rendered{}, err
	}
	img, err := s.renderer.RenderImage(snap.quote, s.background(ctx, snap), snap.settings)
	if err != nil {
		return Rendered{}, err
	}
	data, err := imagepkg.Encode(img, snap.settings)
	if err != nil {
		return Rendered{}, err
	}
	opts := snap.naming
	opts.Extension = snap.settings.Extension()
	return Rendered{
		Filename:    naming.Generate(snap.index, snap.quote, opts, s.now()),
		ContentType: imagepkg.ContentType(snap.settings),
		Data:        data,
	}, nil
}

func (s *Session) Generator() *batch.Generator { return s.gen }

// Job snapshots the session for a batch run.
func (s *Session) Job(sink batch.ProgressSink) batch.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return batch.Job{
		Quotes:      append([]string(nil), s.quotes...),
		Backgrounds: s.backgrounds,
		Settings:    s.settings,
		Naming:      s.naming,
		Sink:        sink,
		Now:         s.now,
	}
}

// Generate runs a full batch over the loaded quotes.
func (s *Session) Generate(ctx context.Context, sink batch.ProgressSink) (batch.Summary, error) {
	job := s.Job(sink)
	if len(job.Quotes) == 0 {
		return batch.Summary{}, ErrNoQuotes
	}
	return s.gen.Run(ctx, job)
}

func (s *Session) RetryFailed(ctx context.Context, sink batch.ProgressSink) (batch.Summary, error) {
	return s.gen.RetryFailed(ctx, s.Job(sink))
}

// StartGenerate launches a full batch in the background and returns the
// number of quotes queued once the generator is running.
func (s *Session) StartGenerate(ctx context.Context, sink batch.ProgressSink) (int, error) {
	job := s.Job(sink)
	if len(job.Quotes) == 0 {
		return 0, ErrNoQuotes
	}
	return s.gen.Start(ctx, job)
}

func (s *Session) StartRetry(ctx context.Context, sink batch.ProgressSink) (int, error) {
	return s.gen.StartRetry(ctx, s.Job(sink))
}

func (s *Session) Renderer() *imagepkg.Renderer { return s.renderer }
