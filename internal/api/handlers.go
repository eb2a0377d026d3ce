package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/youruser/quotecanvas/internal/archive"
	"github.com/youruser/quotecanvas/internal/batch"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/quotes"
	"github.com/youruser/quotecanvas/internal/session"
	"github.com/youruser/quotecanvas/internal/settings"
	"go.uber.org/zap"
)

const (
	maxQRSize        = 2048
	thumbnailSize    = 100
	maxThumbnailSize = 512
	thumbnailQuality = 70
)

// Handler serves one shared session over HTTP. Batch runs started through
// it outlive the request and stop when ctx is cancelled.
type Handler struct {
	trackMu sync.Mutex
	track   *tracker // sink of the latest started run

	ctx      context.Context
	sess     *session.Session
	prefs    *settings.PrefsStore
	log      *zap.Logger
	download func(ctx context.Context, url string) (imagepkg.File, error)
}

func NewHandler(ctx context.Context, sess *session.Session, prefs *settings.PrefsStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")
	return &Handler{
		ctx:      ctx,
		sess:     sess,
		prefs:    prefs,
		log:      log,
		track:    newTracker(log),
		download: imagepkg.DownloadBackground,
	}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = "quotecanvas"
	}
	size := 256
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = min(v, maxQRSize)
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// readUploads collects the files posted under the multipart field "files".
func readUploads(c *gin.Context) ([]session.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, badRequest{err}
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, badRequest{errors.New(`no files in field "files"`)}
	}
	out := make([]session.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, session.Upload{Name: fh.Filename, Data: data})
	}
	return out, nil
}

func (h *Handler) listQuotes(c *gin.Context) {
	var opt quotes.FilterOptions
	if err := c.ShouldBindQuery(&opt); err != nil {
		fail(c, badRequest{err})
		return
	}
	all := h.sess.Quotes()
	out := quotes.Filter(all, opt)
	c.JSON(http.StatusOK, gin.H{"total": len(all), "count": len(out), "quotes": out, "current": h.sess.Current()})
}

func (h *Handler) uploadQuotes(c *gin.Context) {
	uploads, err := readUploads(c)
	if err != nil {
		fail(c, err)
		return
	}
	files := make([]quotes.File, len(uploads))
	for i, u := range uploads {
		files[i] = quotes.File{Name: u.Name, Data: u.Data}
	}
	res, err := h.sess.LoadQuoteFiles(files)
	body := gin.H{"count": len(res.Quotes), "errors": errorStrings(res.Errors), "status": res.Status()}
	if err != nil {
		body["error"] = "no valid quotes found in uploaded files"
		c.JSON(http.StatusBadRequest, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) quotesFromText(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest{err})
		return
	}
	n, err := h.sess.LoadQuoteText(req.Text)
	if err != nil {
		fail(c, badRequest{err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n, "current": h.sess.Current()})
}

func (h *Handler) navigate(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		Index  int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest{err})
		return
	}
	var (
		pos session.Position
		err error
	)
	switch req.Action {
	case "next":
		pos, err = h.sess.Next()
	case "prev", "previous":
		pos, err = h.sess.Previous()
	case "random":
		pos, err = h.sess.Random()
	case "goto":
		pos, err = h.sess.Goto(req.Index)
		if err != nil && !errors.Is(err, session.ErrNoQuotes) {
			err = badRequest{err}
		}
	default:
		err = badRequest{fmt.Errorf("unknown action %q", req.Action)}
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (h *Handler) listBackgrounds(c *gin.Context) {
	c.JSON(http.StatusOK, h.sess.Backgrounds())
}

func (h *Handler) uploadBackgrounds(c *gin.Context) {
	uploads, err := readUploads(c)
	if err != nil {
		fail(c, err)
		return
	}
	res := h.sess.AddBackgrounds(uploads)
	body := gin.H{"added": res.Added, "errors": errorStrings(res.Errors), "backgrounds": h.sess.Backgrounds()}
	if res.Added == 0 {
		body["error"] = "no valid images uploaded"
		c.JSON(http.StatusBadRequest, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) importBackground(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest{err})
		return
	}
	f, err := h.download(c.Request.Context(), req.URL)
	if err != nil {
		var unsupported *imagepkg.UnsupportedFileTypeError
		if errors.As(err, &unsupported) {
			fail(c, err)
			return
		}
		h.log.Warn("background download failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	n := h.sess.AppendBackground(f)
	c.JSON(http.StatusOK, gin.H{"name": f.Name, "index": n - 1, "count": n})
}

func (h *Handler) clearBackgrounds(c *gin.Context) {
	h.sess.ClearBackgrounds()
	c.Status(http.StatusNoContent)
}

func indexParam(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil {
		fail(c, badRequest{fmt.Errorf("invalid %s %q", name, c.Param(name))})
		return 0, false
	}
	return i, true
}

func (h *Handler) removeBackground(c *gin.Context) {
	i, ok := indexParam(c, "index")
	if !ok {
		return
	}
	if err := h.sess.RemoveBackground(i); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sess.Backgrounds())
}

func (h *Handler) selectBackground(c *gin.Context) {
	i, ok := indexParam(c, "index")
	if !ok {
		return
	}
	if err := h.sess.SelectBackground(i); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sess.Backgrounds())
}

// backgroundThumbnail serves a small JPEG of the raw background file.
func (h *Handler) backgroundThumbnail(c *gin.Context) {
	i, ok := indexParam(c, "index")
	if !ok {
		return
	}
	size := thumbnailSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = min(v, maxThumbnailSize)
	}
	img, err := h.sess.BackgroundThumbnail(i, size)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		fail(c, &imagepkg.EncodeError{Format: "jpeg", Err: err})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.sess.Settings())
}

// putSettings merges the body over the current settings.
func (h *Handler) putSettings(c *gin.Context) {
	rs := h.sess.Settings()
	if err := c.ShouldBindJSON(&rs); err != nil {
		fail(c, badRequest{err})
		return
	}
	if err := h.sess.UpdateSettings(rs); err != nil {
		fail(c, badRequest{err})
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) applyPreset(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest{err})
		return
	}
	rs, err := h.sess.ApplyPreset(req.Name)
	if err != nil {
		fail(c, badRequest{err})
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) resetEffects(c *gin.Context) {
	c.JSON(http.StatusOK, h.sess.ResetEffects())
}

func (h *Handler) exportSettings(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="quote-settings.json"`)
	c.JSON(http.StatusOK, h.sess.ExportSettings())
}

func (h *Handler) getNaming(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": h.sess.Naming(), "preview": h.sess.NamingPreview()})
}

func (h *Handler) putNaming(c *gin.Context) {
	opts := h.sess.Naming()
	if err := c.ShouldBindJSON(&opts); err != nil {
		fail(c, badRequest{err})
		return
	}
	if opts.IndexPadding < 0 || opts.IndexPadding > 10 {
		fail(c, badRequest{fmt.Errorf("index_padding must be in 0..10, got %d", opts.IndexPadding)})
		return
	}
	h.sess.SetNaming(opts)
	c.JSON(http.StatusOK, gin.H{"options": opts, "preview": h.sess.NamingPreview()})
}

func (h *Handler) getPreferences(c *gin.Context) {
	p, err := h.prefs.Load()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) putPreferences(c *gin.Context) {
	p, err := h.prefs.Load()
	if err != nil {
		fail(c, err)
		return
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest{err})
		return
	}
	if err := h.prefs.Save(p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// preview renders the current quote scaled by the preview quality
// preference. effects=false renders the background unfiltered.
func (h *Handler) preview(c *gin.Context) {
	effects, err := strconv.ParseBool(c.DefaultQuery("effects", "true"))
	if err != nil {
		fail(c, badRequest{fmt.Errorf("effects: %w", err)})
		return
	}
	p, err := h.prefs.Load()
	if err != nil {
		h.log.Warn("preferences unreadable, using defaults", zap.Error(err))
		p = settings.DefaultPreferences()
	}
	render := h.sess.Preview
	if !effects {
		render = h.sess.ComparisonPreview
	}
	img, err := render(c.Request.Context(), p.PreviewScale())
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		fail(c, &imagepkg.EncodeError{Format: "png", Err: err})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// render executes a self-contained task without touching the session.
func (h *Handler) render(c *gin.Context) {
	task := imagepkg.Task{Settings: settings.Default()}
	if err := c.ShouldBindJSON(&task); err != nil {
		fail(c, badRequest{err})
		return
	}
	if err := task.Settings.Validate(); err != nil {
		fail(c, badRequest{err})
		return
	}
	res, err := h.sess.Renderer().Execute(task)
	if err != nil {
		fail(c, err)
		return
	}
	if res.BackgroundErr != nil {
		c.Header("X-Background-Error", res.BackgroundErr.Error())
	}
	c.Data(http.StatusOK, imagepkg.ContentType(task.Settings), res.Data)
}

func (h *Handler) current(c *gin.Context) {
	out, err := h.sess.RenderCurrent(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

func (h *Handler) startGenerate(c *gin.Context) {
	t := newTracker(h.log)
	total, err := h.sess.StartGenerate(h.ctx, t)
	if err != nil {
		fail(c, err)
		return
	}
	h.setTracker(t)
	c.JSON(http.StatusAccepted, gin.H{"total": total, "job_id": h.sess.Generator().JobID()})
}

func (h *Handler) retry(c *gin.Context) {
	t := newTracker(h.log)
	total, err := h.sess.StartRetry(h.ctx, t)
	if err != nil {
		fail(c, err)
		return
	}
	h.setTracker(t)
	c.JSON(http.StatusAccepted, gin.H{"total": total, "job_id": h.sess.Generator().JobID()})
}

func (h *Handler) setTracker(t *tracker) {
	h.trackMu.Lock()
	defer h.trackMu.Unlock()
	h.track = t
}

func (h *Handler) currentTracker() *tracker {
	h.trackMu.Lock()
	defer h.trackMu.Unlock()
	return h.track
}

func (h *Handler) generateStatus(c *gin.Context) {
	gen := h.sess.Generator()
	progress, last := h.currentTracker().snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":    gen.State(),
		"job_id":   gen.JobID(),
		"stats":    gen.Stats(),
		"progress": progress,
		"last":     last,
		"failed":   gen.Failed(),
	})
}

func (h *Handler) control(c *gin.Context, op func() bool) {
	gen := h.sess.Generator()
	changed := op()
	c.JSON(http.StatusOK, gin.H{"changed": changed, "state": gen.State()})
}

func (h *Handler) pause(c *gin.Context)  { h.control(c, h.sess.Generator().Pause) }
func (h *Handler) resume(c *gin.Context) { h.control(c, h.sess.Generator().Resume) }
func (h *Handler) cancel(c *gin.Context) { h.control(c, h.sess.Generator().Cancel) }

func (h *Handler) listImages(c *gin.Context) {
	imgs := h.sess.Generator().Generated()
	c.JSON(http.StatusOK, gin.H{"count": len(imgs), "images": imgs})
}

func (h *Handler) image(c *gin.Context) {
	n, ok := indexParam(c, "n")
	if !ok {
		return
	}
	imgs := h.sess.Generator().Generated()
	if n < 0 || n >= len(imgs) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no generated image %d", n)})
		return
	}
	img := imgs[n]
	ct := mime.TypeByExtension(path.Ext(img.Filename))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, img.Filename))
	c.Data(http.StatusOK, ct, img.Data)
}

// archive zips the generated images, or the positions listed in
// ?select=0,2,5, at ?level=fast|balanced|best.
func (h *Handler) archive(c *gin.Context) {
	level, err := archive.ParseLevel(c.Query("level"))
	if err != nil {
		fail(c, badRequest{err})
		return
	}
	imgs := h.sess.Generator().Generated()
	if sel := c.Query("select"); sel != "" {
		picked, err := selectImages(imgs, sel)
		if err != nil {
			fail(c, badRequest{err})
			return
		}
		imgs = picked
	}
	if len(imgs) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no generated images"})
		return
	}

	entries := make([]archive.Entry, len(imgs))
	for i, img := range imgs {
		entries[i] = archive.Entry{Name: img.Filename, Data: img.Data}
	}
	var buf bytes.Buffer
	if err := archive.Write(&buf, entries, level); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, archive.Name(len(imgs))))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func selectImages(imgs []batch.GeneratedImage, sel string) ([]batch.GeneratedImage, error) {
	var out []batch.GeneratedImage
	for _, part := range strings.Split(sel, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		if n < 0 || n >= len(imgs) {
			return nil, fmt.Errorf("selection %d out of range [0, %d)", n, len(imgs))
		}
		out = append(out, imgs[n])
	}
	return out, nil
}
