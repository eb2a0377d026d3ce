package imagepkg

import (
	"image"

	"github.com/youruser/quotecanvas/internal/settings"
)

// Task is a self-contained render request: everything needed to produce
// one image, so it can be executed away from the session that built it.
type Task struct {
	Index      int                     `json:"index"`
	Quote      string                  `json:"quote"`
	Settings   settings.RenderSettings `json:"settings"`
	Background []byte                  `json:"background,omitempty"`
}

// TaskResult carries the encoded image and whether the background had to
// be replaced by the solid color.
type TaskResult struct {
	Index          int
	Data           []byte
	BackgroundUsed bool
	BackgroundErr  error
}

// Execute renders and encodes a task. An undecodable background is reported
// in the result and the image is rendered on the solid color.
func (r *Renderer) Execute(t Task) (TaskResult, error) {
	res := TaskResult{Index: t.Index}
	var bg image.Image
	if len(t.Background) > 0 {
		img, err := File{Name: "background", Data: t.Background}.Decode()
		if err != nil {
			res.BackgroundErr = err
		} else {
			bg = img
			res.BackgroundUsed = true
		}
	}
	img, err := r.RenderImage(t.Quote, bg, t.Settings)
	if err != nil {
		return res, err
	}
	res.Data, err = Encode(img, t.Settings)
	return res, err
}
