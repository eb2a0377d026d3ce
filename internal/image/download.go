package imagepkg

import (
	"context"
	"net/url"
	"path"

	"github.com/youruser/quotecanvas/internal/util"
)

// DownloadBackground fetches a remote image and wraps it as a background
// file. It is rejected like an upload when it is not an image.
func DownloadBackground(ctx context.Context, rawURL string) (File, error) {
	body, _, err := util.GetBytes(ctx, rawURL)
	if err != nil {
		return File{}, err
	}
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		name = path.Base(u.Path)
	}
	return NewFile(name, body)
}
