package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"github.com/youruser/quotecanvas/internal/app"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/util"
	"go.uber.org/zap"
)

func newPreviewCmd(e *env) *cobra.Command {
	var quote, settingsPath, background, out, format string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a single quote to a file",
		Example: `  quotecanvas preview --quote "Less is more" --background sky.jpg --out less.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quote == "" {
				return errors.New("--quote is required")
			}
			if settingsPath == "" {
				settingsPath = e.cfg.Storage.SettingsPath
			}
			rs, err := app.RenderSettings(settingsPath)
			if err != nil {
				return err
			}
			if format != "" {
				rs.Format = format
				if err := rs.Validate(); err != nil {
					return err
				}
			}

			var bg image.Image
			if background != "" {
				bg, err = decodeBackground(cmd.Context(), background)
				if err != nil {
					e.log.Warn("background unusable, rendering on solid color", zap.Error(err))
				}
			}

			fonts, err := app.Fonts(e.cfg.Storage.FontDir, e.log)
			if err != nil {
				return err
			}
			img, err := imagepkg.NewRenderer(fonts).RenderImage(quote, bg, rs)
			if err != nil {
				return err
			}
			data, err := imagepkg.Encode(img, rs)
			if err != nil {
				return err
			}
			if out == "" {
				out = "preview." + rs.Extension()
			}
			if err := util.WriteFile(out, data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&quote, "quote", "", "Quote text to render")
	cmd.Flags().StringVarP(&settingsPath, "settings", "s", "", "Render settings file (.yaml or .json)")
	cmd.Flags().StringVarP(&background, "background", "b", "", "Background image file or http(s) URL")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default preview.<ext>)")
	cmd.Flags().StringVar(&format, "format", "", "Override the export format")

	return cmd
}

func decodeBackground(ctx context.Context, src string) (image.Image, error) {
	var (
		f   imagepkg.File
		err error
	)
	if isURL(src) {
		f, err = imagepkg.DownloadBackground(ctx, src)
	} else {
		var data []byte
		data, err = os.ReadFile(src)
		if err == nil {
			f, err = imagepkg.NewFile(src, data)
		}
	}
	if err != nil {
		return nil, err
	}
	return f.Decode()
}

func isURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
