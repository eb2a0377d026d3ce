package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/youruser/quotecanvas/internal/app"
	"github.com/youruser/quotecanvas/internal/archive"
	"github.com/youruser/quotecanvas/internal/batch"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/naming"
	"github.com/youruser/quotecanvas/internal/quotes"
	"github.com/youruser/quotecanvas/internal/util"
	"go.uber.org/zap"
)

type generateOptions struct {
	quotes       []string
	backgrounds  []string
	settingsPath string
	out          string
	zipPath      string
	level        string
	naming       naming.Options
	filter       quotes.FilterOptions
}

func newGenerateCmd(e *env) *cobra.Command {
	o := generateOptions{naming: naming.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render every quote into an image",
		Example: `  # One image per line of quotes.txt, cycling through the backgrounds
  quotecanvas generate --quotes quotes.txt --backgrounds ./photos --out ./out

  # Only quotes mentioning "love", zipped at the best compression level
  quotecanvas generate --quotes quotes.json --grep love --zip love.zip --level best`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.out == "" && o.zipPath == "" {
				return errors.New("nothing to write: set --out and/or --zip")
			}
			level, err := archive.ParseLevel(o.level)
			if err != nil {
				return err
			}
			settingsPath := o.settingsPath
			if settingsPath == "" {
				settingsPath = e.cfg.Storage.SettingsPath
			}
			rs, err := app.RenderSettings(settingsPath)
			if err != nil {
				return err
			}

			loaded := quotes.LoadPaths(o.quotes...)
			for _, err := range loaded.Errors {
				e.log.Warn("quote source skipped", zap.Error(err))
			}
			list := quotes.Filter(loaded.Quotes, o.filter)
			if len(list) == 0 {
				return errors.New("no quotes to render")
			}

			files, err := loadBackgrounds(o.backgrounds, e.log)
			if err != nil {
				return err
			}
			bgs := imagepkg.NewBackgrounds(e.cfg.Storage.CacheSize)
			bgs.Replace(files)

			fonts, err := app.Fonts(e.cfg.Storage.FontDir, e.log)
			if err != nil {
				return err
			}
			gen := batch.NewGenerator(imagepkg.NewRenderer(fonts), e.log)
			sum, err := gen.Run(cmd.Context(), batch.Job{
				Quotes:      list,
				Backgrounds: bgs,
				Settings:    rs,
				Naming:      o.naming,
				Sink:        &progressPrinter{w: cmd.ErrOrStderr()},
			})
			if err != nil {
				return err
			}

			images := gen.Generated()
			if o.out != "" {
				if err := writeImages(o.out, images); err != nil {
					return err
				}
			}
			if o.zipPath != "" {
				if err := writeArchive(o.zipPath, images, level); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d generated, %d failed in %s (%.1f img/min)\n",
				sum.Generated, sum.Failed, sum.Elapsed.Round(time.Millisecond), sum.Throughput)
			for _, f := range gen.Failed() {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed #%d: %s\n", f.Index+1, f.Err)
			}
			if sum.Outcome == batch.OutcomeCancelled {
				return errors.New("generation cancelled")
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d images failed", sum.Failed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&o.quotes, "quotes", "q", nil, "Quote sources: .txt, .json or .csv files (- for stdin)")
	f.StringSliceVarP(&o.backgrounds, "backgrounds", "b", nil, "Background image files or directories")
	f.StringVarP(&o.settingsPath, "settings", "s", "", "Render settings file (.yaml or .json)")
	f.StringVarP(&o.out, "out", "o", "", "Directory to write images into")
	f.StringVar(&o.zipPath, "zip", "", "Write all images into this zip archive")
	f.StringVar(&o.level, "level", "balanced", "Zip compression level: fast, balanced or best")
	f.StringVar(&o.naming.Pattern, "pattern", naming.DefaultPattern, "Filename pattern with {index} {quote} {date} {time} {timestamp}")
	f.IntVar(&o.naming.IndexStart, "index-start", 1, "Number given to the first quote")
	f.IntVar(&o.naming.IndexPadding, "index-padding", 0, "Zero-pad {index} to this width")
	f.IntVar(&o.naming.QuoteMaxLength, "quote-length", naming.DefaultQuoteMaxLength, "Maximum length of {quote} in filenames")
	f.StringVar(&o.naming.DateFormat, "date-format", "YYYY-MM-DD", "Format of {date}")
	f.StringVar(&o.naming.TimeFormat, "time-format", "HH-MM-SS", "Format of {time}")
	f.StringVar(&o.filter.FreeWords, "grep", "", "Only quotes containing all of these words")
	f.IntVar(&o.filter.MinLength, "min-length", 0, "Skip quotes shorter than this")
	f.IntVar(&o.filter.MaxLength, "max-length", 0, "Skip quotes longer than this")
	f.BoolVar(&o.filter.Dedupe, "dedupe", false, "Drop repeated quotes")
	_ = cmd.MarkFlagRequired("quotes")

	return cmd
}

// loadBackgrounds expands directories (sorted by name) and keeps only
// image files. Other files are logged and skipped.
func loadBackgrounds(paths []string, log *zap.Logger) ([]imagepkg.File, error) {
	var files []imagepkg.File
	add := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := imagepkg.NewFile(filepath.Base(path), data)
		if err != nil {
			log.Warn("background skipped", zap.String("path", path), zap.Error(err))
			return nil
		}
		files = append(files, f)
		return nil
	}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(entries))
		for _, de := range entries {
			if !de.IsDir() {
				names = append(names, de.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if err := add(filepath.Join(p, name)); err != nil {
				return nil, err
			}
		}
	}
	return files, nil
}

func writeImages(dir string, images []batch.GeneratedImage) error {
	if err := util.EnsureDir(dir); err != nil {
		return err
	}
	names := archive.NewNamer()
	for _, img := range images {
		if err := util.WriteFile(filepath.Join(dir, names.Unique(img.Filename)), img.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeArchive(path string, images []batch.GeneratedImage, level archive.Level) error {
	entries := make([]archive.Entry, len(images))
	for i, img := range images {
		entries[i] = archive.Entry{Name: img.Filename, Data: img.Data}
	}
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := archive.Write(f, entries, level); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// progressPrinter reports batch progress one line per item.
type progressPrinter struct {
	w io.Writer
}

func (p *progressPrinter) Progress(current, total int, label string) {
	fmt.Fprintf(p.w, "[%d/%d] %s\n", current, total, label)
}

func (p *progressPrinter) Item(batch.ItemResult) {}

func (p *progressPrinter) Done(batch.Summary) {}
