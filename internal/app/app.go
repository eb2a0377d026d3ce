// Package app wires configuration into a ready session for the server and
// the CLI.
package app

import (
	"fmt"

	"github.com/youruser/quotecanvas/internal/config"
	imagepkg "github.com/youruser/quotecanvas/internal/image"
	"github.com/youruser/quotecanvas/internal/quotes"
	"github.com/youruser/quotecanvas/internal/session"
	"github.com/youruser/quotecanvas/internal/settings"
	"go.uber.org/zap"
)

// Fonts returns the built-in fonts plus any .ttf files in dir.
func Fonts(dir string, log *zap.Logger) (*imagepkg.FontBook, error) {
	fonts := imagepkg.NewFontBook()
	if dir == "" {
		return fonts, nil
	}
	n, err := fonts.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading fonts from %s: %w", dir, err)
	}
	log.Info("fonts loaded", zap.String("dir", dir), zap.Int("count", n))
	return fonts, nil
}

// RenderSettings loads path, or returns the defaults when path is empty.
func RenderSettings(path string) (settings.RenderSettings, error) {
	if path == "" {
		return settings.Default(), nil
	}
	return settings.Load(path)
}

// NewSession builds the session from cfg. Startup quotes are loaded best
// effort: a missing or empty file is logged, not fatal.
func NewSession(cfg *config.Config, log *zap.Logger) (*session.Session, error) {
	fonts, err := Fonts(cfg.Storage.FontDir, log)
	if err != nil {
		return nil, err
	}
	rs, err := RenderSettings(cfg.Storage.SettingsPath)
	if err != nil {
		return nil, err
	}
	sess := session.New(session.Options{
		CacheSize: cfg.Storage.CacheSize,
		Renderer:  imagepkg.NewRenderer(fonts),
		Logger:    log,
		Settings:  &rs,
	})

	if cfg.Storage.QuotesPath != "" {
		res := quotes.LoadPaths(cfg.Storage.QuotesPath)
		if err := sess.SetQuotes(res.Quotes); err != nil {
			log.Warn("startup quotes not loaded", zap.String("path", cfg.Storage.QuotesPath), zap.Error(res.Joined()))
		} else {
			log.Info("startup quotes loaded", zap.String("status", res.Status()))
		}
	}
	return sess, nil
}
