// Package settings holds the render configuration snapshot and its presets.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	FitStretch = "stretch"
	FitCover   = "cover"
)

// QRStamp places a QR code in a corner of every rendered image.
type QRStamp struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Text    string `json:"text" yaml:"text"` // {quote} is replaced by the quote text
	Size    int    `json:"size" yaml:"size"`
	Margin  int    `json:"margin" yaml:"margin"`
	Corner  string `json:"corner" yaml:"corner"` // top-left, top-right, bottom-left, bottom-right
}

// RenderSettings is read once per render call and never mutated by the
// renderer. Percentages are whole numbers (100 = identity).
type RenderSettings struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	FontFamily string  `json:"font_family" yaml:"font_family"`
	FontSize   float64 `json:"font_size" yaml:"font_size"`
	FontWeight int     `json:"font_weight" yaml:"font_weight"`
	Italic     bool    `json:"italic" yaml:"italic"`
	Underline  bool    `json:"underline" yaml:"underline"`
	TextColor  string  `json:"text_color" yaml:"text_color"`
	TextAlign  string  `json:"text_align" yaml:"text_align"`
	Padding    int     `json:"padding" yaml:"padding"`
	LineHeight int     `json:"line_height" yaml:"line_height"`

	Shadow        string `json:"shadow" yaml:"shadow"`
	ShadowColor   string `json:"shadow_color" yaml:"shadow_color"`
	ShadowOpacity int    `json:"shadow_opacity" yaml:"shadow_opacity"`

	BackgroundColor string `json:"background_color" yaml:"background_color"`
	BackgroundFit   string `json:"background_fit" yaml:"background_fit"`
	Blur            int    `json:"blur" yaml:"blur"`
	Brightness      int    `json:"brightness" yaml:"brightness"`
	Contrast        int    `json:"contrast" yaml:"contrast"`
	Saturation      int    `json:"saturation" yaml:"saturation"`
	Filter          string `json:"filter" yaml:"filter"`
	Vignette        int    `json:"vignette" yaml:"vignette"`
	Gradient        string `json:"gradient" yaml:"gradient"`
	GradientColor1  string `json:"gradient_color1" yaml:"gradient_color1"`
	GradientColor2  string `json:"gradient_color2" yaml:"gradient_color2"`
	OverlayOpacity  int    `json:"overlay_opacity" yaml:"overlay_opacity"`

	Format  string `json:"format" yaml:"format"`
	Quality int    `json:"quality" yaml:"quality"`

	QR QRStamp `json:"qr" yaml:"qr"`
}

func Default() RenderSettings {
	return RenderSettings{
		Width:           1080,
		Height:          1080,
		FontFamily:      "Go",
		FontSize:        48,
		FontWeight:      400,
		TextColor:       "#ffffff",
		TextAlign:       AlignCenter,
		Padding:         60,
		LineHeight:      120,
		Shadow:          "soft",
		ShadowColor:     "#000000",
		ShadowOpacity:   50,
		BackgroundColor: "#333333",
		BackgroundFit:   FitStretch,
		Brightness:      100,
		Contrast:        100,
		Saturation:      100,
		Filter:          "none",
		Gradient:        "none",
		GradientColor1:  "#000000",
		GradientColor2:  "#ffffff",
		OverlayOpacity:  30,
		Format:          "png",
		Quality:         92,
		QR: QRStamp{
			Size:   160,
			Margin: 24,
			Corner: "bottom-right",
		},
	}
}

var (
	shadows   = []string{"none", "subtle", "soft", "hard", "long", "glow", "outline"}
	filters   = []string{"none", "grayscale", "sepia", "vintage", "cool", "warm"}
	gradients = []string{"none", "dark-bottom", "dark-top", "dark-center", "custom"}
	formats   = []string{"png", "jpeg", "jpg", "gif", "bmp", "tiff"}
	corners   = []string{"top-left", "top-right", "bottom-left", "bottom-right"}
)

// Validate reports every invalid field at once.
func (s RenderSettings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(s.Width > 0 && s.Width <= 8192, "width must be in 1..8192, got %d", s.Width)
	check(s.Height > 0 && s.Height <= 8192, "height must be in 1..8192, got %d", s.Height)
	check(s.FontSize > 0, "font_size must be positive, got %v", s.FontSize)
	check(s.Padding >= 0, "padding must not be negative, got %d", s.Padding)
	check(s.LineHeight > 0, "line_height must be positive, got %d", s.LineHeight)
	check(in(s.TextAlign, AlignLeft, AlignCenter, AlignRight), "unknown text_align %q", s.TextAlign)
	check(in(s.BackgroundFit, FitStretch, FitCover), "unknown background_fit %q", s.BackgroundFit)
	check(in(s.Shadow, shadows...), "unknown shadow %q", s.Shadow)
	check(in(s.Filter, filters...), "unknown filter %q", s.Filter)
	check(in(s.Gradient, gradients...), "unknown gradient %q", s.Gradient)
	check(in(strings.ToLower(s.Format), formats...), "unsupported format %q", s.Format)
	check(s.Quality >= 1 && s.Quality <= 100, "quality must be in 1..100, got %d", s.Quality)
	check(s.Blur >= 0, "blur must not be negative, got %d", s.Blur)
	check(s.Brightness >= 0 && s.Contrast >= 0 && s.Saturation >= 0, "brightness, contrast and saturation must not be negative")
	check(percent(s.ShadowOpacity), "shadow_opacity must be in 0..100, got %d", s.ShadowOpacity)
	check(percent(s.Vignette), "vignette must be in 0..100, got %d", s.Vignette)
	check(percent(s.OverlayOpacity), "overlay_opacity must be in 0..100, got %d", s.OverlayOpacity)

	for name, c := range map[string]string{
		"text_color":       s.TextColor,
		"shadow_color":     s.ShadowColor,
		"background_color": s.BackgroundColor,
		"gradient_color1":  s.GradientColor1,
		"gradient_color2":  s.GradientColor2,
	} {
		_, err := colorful.Hex(c)
		check(err == nil, "%s: invalid hex color %q", name, c)
	}

	if s.QR.Enabled {
		check(s.QR.Size > 0, "qr.size must be positive, got %d", s.QR.Size)
		check(in(s.QR.Corner, corners...), "unknown qr.corner %q", s.QR.Corner)
	}
	return errors.Join(errs...)
}

// Bold reports whether the weight selects a bold face.
func (s RenderSettings) Bold() bool {
	return s.FontWeight >= 600
}

// Extension returns the file extension matching Format.
func (s RenderSettings) Extension() string {
	switch strings.ToLower(s.Format) {
	case "jpeg", "jpg":
		return "jpg"
	case "":
		return "png"
	default:
		return strings.ToLower(s.Format)
	}
}

// ResetEffects restores every background effect to its identity value.
func (s RenderSettings) ResetEffects() RenderSettings {
	d := Default()
	s.Blur = d.Blur
	s.Brightness = d.Brightness
	s.Contrast = d.Contrast
	s.Saturation = d.Saturation
	s.Filter = d.Filter
	s.Vignette = d.Vignette
	s.Gradient = d.Gradient
	return s
}

// Resolution presets for common share targets.
var Presets = map[string][2]int{
	"instagram-square": {1080, 1080},
	"instagram-story":  {1080, 1920},
	"facebook-post":    {1200, 630},
	"twitter-card":     {1200, 675},
	"4k":               {3840, 2160},
	"hd":               {1920, 1080},
}

// ApplyPreset sets the dimensions from a named preset.
func (s RenderSettings) ApplyPreset(name string) (RenderSettings, error) {
	p, ok := Presets[name]
	if !ok {
		return s, fmt.Errorf("unknown resolution preset %q", name)
	}
	s.Width, s.Height = p[0], p[1]
	return s, nil
}

// Load reads settings from a YAML or JSON file on top of the defaults.
func Load(path string) (RenderSettings, error) {
	s := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &s)
	default:
		err = yaml.Unmarshal(b, &s)
	}
	if err != nil {
		return s, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Export is the shareable subset of the settings, grouped for display.
type Export struct {
	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
	Typography struct {
		FontFamily string  `json:"fontFamily"`
		FontSize   float64 `json:"fontSize"`
		FontWeight int     `json:"fontWeight"`
		TextColor  string  `json:"textColor"`
		TextAlign  string  `json:"textAlign"`
		LineHeight int     `json:"lineHeight"`
	} `json:"typography"`
	Effects struct {
		Blur            int    `json:"blur"`
		Brightness      int    `json:"brightness"`
		Contrast        int    `json:"contrast"`
		Saturation      int    `json:"saturation"`
		Filter          string `json:"filter"`
		Vignette        int    `json:"vignette"`
		GradientOverlay string `json:"gradientOverlay"`
	} `json:"effects"`
	Export struct {
		Format  string `json:"format"`
		Quality int    `json:"quality"`
	} `json:"export"`
}

func (s RenderSettings) Export() Export {
	var e Export
	e.Dimensions.Width = s.Width
	e.Dimensions.Height = s.Height
	e.Typography.FontFamily = s.FontFamily
	e.Typography.FontSize = s.FontSize
	e.Typography.FontWeight = s.FontWeight
	e.Typography.TextColor = s.TextColor
	e.Typography.TextAlign = s.TextAlign
	e.Typography.LineHeight = s.LineHeight
	e.Effects.Blur = s.Blur
	e.Effects.Brightness = s.Brightness
	e.Effects.Contrast = s.Contrast
	e.Effects.Saturation = s.Saturation
	e.Effects.Filter = s.Filter
	e.Effects.Vignette = s.Vignette
	e.Effects.GradientOverlay = s.Gradient
	e.Export.Format = s.Format
	e.Export.Quality = s.Quality
	return e
}

func in(v string, set ...string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func percent(v int) bool { return v >= 0 && v <= 100 }
