package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Encoding   string `envconfig:"LOG_ENCODING" default:"json"`
	OutputPath string `envconfig:"LOG_OUTPUT"`
}

type StorageConfig struct {
	CacheSize    int    `envconfig:"QC_CACHE_SIZE" default:"10"`
	FontDir      string `envconfig:"QC_FONT_DIR"`
	QuotesPath   string `envconfig:"QC_QUOTES_PATH"`
	PrefsPath    string `envconfig:"QC_PREFS_PATH" default:"quotecanvas-prefs.json"`
	SettingsPath string `envconfig:"QC_SETTINGS_PATH"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Storage.CacheSize <= 0 {
		return nil, fmt.Errorf("QC_CACHE_SIZE must be positive, got %d", cfg.Storage.CacheSize)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
