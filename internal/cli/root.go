// Package cli implements the quotecanvas command line.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/youruser/quotecanvas/internal/config"
	"github.com/youruser/quotecanvas/internal/logger"
	"go.uber.org/zap"
)

// env is filled in before any subcommand runs.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	logLevel string
}

func NewRootCmd() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:   "quotecanvas",
		Short: "Render quotes onto background images",
		Long: `quotecanvas renders text quotes onto background images with filters,
gradients, shadows and typography settings.

It can render a single preview, generate a whole batch into a directory or
zip archive, or serve the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if e.logLevel != "" {
				level = e.logLevel
			}
			log, err := logger.New(logger.Config{Level: level, Encoding: "console", OutputPath: "stderr"})
			if err != nil {
				return err
			}
			e.cfg, e.log = cfg, log
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(newGenerateCmd(e))
	cmd.AddCommand(newPreviewCmd(e))
	cmd.AddCommand(newServeCmd(e))

	return cmd
}
