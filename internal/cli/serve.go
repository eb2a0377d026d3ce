package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/youruser/quotecanvas/internal/api"
	"github.com/youruser/quotecanvas/internal/app"
	"github.com/youruser/quotecanvas/internal/settings"
)

func newServeCmd(e *env) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Start server on PORT (default 8080)
  quotecanvas serve

  # Start server on custom port
  quotecanvas serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				e.cfg.Server.Port = port
			}
			sess, err := app.NewSession(e.cfg, e.log)
			if err != nil {
				return err
			}
			gin.SetMode(e.cfg.Server.GinMode)
			ctx := cmd.Context()
			h := api.NewHandler(ctx, sess, settings.NewPrefsStore(e.cfg.Storage.PrefsPath), e.log)
			return api.Serve(ctx, e.cfg.Addr(), api.NewRouter(h, e.log), e.log)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
