package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/youruser/quotecanvas/internal/api"
	"github.com/youruser/quotecanvas/internal/app"
	"github.com/youruser/quotecanvas/internal/config"
	"github.com/youruser/quotecanvas/internal/logger"
	"github.com/youruser/quotecanvas/internal/settings"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: cfg.Log.OutputPath,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load quotes, fonts and settings at startup (quotes best-effort)
	sess, err := app.NewSession(cfg, log)
	if err != nil {
		log.Fatal("Failed to build session", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)
	h := api.NewHandler(ctx, sess, settings.NewPrefsStore(cfg.Storage.PrefsPath), log)
	if err := api.Serve(ctx, cfg.Addr(), api.NewRouter(h, log), log); err != nil {
		log.Fatal("HTTP server error", zap.Error(err))
	}
}
