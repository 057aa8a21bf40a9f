package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"listing_analytics/internal/app"
	"listing_analytics/internal/config"
	"listing_analytics/internal/lib/logger"
	"listing_analytics/internal/lib/logger/sl"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("failed to build application", sl.Err(err))
		os.Exit(1)
	}
	defer application.Close()

	files, err := application.Export.Run(ctx)
	if err != nil {
		log.Error("export failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("export finished", slog.Any("files", files))
}
