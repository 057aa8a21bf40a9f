package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	go func() {
		if err := application.Server.Run(); err != nil {
			log.Error("http server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", sl.Err(err))
	}
}
