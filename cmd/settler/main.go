package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/app"
	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/observability"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	cfg.ServiceName = cfg.ServiceName + "-settler"

	baseLogger := logging.NewJSON(cfg.LogLevel, cfg.ServiceName)
	logger, shutdownBetterStack, err := observability.InitBetterStackLogger(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("init betterstack", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	telemetry, err := observability.Start(context.Background(), cfg, logger, observability.Options{})
	if err != nil {
		logger.Error("start telemetry", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settler, err := app.NewSettler(ctx, cfg, logger)
	if err != nil {
		logger.Error("build settler", "error", err)
		os.Exit(1)
	}

	logger.Info("settler starting", "livefeed_url", cfg.LiveFeedURL)
	if err := settler.Run(ctx); err != nil {
		logger.Error("settler stopped with error", "error", err)
	}
	if err := settler.Close(); err != nil {
		logger.Error("close dependencies", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown telemetry", "error", err)
	}
	logger.Info("settler stopped")
	if err := shutdownBetterStack(shutdownCtx); err != nil {
		baseLogger.Error("shutdown betterstack", "error", err)
	}
}
