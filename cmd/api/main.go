package main

import (
	"context"
	"errors"
	"net/http"
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

	baseLogger := logging.NewJSON(cfg.LogLevel, cfg.ServiceName)
	logger, shutdownBetterStack, err := observability.InitBetterStackLogger(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("init betterstack", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	telemetry, err := observability.Start(context.Background(), cfg, logger, observability.Options{Pprof: true})
	if err != nil {
		logger.Error("start telemetry", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, closeDeps, err := app.NewHTTPServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := closeDeps(); err != nil {
		logger.Error("close dependencies", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown telemetry", "error", err)
	}

	logger.Info("http server stopped")
	if err := shutdownBetterStack(shutdownCtx); err != nil {
		baseLogger.Error("shutdown betterstack", "error", err)
	}
	os.Exit(exitCode)
}
