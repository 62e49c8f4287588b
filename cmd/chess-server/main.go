package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-chess/internal/chessbuilder"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/obslog"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("chess init error", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		if err := deps.HTTP.ListenAndServe(cfg.HTTPAddr); err != nil {
			errCh <- err
		}
	}()
	if deps.Stream != nil {
		go func() {
			if err := deps.Stream.ListenAndServe(cfg.StreamAddr); err != nil {
				errCh <- err
			}
		}()
	}

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server stopped", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if deps.Stream != nil {
		if err := deps.Stream.Shutdown(ctx); err != nil {
			logger.Warn("stream shutdown", zap.Error(err))
		}
	}
	if err := deps.HTTP.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := deps.Close(); err != nil {
		logger.Warn("close backends", zap.Error(err))
	}
}
