package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Serubin/AJD-Site/backend/internal/router"
	"github.com/Serubin/AJD-Site/backend/internal/setup"
	"github.com/Serubin/AJD-Site/shared/config"
	"github.com/Serubin/AJD-Site/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.App.LogLevel, !cfg.App.IsDevelopment())
	for _, problem := range cfg.Validate() {
		logger.Log.Warn("config", "problem", problem)
	}

	if err := run(cfg); err != nil {
		logger.Log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := setup.SetupDependencies(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Log.Error("failed to close dependencies", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serverErrors := make(chan error, 1)

	go func() {
		logger.Log.Info("server starting", "port", cfg.App.Port, "env", cfg.App.Env, "store", cfg.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logger.Log.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Log.Info("server stopped gracefully")
	}
	return nil
}
