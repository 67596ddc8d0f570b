package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"happydash/internal/config"
	"happydash/internal/container"
	"happydash/internal/logging"
	"happydash/ui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(appConfig.Logging.Level, appConfig.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Fatal("failed to create application container", zap.Error(err))
	}
	defer func() { _ = appContainer.Shutdown(context.Background()) }()

	if err := appContainer.Init(ctx); err != nil {
		logger.Fatal("failed to initialize data source", zap.Error(err))
	}

	// Warm the cache; a failure here is shown on the page and retried on the next request
	if _, err := appContainer.Dashboard.Raw(ctx); err != nil {
		logger.Warn("initial dataset load failed", zap.Error(err))
	}

	server, err := ui.NewServer(appContainer.Dashboard, appContainer.Loader, ui.Options{
		Title:     appConfig.Dashboard.Title,
		IntroFile: appConfig.Dashboard.IntroFile,
		GinMode:   appConfig.Server.GinMode,
	}, logger.Named("ui"))
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		ops := &http.Server{
			Addr:              ":" + appConfig.Profiling.Port,
			Handler:           ui.NewOpsRouter(appContainer.Loader, time.Now()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("ops server listening", zap.String("addr", ops.Addr))
			if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("ops server failed", zap.Error(err))
			}
		}()
		defer func() { _ = ops.Close() }()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
