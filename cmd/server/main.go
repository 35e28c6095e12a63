// Package main is the entry point for the Quill local server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/analytics"
	"github.com/quillvault/quill/internal/config"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/logging"
	"github.com/quillvault/quill/internal/server"
	"github.com/quillvault/quill/internal/storage"
	"github.com/quillvault/quill/internal/store"
	"github.com/quillvault/quill/internal/vault"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	logger.Info("starting quill server",
		"version", version,
		"addr", cfg.Addr(),
		"data_dir", cfg.Data.Dir,
	)

	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	boltStore, err := store.NewBoltStore(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open journal database: %w", err)
	}
	defer func() {
		if err := boltStore.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	v := vault.New(boltStore)
	journalStore := journal.NewStore(storage.New(v), cfg.Journal.HistoryLimit)

	runtime := analysis.NewHTTPRuntime(cfg.Analysis.Endpoint, cfg.Analysis.Timeout, logger)
	pipeline := analysis.New(runtime,
		analysis.WithLocale(cfg.Journal.Locale),
		analysis.WithLogger(logger),
	)

	deps := &server.Dependencies{
		Vault:    v,
		Journal:  journalStore,
		Pipeline: pipeline,
		Logger:   logger,
	}
	if cfg.Analytics.Enabled {
		deps.Tracker = analytics.NewTracker(logger,
			analytics.NewHTTPSink(cfg.Analytics.Endpoint, logger),
			analytics.NewStoreSink(boltStore, logger),
		)
	}

	router := server.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("server listening", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled")
	}

	// Seal protected data before going away.
	v.Lock()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
