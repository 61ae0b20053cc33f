package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kopilka/internal/amqp"
	"kopilka/internal/config"
	applog "kopilka/internal/log"
	"kopilka/internal/storage"
	"kopilka/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	cfg0 := applog.DefaultConfig()
	cfg0.Component = applog.ComponentWorker
	logger := applog.New(cfg0)
	applog.SetDefault(logger)

	logger.Info("Starting kopilka-snapshotd")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the snapshot worker")
		os.Exit(1)
	}

	// The worker reads directly from the SQLite ledger; it never publishes,
	// so no change publisher is wired in.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, nil)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshotWorker := worker.NewSnapshotWorker(repo, cfg.SnapshotDir, cfg.SnapshotInterval)

	go func() {
		err := amqpClient.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangedMessage) error {
			return snapshotWorker.HandleChangeMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			cancel()
		}
	}()

	go func() {
		if err := snapshotWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Snapshot loop failed", "error", err)
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the worker time to write its final snapshot.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
