package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/provider"
	"kopilka/internal/provider/file"
	"kopilka/internal/provider/rest"
	"kopilka/internal/storage"
)

// Factory creates providers based on configuration.
type Factory interface {
	CreateProvider(ctx context.Context, config Config) (*provider.Result, error)
}

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

func (f *DefaultFactory) CreateProvider(ctx context.Context, config Config) (*provider.Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteProvider(config)
	case FileBackend:
		return f.createFileProvider(config)
	case RESTBackend:
		return f.createRESTProvider(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteProvider(config Config) (*provider.Result, error) {
	// AMQP is optional: without it the repository simply skips change
	// notifications.
	var publisher storage.ChangePublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, publisher)
	if err != nil {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	cleanup := func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}

	return &provider.Result{
		Provider: repo,
		Cleanup:  cleanup,
	}, nil
}

func (f *DefaultFactory) createFileProvider(config Config) (*provider.Result, error) {
	store, err := file.New(config.LedgerFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.Info("Initialized file backend", "path", config.LedgerFilePath)

	return &provider.Result{
		Provider: store,
		Cleanup:  nil,
	}, nil
}

func (f *DefaultFactory) createRESTProvider(config Config) (*provider.Result, error) {
	client, err := rest.NewClient(config.RemoteAPIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}

	f.logger.Info("Initialized REST backend", "base_url", config.RemoteAPIURL)

	return &provider.Result{
		Provider: client,
		Cleanup:  nil,
	}, nil
}
