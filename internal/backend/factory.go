package backend

import (
	"context"
	"errors"
	"fmt"

	"darkfinance/internal/amqp"
	"darkfinance/internal/log"
	"darkfinance/internal/records/memory"
	"darkfinance/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured store and, when AMQP_URL is set, the
// change-event client. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	case SQLiteBackend:
		result, err = f.createSQLBackend(storage.DialectSQLite, config.SQLiteDBPath)
	case PostgresBackend:
		result, err = f.createSQLBackend(storage.DialectPostgres, config.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		f.attachAMQP(ctx, result, config)
	}
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend", "seeded", false)
		return &BackendResult{Backend: memory.New()}, nil
	}

	store, err := memory.NewFromFile(config.SeedFile, config.DefaultUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seeded", true, "seed_file", config.SeedFile)
	return &BackendResult{Backend: store}, nil
}

func (f *DefaultFactory) createSQLBackend(dialect storage.Dialect, dsn string) (*BackendResult, error) {
	var (
		repo *storage.SQLRepository
		err  error
	)
	if dialect == storage.DialectPostgres {
		repo, err = storage.NewPostgresRepository(dsn)
	} else {
		repo, err = storage.NewSQLiteRepository(dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", dialect, err)
	}

	f.logger.Info("Initialized SQL backend", "dialect", string(dialect))
	return &BackendResult{Backend: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) attachAMQP(ctx context.Context, result *BackendResult, config Config) {
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)

	result.AMQP = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
