package backend

import (
	"context"
	"errors"
	"fmt"

	"haushalt/internal/amqp"
	"haushalt/internal/core"
	"haushalt/internal/log"
	"haushalt/internal/services"
	"haushalt/internal/storage"
	"haushalt/internal/store"
	"haushalt/internal/store/memory"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
	dial   func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend opens the database, connects the optional publisher and
// builds one resource service per kind.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var db store.Database
	switch config.Type {
	case SQLiteBackend:
		sqliteDB, err := storage.NewSQLiteDatabase(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite database: %w", err)
		}
		db = sqliteDB
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		db = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// A typed nil *amqp.Client must not reach the services as a Publisher.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without publishing", log.FieldError, err)
		} else {
			amqpClient, publisher = client, client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svcs := make([]*services.ResourceService, 0, len(core.Kinds))
	for _, kind := range core.Kinds {
		svcs = append(svcs, services.NewResourceService(kind, db, publisher, f.logger))
	}

	return &BackendResult{
		Database:   db,
		Services:   svcs,
		Publishing: publisher != nil,
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				errs = append(errs, amqpClient.Close())
			}
			errs = append(errs, db.Close())
			return errors.Join(errs...)
		},
	}, nil
}
