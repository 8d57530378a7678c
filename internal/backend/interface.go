package backend

import (
	"context"

	"haushalt/internal/services"
	"haushalt/internal/store"
)

// CleanupFunc releases the resources of a backend.
type CleanupFunc func() error

// BackendResult is everything the API server needs to serve requests.
type BackendResult struct {
	Database store.Database
	// Services holds one resource service per kind, in core.Kinds order.
	Services []*services.ResourceService
	// Publishing reports whether changes are published on AMQP.
	Publishing bool
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional change publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
