package backend

import (
	"context"

	"darkfinance/internal/amqp"
	"darkfinance/internal/records"
)

// CleanupFunc releases whatever a backend opened.
type CleanupFunc func() error

// BackendResult bundles the record store with the optional change-event client.
type BackendResult struct {
	Backend records.Backend
	// AMQP is nil when change events are disabled or the broker was unreachable.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Close runs Cleanup if one was set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory
	SeedFile      string
	DefaultUserID string

	// SQL
	SQLiteDBPath string
	PostgresDSN  string

	// Optional for every type
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
