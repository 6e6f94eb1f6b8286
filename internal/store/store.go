// Package store persists SummaryRecord history and per-run snapshot files.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/seedradar/pkg/trend"
)

var (
	// ErrNoHistory means no history has been recorded yet.
	ErrNoHistory = errors.New("no history")
	// ErrCorrupt means stored history could not be read back.
	ErrCorrupt = errors.New("corrupt history")
)

// History is the durable, append-only SummaryRecord store.
type History interface {
	// Append adds records after all existing ones. Existing records are never rewritten.
	Append(ctx context.Context, records []trend.Record) error
	// Load returns every record in append order.
	Load(ctx context.Context) ([]trend.Record, error)
	// Reset discards all history. Used to recover from ErrCorrupt.
	Reset(ctx context.Context) error
	Close() error
}

// Backends.
const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open returns the History for backend. For csv and sqlite, target is a file
// path; for postgres it is a connection URL.
func Open(backend, target string) (History, error) {
	switch backend {
	case BackendCSV, "":
		return NewCSVHistory(target), nil
	case BackendSQLite, BackendPostgres:
		return NewSQLStore(backend, target)
	}
	return nil, fmt.Errorf("unknown history backend %q", backend)
}
