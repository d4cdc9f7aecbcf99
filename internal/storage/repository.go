// Package storage contains the storage-agnostic contract for persisting run
// summaries, plus a small factory keyed by backend kind. Concrete backends
// live in subpackages and register themselves in init; importing
// storage/all (blank import) enables every built-in backend without coupling
// callers to any of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dqcheck/internal/validate"
)

// Config selects and configures a backend.
type Config struct {
	// Kind selects the registered backend ("postgres", "sqldb").
	Kind string

	// Driver names the database/sql driver for the "sqldb" kind
	// (sqlite, mssql, mysql). Ignored by backends with a fixed driver.
	Driver string

	// DSN is the backend connection string.
	DSN string

	// Table is the run-summary table. Row failures land in Table +
	// "_failures". Empty means "dq_runs".
	Table string
}

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "dq_runs"

// Repository persists run reports.
type Repository interface {
	// Save writes the report and its row failures.
	Save(ctx context.Context, rep validate.Report) error
	// Close releases the backend connection.
	Close()
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call this
// from init.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New constructs the Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
