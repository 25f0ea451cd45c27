// Package storage contains the backend-agnostic contract for writing a cleaned
// table and a registry of sink factories. Backends register themselves from
// init; import storage/all to enable every built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecomclean/internal/table"
)

// Config selects and configures a sink.
type Config struct {
	// Kind is the registered backend name, e.g. "csv" or "sqlite".
	Kind string

	// Path and Comma configure file sinks.
	Path  string
	Comma rune

	// DSN and Table configure database sinks. Append keeps existing rows in
	// Table instead of replacing its contents.
	DSN    string
	Table  string
	Append bool
}

// Sink persists a table. Write either stores every record or fails without
// leaving a partial result behind.
type Sink interface {
	Write(ctx context.Context, t *table.Table) (int64, error)
	Close() error
}

// Factory opens a Sink for cfg.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a sink of cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
