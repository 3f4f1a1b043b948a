package ledger

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

// Backend names accepted by the factory.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// New creates an ExecutionLedger for the configured backend. The JSON
// backend is the default and matches the reference executions.json format;
// SQLite is the opt-in alternative for callers that need concurrent-safe
// appends.
func New(backend, path string) (core.ExecutionLedger, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONLedger(path), nil
	case BackendSQLite:
		// Ensure a .db extension for the SQLite file.
		if !strings.HasSuffix(path, ".db") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
		}
		return NewSQLiteLedger(path)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q (want %s or %s)",
			backend, BackendJSON, BackendSQLite)
	}
}

// Closeable is an optional interface for ledgers that need cleanup.
type Closeable interface {
	Close() error
}

// Close safely closes a ledger if it holds resources.
func Close(l core.ExecutionLedger) error {
	if closeable, ok := l.(Closeable); ok {
		return closeable.Close()
	}
	return nil
}
