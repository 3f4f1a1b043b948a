// Package ledger provides the durable execution history backends.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

// JSONLedger implements ExecutionLedger over a single JSON array file.
//
// Appends are read-modify-rewrite: the existing array is read, the new
// record appended, and the whole file rewritten atomically. The file is
// always a syntactically valid JSON array after a successful Append. A file
// that fails to parse is treated as empty on the next Append; the corrupt
// content is discarded, not surfaced as an error.
//
// There is no cross-process locking: concurrent invocations against the
// same file can lose records (last writer wins). Callers must serialize
// invocations externally.
type JSONLedger struct {
	path string
}

// NewJSONLedger creates a ledger backed by the JSON array file at path.
func NewJSONLedger(path string) *JSONLedger {
	return &JSONLedger{path: path}
}

// Path returns the ledger file path.
func (l *JSONLedger) Path() string {
	return l.path
}

// Append adds one record to the ledger file, creating it if needed.
func (l *JSONLedger) Append(_ context.Context, record *core.ExecutionRecord) error {
	if record == nil {
		return core.ErrLedger("nil execution record")
	}

	records := l.readTolerant()
	records = append(records, *record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return core.ErrLedger("marshaling execution records").WithCause(err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return core.ErrLedger("creating ledger directory").WithCause(err)
		}
	}
	if err := atomicWriteFile(l.path, data, 0o644); err != nil {
		return core.ErrLedger(fmt.Sprintf("writing ledger file %s", l.path)).WithCause(err)
	}
	return nil
}

// List returns all records in append order.
func (l *JSONLedger) List(_ context.Context) ([]core.ExecutionRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.ExecutionRecord{}, nil
		}
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var records []core.ExecutionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, core.ErrInvalidJSON(
			fmt.Sprintf("ledger file %s is not a valid JSON array", l.path)).WithCause(err)
	}
	return records, nil
}

// Get returns the record with the given execution id.
func (l *JSONLedger) Get(ctx context.Context, id string) (*core.ExecutionRecord, error) {
	records, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, core.ErrNotFound("execution", id)
}

// readTolerant reads the current array, treating a missing or unparseable
// file as empty. This is the defined recovery policy for Append, not an
// error path.
func (l *JSONLedger) readTolerant() []core.ExecutionRecord {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return []core.ExecutionRecord{}
	}
	var records []core.ExecutionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return []core.ExecutionRecord{}
	}
	return records
}

// Verify interface compliance.
var _ core.ExecutionLedger = (*JSONLedger)(nil)
