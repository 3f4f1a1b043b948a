package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var ledgerMigrationV1 string

// SQLiteLedger implements ExecutionLedger over a SQLite database. Unlike the
// JSON backend it appends a row per execution instead of rewriting the whole
// history, and SQLite's own locking serializes concurrent writers.
type SQLiteLedger struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteLedger opens (or creates) the ledger database at dbPath.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	l := &SQLiteLedger{dbPath: dbPath, db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running ledger migrations: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) migrate() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS ledger_schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM ledger_schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	migrations := []string{ledgerMigrationV1}
	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		tx, err := l.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}
		for _, stmt := range splitStatements(migration) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("applying migration %d: %w", version, err)
			}
		}
		if _, err := tx.Exec(
			"INSERT INTO ledger_schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
			version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// splitStatements splits a migration script into individual statements,
// dropping comment-only lines.
func splitStatements(script string) []string {
	var stmts []string
	for _, chunk := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// Append inserts one execution row.
func (l *SQLiteLedger) Append(ctx context.Context, record *core.ExecutionRecord) error {
	if record == nil {
		return core.ErrLedger("nil execution record")
	}

	input := "null"
	if len(record.Input) > 0 {
		input = string(record.Input)
	}

	_, err := l.db.ExecContext(ctx, `INSERT INTO executions
		(id, flow, status, input, output, error, start_time, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Flow, string(record.Status), input,
		record.Output, record.Error, record.StartTime, record.Duration)
	if err != nil {
		return core.ErrLedger("inserting execution record").WithCause(err)
	}
	return nil
}

// List returns all records in append order.
func (l *SQLiteLedger) List(ctx context.Context) ([]core.ExecutionRecord, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id, flow, status, input, output, error,
		start_time, duration FROM executions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var records []core.ExecutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating executions: %w", err)
	}
	if records == nil {
		records = []core.ExecutionRecord{}
	}
	return records, nil
}

// Get returns the record with the given execution id.
func (l *SQLiteLedger) Get(ctx context.Context, id string) (*core.ExecutionRecord, error) {
	row := l.db.QueryRowContext(ctx, `SELECT id, flow, status, input, output, error,
		start_time, duration FROM executions WHERE id = ?`, id)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound("execution", id)
		}
		return nil, err
	}
	return rec, nil
}

func scanRecord(scan func(dest ...any) error) (*core.ExecutionRecord, error) {
	var rec core.ExecutionRecord
	var status, input string
	if err := scan(&rec.ID, &rec.Flow, &status, &input, &rec.Output, &rec.Error,
		&rec.StartTime, &rec.Duration); err != nil {
		return nil, err
	}
	rec.Status = core.ExecutionStatus(status)
	if input != "" && input != "null" {
		rec.Input = json.RawMessage(input)
	}
	return &rec, nil
}

// Close releases the database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// Verify interface compliance.
var _ core.ExecutionLedger = (*SQLiteLedger)(nil)
