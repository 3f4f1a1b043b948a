package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const debugLogName = "debug.log"

// Trace is the auxiliary file diagnostics sink: a rolling debug trace plus
// one log file per execution under a fixed logs directory. Every write is
// best-effort; a failed write falls back to stderr and never affects the
// correctness of the ledger.
type Trace struct {
	dir string
	mu  sync.Mutex
}

// NewTrace creates the logs directory and returns a trace bound to it. The
// directory is made world-writable so container entrypoints running under
// different UIDs can share it.
func NewTrace(dir string) *Trace {
	t := &Trace{dir: dir}
	if dir == "" {
		return t
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		fmt.Fprintf(os.Stderr, "trace: creating logs directory: %v\n", err)
		t.dir = ""
		return t
	}
	if err := os.Chmod(dir, 0o777); err != nil {
		fmt.Fprintf(os.Stderr, "trace: chmod logs directory: %v\n", err)
	}
	return t
}

// NewNopTrace returns a trace that writes nowhere.
func NewNopTrace() *Trace {
	return &Trace{}
}

// Dir returns the logs directory, or "" when tracing is disabled.
func (t *Trace) Dir() string {
	return t.dir
}

// Debugf appends a timestamped line to the debug trace file.
func (t *Trace) Debugf(format string, args ...any) {
	if t.dir == "" {
		return
	}
	line := fmt.Sprintf("%s - %s\n", time.Now().UTC().Format(time.RFC3339Nano),
		fmt.Sprintf(format, args...))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendFile(filepath.Join(t.dir, debugLogName), line)
}

// ExecutionLog returns the per-execution log writer for the given id.
func (t *Trace) ExecutionLog(executionID string) *ExecutionLog {
	if t.dir == "" {
		return &ExecutionLog{}
	}
	return &ExecutionLog{path: filepath.Join(t.dir, executionID+".log")}
}

func (t *Trace) appendFile(path, line string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
		fmt.Fprint(os.Stderr, line)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
	}
}

// ExecutionLog writes the free-form per-execution diagnostic file.
type ExecutionLog struct {
	path string
	mu   sync.Mutex
}

// Logf appends one line to the execution log.
func (e *ExecutionLog) Logf(format string, args ...any) {
	if e.path == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, format+"\n", args...); err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
	}
}

// Path returns the execution log file path, or "" when disabled.
func (e *ExecutionLog) Path() string {
	return e.path
}
