package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the terminal outcome of one runner invocation.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "Success"
	ExecutionStatusError   ExecutionStatus = "Error"
)

// ExecutionRecord is one entry in the execution ledger. It is created at the
// start of a run, progressively filled, and appended exactly once at the end
// of the run. It is never mutated after the append.
type ExecutionRecord struct {
	ID        string          `json:"id"`
	Flow      string          `json:"flow"`
	Status    ExecutionStatus `json:"status"`
	Input     json.RawMessage `json:"input"`
	Output    string          `json:"output"`
	Error     string          `json:"error"`
	StartTime string          `json:"startTime"`
	Duration  float64         `json:"duration"`

	startedAt time.Time
}

// NewExecutionRecord mints an execution identity for a run of the named flow.
func NewExecutionRecord(flow string, input json.RawMessage) *ExecutionRecord {
	now := time.Now().UTC()
	return &ExecutionRecord{
		ID:        uuid.NewString(),
		Flow:      flow,
		Input:     input,
		StartTime: now.Format(time.RFC3339Nano),
		startedAt: now,
	}
}

// StartedAt returns the recorded start instant.
func (r *ExecutionRecord) StartedAt() time.Time {
	return r.startedAt
}

// Complete marks the record as successful with the generated output.
func (r *ExecutionRecord) Complete(output string) {
	r.Status = ExecutionStatusSuccess
	r.Output = output
	r.Error = ""
	r.Duration = time.Since(r.startedAt).Seconds()
}

// Fail marks the record as failed with the error message.
func (r *ExecutionRecord) Fail(err error) {
	r.Status = ExecutionStatusError
	r.Output = ""
	r.Error = ErrorMessage(err)
	r.Duration = time.Since(r.startedAt).Seconds()
}

// JSON serializes the record as a single machine-readable line.
func (r *ExecutionRecord) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Records are plain data; marshaling only fails on invalid Input.
		fallback := ExecutionRecord{
			ID:        r.ID,
			Flow:      r.Flow,
			Status:    r.Status,
			Output:    r.Output,
			Error:     r.Error,
			StartTime: r.StartTime,
			Duration:  r.Duration,
		}
		data, _ = json.Marshal(fallback)
	}
	return string(data)
}
