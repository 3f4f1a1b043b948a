package core

import "context"

// Generator produces text from a resolved prompt via an external backend.
type Generator interface {
	// Generate issues a single synchronous generation request. No retries
	// are performed; a failure is terminal for the invocation.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExecutionLedger is the durable history of runner invocations.
//
// Append must leave the store syntactically valid after every successful
// call. The ledger assumes a single writer per store; callers are
// responsible for serializing concurrent invocations.
type ExecutionLedger interface {
	Append(ctx context.Context, record *ExecutionRecord) error
	List(ctx context.Context) ([]ExecutionRecord, error)
	Get(ctx context.Context, id string) (*ExecutionRecord, error)
}
