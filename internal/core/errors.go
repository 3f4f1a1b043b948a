package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatNotFound   ErrorCategory = "not_found"  // Workflow or input file missing
	ErrCatParse      ErrorCategory = "parse"      // Malformed JSON
	ErrCatSchema     ErrorCategory = "schema"     // Structurally wrong workflow shape
	ErrCatResolution ErrorCategory = "resolution" // No usable prompt template in the workflow
	ErrCatBackend    ErrorCategory = "backend"    // Generation backend failure
	ErrCatUsage      ErrorCategory = "usage"      // Wrong invocation
	ErrCatState      ErrorCategory = "state"      // Ledger/storage failure
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// Predefined error codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidJSON        = "INVALID_JSON"
	CodeInvalidSchema      = "INVALID_SCHEMA"
	CodeNoMatchingNode     = "NO_MATCHING_NODE"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeBackendError       = "BACKEND_ERROR"
	CodeUsageError         = "USAGE_ERROR"
	CodeLedgerWrite        = "LEDGER_WRITE_FAILED"
)

// DomainError represents a structured error from the runner's domain layer.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
	Details  map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrNotFound creates a not found error for a missing file.
func ErrNotFound(resource, path string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeNotFound,
		Message:  fmt.Sprintf("%s not found: %s", resource, path),
	}
}

// ErrInvalidJSON creates a parse error.
func ErrInvalidJSON(message string) *DomainError {
	return &DomainError{
		Category: ErrCatParse,
		Code:     CodeInvalidJSON,
		Message:  message,
	}
}

// ErrInvalidSchema creates a workflow schema error.
func ErrInvalidSchema(message string) *DomainError {
	return &DomainError{
		Category: ErrCatSchema,
		Code:     CodeInvalidSchema,
		Message:  message,
	}
}

// ErrNoMatchingNode creates a resolution error.
func ErrNoMatchingNode(message string) *DomainError {
	return &DomainError{
		Category: ErrCatResolution,
		Code:     CodeNoMatchingNode,
		Message:  message,
	}
}

// ErrBackendUnavailable creates a transport-level backend error.
func ErrBackendUnavailable(message string) *DomainError {
	return &DomainError{
		Category: ErrCatBackend,
		Code:     CodeBackendUnavailable,
		Message:  message,
	}
}

// ErrBackendError creates an error for a non-2xx backend response.
func ErrBackendError(status int, body string) *DomainError {
	return &DomainError{
		Category: ErrCatBackend,
		Code:     CodeBackendError,
		Message:  fmt.Sprintf("generation request failed: %d - %s", status, body),
		Details: map[string]interface{}{
			"status_code": status,
			"body":        body,
		},
	}
}

// ErrUsage creates an invocation error.
func ErrUsage(message string) *DomainError {
	return &DomainError{
		Category: ErrCatUsage,
		Code:     CodeUsageError,
		Message:  message,
	}
}

// ErrLedger creates a ledger persistence error.
func ErrLedger(message string) *DomainError {
	return &DomainError{
		Category: ErrCatState,
		Code:     CodeLedgerWrite,
		Message:  message,
	}
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code string) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == code
	}
	return false
}

// ErrorMessage returns the message recorded in an ExecutionRecord.
// Domain errors contribute their message only; the category/code prefix
// stays in diagnostics.
func ErrorMessage(err error) string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		if domErr.Cause != nil {
			return fmt.Sprintf("%s: %v", domErr.Message, domErr.Cause)
		}
		return domErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
