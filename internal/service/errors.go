// Package service provides the application service that owns an open glossary.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/glossary/internal/store"
)

// Common service errors - sentinel errors callers check with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in GlossaryServiceError
// 3. File failures keep domain.ErrIO in the chain
// 4. The CLI maps errors to console messages and exit codes
var (
	// ErrNotOpen indicates an operation that needs an open glossary was
	// called before Open succeeded.
	ErrNotOpen = errors.New("no glossary is open")

	// ErrRecordNotFound indicates that no record has the requested keyword.
	ErrRecordNotFound = errors.New("keyword not found")

	// ErrNoImportSource indicates that Reset has no raw import file to read,
	// because the glossary was opened from its cache file directly or the
	// import file is gone.
	ErrNoImportSource = errors.New("no import file to reset from")
)

// GlossaryServiceError wraps errors from the glossary service with context.
type GlossaryServiceError struct {
	// Operation is the operation that failed (e.g., "open", "save")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GlossaryServiceError.
func (e *GlossaryServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("glossary %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("glossary %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GlossaryServiceError) Unwrap() error {
	return e.Err
}

// NewGlossaryServiceError creates a new GlossaryServiceError.
// It returns known sentinel errors directly without wrapping.
func NewGlossaryServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrNoImportSource):
		return err
	case errors.Is(err, ErrRecordNotFound), store.IsNotFoundError(err):
		return ErrRecordNotFound
	}

	return &GlossaryServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
