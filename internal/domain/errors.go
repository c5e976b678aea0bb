// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrIO is returned when a glossary or history file cannot be read or written.
	// The in-memory glossary is left untouched when this is returned.
	ErrIO = errors.New("i/o failure")

	// ErrMalformedRecord is returned for an input line that cannot become part
	// of a record, such as a continuation line before any keyword line.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidIndex is returned when a 1-based definition index is outside
	// the range of the record's definitions, or is not a number at all.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrUnknownOption is returned when an answer to a prompt is not one of the
	// accepted options.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnknownCommand is returned when an interactive command is not recognized.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned when a command is missing a required argument.
	ErrMissingArgument = errors.New("missing argument")

	// ErrEmptyStore is returned by operations that need at least one record.
	ErrEmptyStore = errors.New("glossary is empty")
)

// LineError describes a single input line that was skipped while reading a
// glossary, cache or history file.
type LineError struct {
	Line   int    // 1-based line number in the source
	Text   string // the raw line
	Reason string // why the line was skipped
	Err    error  // sentinel, usually ErrMalformedRecord
}

// Error implements the error interface for LineError.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *LineError) Unwrap() error {
	return e.Err
}

// NewLineError creates a LineError wrapping ErrMalformedRecord.
func NewLineError(line int, text, reason string) *LineError {
	return &LineError{
		Line:   line,
		Text:   text,
		Reason: reason,
		Err:    ErrMalformedRecord,
	}
}

// IndexRangeError reports a definition index outside [1, Len].
type IndexRangeError struct {
	Index int
	Len   int
}

// Error implements the error interface for IndexRangeError.
func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("%v: %d, the possible range is [1,%d]", ErrInvalidIndex, e.Index, e.Len)
}

// Unwrap returns ErrInvalidIndex.
func (e *IndexRangeError) Unwrap() error {
	return ErrInvalidIndex
}
