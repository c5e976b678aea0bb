package domain

import (
	"errors"
	"strings"
)

// Record-specific validation errors
var (
	// ErrEmptyKeyword is returned when a record's keyword is empty after trimming.
	ErrEmptyKeyword = errors.New("record keyword cannot be empty")

	// ErrNoDefinitions is returned when a record has no definitions.
	ErrNoDefinitions = errors.New("record must have at least one definition")

	// ErrEmptyDefinition is returned when a definition is empty after trimming.
	ErrEmptyDefinition = errors.New("record definition cannot be empty")

	// ErrLastDefinition is returned when removing a definition would leave the
	// record without any. Delete the keyword instead.
	ErrLastDefinition = errors.New("cannot delete the only definition of a record")
)

// DefinitionSeparator separates definitions in the import text and in the
// cache file.
const DefinitionSeparator = "|"

// Record is one glossary entry: a keyword and its ordered definitions.
// Definition order is significant; appended definitions go to the end.
type Record struct {
	Keyword     string   `json:"keyword"`
	Definitions []string `json:"definitions"`
}

// NewRecord creates a Record from a keyword and definitions, trimming both.
// Returns an error if validation fails.
func NewRecord(keyword string, definitions ...string) (*Record, error) {
	record := &Record{
		Keyword:     strings.TrimSpace(keyword),
		Definitions: trimAll(definitions),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the Record has valid data.
// Returns an error if any field fails validation.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return ErrEmptyKeyword
	}

	if len(r.Definitions) == 0 {
		return ErrNoDefinitions
	}

	for _, def := range r.Definitions {
		if strings.TrimSpace(def) == "" {
			return ErrEmptyDefinition
		}
	}

	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	defs := make([]string, len(r.Definitions))
	copy(defs, r.Definitions)
	return &Record{Keyword: r.Keyword, Definitions: defs}
}

// AppendDefinitions adds definitions to the end of the list, preserving order.
func (r *Record) AppendDefinitions(definitions ...string) error {
	defs := trimAll(definitions)
	for _, def := range defs {
		if def == "" {
			return ErrEmptyDefinition
		}
	}

	r.Definitions = append(r.Definitions, defs...)
	return nil
}

// ReplaceDefinition replaces the definition at the 1-based index.
// The record is left unchanged on error.
func (r *Record) ReplaceDefinition(index int, definition string) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}

	definition = strings.TrimSpace(definition)
	if definition == "" {
		return ErrEmptyDefinition
	}

	r.Definitions[index-1] = definition
	return nil
}

// RemoveDefinition deletes the definition at the 1-based index, keeping the
// relative order of the remaining ones.
func (r *Record) RemoveDefinition(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}

	if len(r.Definitions) == 1 {
		return ErrLastDefinition
	}

	r.Definitions = append(r.Definitions[:index-1:index-1], r.Definitions[index:]...)
	return nil
}

// HasDefinitionContaining reports whether any definition contains term,
// ignoring case.
func (r *Record) HasDefinitionContaining(term string) bool {
	needle := strings.ToLower(term)
	for _, def := range r.Definitions {
		if strings.Contains(strings.ToLower(def), needle) {
			return true
		}
	}
	return false
}

func (r *Record) checkIndex(index int) error {
	if index < 1 || index > len(r.Definitions) {
		return &IndexRangeError{Index: index, Len: len(r.Definitions)}
	}
	return nil
}

// SplitDefinitions splits s on DefinitionSeparator, trims every segment and
// drops the empty ones.
func SplitDefinitions(s string) []string {
	parts := strings.Split(s, DefinitionSeparator)
	defs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			defs = append(defs, part)
		}
	}
	return defs
}

// trimAll returns a new slice with every element trimmed.
func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
