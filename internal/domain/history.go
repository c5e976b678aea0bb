package domain

import (
	"errors"
	"fmt"
)

// SearchKind identifies how a search term was matched. The numeric values are
// the codes written to the history file.
type SearchKind int

// Possible search kinds
const (
	SearchKeyword    SearchKind = 0
	SearchDefinition SearchKind = 1
)

// Common validation errors for HistoryEntry
var (
	ErrInvalidSearchKind = errors.New("invalid search kind")
)

// HistoryEntry is one logged search query.
type HistoryEntry struct {
	Kind SearchKind `json:"kind"`
	Term string     `json:"term"`
}

// NewHistoryEntry creates a HistoryEntry.
// Returns an error if the kind is not a known SearchKind.
func NewHistoryEntry(kind SearchKind, term string) (HistoryEntry, error) {
	if !kind.Valid() {
		return HistoryEntry{}, ErrInvalidSearchKind
	}
	return HistoryEntry{Kind: kind, Term: term}, nil
}

// Valid reports whether k is a known SearchKind.
func (k SearchKind) Valid() bool {
	switch k {
	case SearchKeyword, SearchDefinition:
		return true
	default:
		return false
	}
}

// String returns the human-readable name used when printing history.
func (k SearchKind) String() string {
	switch k {
	case SearchKeyword:
		return "keyword"
	case SearchDefinition:
		return "definition"
	default:
		return fmt.Sprintf("SearchKind(%d)", int(k))
	}
}

// ParseSearchKind maps the command-line spelling of a search kind.
func ParseSearchKind(s string) (SearchKind, error) {
	switch s {
	case "key", "keyword", "k":
		return SearchKeyword, nil
	case "def", "definition", "d":
		return SearchDefinition, nil
	default:
		return 0, fmt.Errorf("%w: search kind %q", ErrUnknownOption, s)
	}
}
