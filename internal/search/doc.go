// Package search implements glossary queries: exact keyword lookup, substring
// lookup in definitions, fuzzy keyword suggestions, and the search history log
// that records which queries were made.
package search
