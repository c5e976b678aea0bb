// Package store holds the live glossary: the in-memory collection of records,
// ordered by keyword for listing and by insertion for sampling. It is owned by a
// single application service and is not safe for concurrent use. Persistence
// is handled separately by the platform/csvfile repository.
package store
