package store

import (
	"slices"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

const entityRecord = "record"

// RecordStore is the in-memory glossary. Keywords are unique by exact match.
// Records are listed in lexicographic keyword order and addressed for sampling
// by dense insertion ids in [0, Size()).
//
// Every read returns a copy; callers mutate through the store's methods so the
// dirty flag stays accurate.
type RecordStore struct {
	records map[string]*domain.Record
	keys    []string // sorted keywords
	order   []string // keywords in insertion order
	dirty   bool
}

// NewRecordStore creates an empty, clean store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]*domain.Record),
	}
}

// Load replaces the store content with records, in order, and leaves the store
// clean. A later record with an existing keyword replaces the earlier one in
// place. On error the store is left unchanged.
func (s *RecordStore) Load(records []*domain.Record) error {
	next := NewRecordStore()
	for _, record := range records {
		if err := next.put(record); err != nil {
			return err
		}
	}

	s.records = next.records
	s.keys = next.keys
	s.order = next.order
	s.dirty = false
	return nil
}

// Get returns the record with exactly this keyword.
// Returns ErrRecordNotFound if there is none.
func (s *RecordStore) Get(keyword string) (*domain.Record, error) {
	record, ok := s.records[keyword]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return record.Clone(), nil
}

// Contains reports whether a record has exactly this keyword.
func (s *RecordStore) Contains(keyword string) bool {
	_, ok := s.records[keyword]
	return ok
}

// GetFold returns every record whose keyword equals keyword under Unicode
// case folding, in keyword order. The result is empty, never nil, when nothing
// matches.
func (s *RecordStore) GetFold(keyword string) []*domain.Record {
	return s.Filter(func(r *domain.Record) bool {
		return strings.EqualFold(r.Keyword, keyword)
	})
}

// Filter returns copies of the records accepted by match, in keyword order.
func (s *RecordStore) Filter(match func(*domain.Record) bool) []*domain.Record {
	out := make([]*domain.Record, 0)
	for _, key := range s.keys {
		record := s.records[key]
		if match(record) {
			out = append(out, record.Clone())
		}
	}
	return out
}

// Put inserts the record, or replaces the record with the same keyword while
// keeping its insertion id. Marks the store dirty.
func (s *RecordStore) Put(record *domain.Record) error {
	if err := s.put(record); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *RecordStore) put(record *domain.Record) error {
	if record == nil {
		return NewStoreError(entityRecord, "put", "record is nil", ErrInvalidEntity)
	}
	if err := record.Validate(); err != nil {
		return NewStoreError(entityRecord, "put", "invalid record", err)
	}

	stored := record.Clone()
	if _, exists := s.records[stored.Keyword]; !exists {
		pos, _ := slices.BinarySearch(s.keys, stored.Keyword)
		s.keys = slices.Insert(s.keys, pos, stored.Keyword)
		s.order = append(s.order, stored.Keyword)
	}
	s.records[stored.Keyword] = stored
	return nil
}

// ReplaceDefinitions swaps the whole definition list of an existing record.
// Marks the store dirty.
func (s *RecordStore) ReplaceDefinitions(keyword string, definitions []string) error {
	if !s.Contains(keyword) {
		return NewStoreError(entityRecord, "replace", keyword, ErrRecordNotFound)
	}

	record, err := domain.NewRecord(keyword, definitions...)
	if err != nil {
		return NewStoreError(entityRecord, "replace", "invalid definitions", err)
	}

	s.records[keyword] = record
	s.dirty = true
	return nil
}

// AppendDefinitions adds definitions to the end of an existing record.
// Marks the store dirty.
func (s *RecordStore) AppendDefinitions(keyword string, definitions ...string) error {
	current, ok := s.records[keyword]
	if !ok {
		return NewStoreError(entityRecord, "append", keyword, ErrRecordNotFound)
	}

	updated := current.Clone()
	if err := updated.AppendDefinitions(definitions...); err != nil {
		return NewStoreError(entityRecord, "append", "invalid definitions", err)
	}

	s.records[keyword] = updated
	s.dirty = true
	return nil
}

// Remove deletes the record. Insertion ids of later records shift down by one.
// Marks the store dirty.
func (s *RecordStore) Remove(keyword string) error {
	if !s.Contains(keyword) {
		return NewStoreError(entityRecord, "remove", keyword, ErrRecordNotFound)
	}

	delete(s.records, keyword)
	if pos, found := slices.BinarySearch(s.keys, keyword); found {
		s.keys = slices.Delete(s.keys, pos, pos+1)
	}
	if pos := slices.Index(s.order, keyword); pos >= 0 {
		s.order = slices.Delete(s.order, pos, pos+1)
	}
	s.dirty = true
	return nil
}

// All returns copies of every record in keyword order.
func (s *RecordStore) All() []*domain.Record {
	return s.Filter(func(*domain.Record) bool { return true })
}

// Keywords returns every keyword in lexicographic order.
func (s *RecordStore) Keywords() []string {
	return slices.Clone(s.keys)
}

// ByInsertionID returns the record inserted id-th, counting from zero.
// Returns ErrInsertionIDOutOfRange if id is outside [0, Size()).
func (s *RecordStore) ByInsertionID(id int) (*domain.Record, error) {
	if id < 0 || id >= len(s.order) {
		return nil, ErrInsertionIDOutOfRange
	}
	return s.records[s.order[id]].Clone(), nil
}

// Size returns the number of records.
func (s *RecordStore) Size() int {
	return len(s.records)
}

// Dirty reports whether the store changed since it was loaded or last saved.
func (s *RecordStore) Dirty() bool {
	return s.dirty
}

// MarkDirty flags content that was loaded but never persisted.
func (s *RecordStore) MarkDirty() {
	s.dirty = true
}

// MarkClean clears the dirty flag after a successful save.
func (s *RecordStore) MarkClean() {
	s.dirty = false
}
