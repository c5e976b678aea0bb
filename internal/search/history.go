package search

import (
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

// History is the ordered log of search queries. Entries loaded from disk come
// first, followed by the entries logged in this session.
//
// Within a session a (kind, term) pair is logged at most once. Entries loaded
// from earlier sessions never suppress logging.
type History struct {
	persisted []domain.HistoryEntry
	session   []domain.HistoryEntry
	seen      map[domain.HistoryEntry]struct{}
	dirty     bool
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{
		seen: make(map[domain.HistoryEntry]struct{}),
	}
}

// Load replaces the persisted entries. Session entries are kept after them.
func (h *History) Load(entries []domain.HistoryEntry) {
	h.persisted = append([]domain.HistoryEntry(nil), entries...)
}

// Record logs a query and reports whether it was appended. Terms are trimmed;
// blank terms, unknown kinds and repeats within the session are not logged.
func (h *History) Record(kind domain.SearchKind, term string) bool {
	entry, err := domain.NewHistoryEntry(kind, strings.TrimSpace(term))
	if err != nil || entry.Term == "" {
		return false
	}

	if _, ok := h.seen[entry]; ok {
		return false
	}

	h.seen[entry] = struct{}{}
	h.session = append(h.session, entry)
	h.dirty = true
	return true
}

// Entries returns the persisted entries followed by the session entries.
func (h *History) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(h.persisted)+len(h.session))
	out = append(out, h.persisted...)
	return append(out, h.session...)
}

// Dirty reports whether entries were logged since the last save.
func (h *History) Dirty() bool {
	return h.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (h *History) MarkClean() {
	h.dirty = false
}
