package search

import (
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
	"github.com/sahilm/fuzzy"
)

// DefaultSuggestions is the number of suggestions returned when the caller
// passes a non-positive limit.
const DefaultSuggestions = 3

// Source is the read side of the record store the engine queries.
type Source interface {
	GetFold(keyword string) []*domain.Record
	Filter(match func(*domain.Record) bool) []*domain.Record
	Keywords() []string
}

// Engine answers keyword and definition queries and logs them in a History.
// Results are always in keyword order; no match is an empty result.
type Engine struct {
	source  Source
	history *History
}

// NewEngine creates an Engine. A nil history gets a fresh one.
func NewEngine(source Source, history *History) *Engine {
	if history == nil {
		history = NewHistory()
	}
	return &Engine{source: source, history: history}
}

// History returns the log the engine writes to.
func (e *Engine) History() *History {
	return e.history
}

// Search dispatches on kind. The second result reports whether the query was
// added to the history.
func (e *Engine) Search(kind domain.SearchKind, term string) ([]*domain.Record, bool, error) {
	switch kind {
	case domain.SearchKeyword:
		records, logged := e.SearchByKeyword(term)
		return records, logged, nil
	case domain.SearchDefinition:
		records, logged := e.SearchByDefinition(term)
		return records, logged, nil
	default:
		return nil, false, domain.ErrInvalidSearchKind
	}
}

// SearchByKeyword returns the records whose whole keyword equals term,
// ignoring case.
func (e *Engine) SearchByKeyword(term string) ([]*domain.Record, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Record{}, false
	}

	records := e.source.GetFold(term)
	return records, e.history.Record(domain.SearchKeyword, term)
}

// SearchByDefinition returns the records with at least one definition
// containing term, ignoring case.
func (e *Engine) SearchByDefinition(term string) ([]*domain.Record, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Record{}, false
	}

	records := e.source.Filter(func(r *domain.Record) bool {
		return r.HasDefinitionContaining(term)
	})
	return records, e.history.Record(domain.SearchDefinition, term)
}

// keywordSource implements fuzzy.Source for a keyword list
type keywordSource []string

func (s keywordSource) String(i int) string { return s[i] }

func (s keywordSource) Len() int { return len(s) }

// Suggest returns up to limit keywords that fuzzily match term, best first.
// Suggestions are not logged.
func (e *Engine) Suggest(term string, limit int) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}

	keywords := keywordSource(e.source.Keywords())
	matches := fuzzy.FindFrom(term, keywords)

	out := make([]string, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, keywords[match.Index])
	}
	return out
}
