package importer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

const (
	// KeywordDelimiter separates the keyword from its definitions on a keyword line.
	KeywordDelimiter = "`"

	// MaxLineSize is the longest input line the parser accepts.
	MaxLineSize = 1 << 20
)

// Result is the outcome of parsing a raw glossary.
type Result struct {
	// Records in insertion order. A repeated keyword replaces the earlier
	// record in its original position.
	Records []*domain.Record

	// Skipped lists the lines that were discarded, in input order.
	Skipped []*domain.LineError
}

// Parser converts the loosely structured import text into records.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "importer")}
}

// Parse reads the whole input. The first line is a header and is ignored.
//
// A line containing KeywordDelimiter starts a new record; any other non-blank
// line is a continuation whose definitions are appended to the most recently
// started record. Continuations following a discarded keyword line are
// discarded as well. Lines that cannot be placed are reported in Result.Skipped
// and logged, and parsing continues. Only read failures are returned as errors.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	result := &Result{Records: make([]*domain.Record, 0)}
	index := make(map[string]int)
	var last *domain.Record

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		keyword, blob, found := strings.Cut(line, KeywordDelimiter)
		if !found {
			if last == nil {
				p.skip(result, lineNo, line, "continuation line without a keyword")
				continue
			}
			defs := domain.SplitDefinitions(line)
			if len(defs) == 0 {
				continue
			}
			// defs are already trimmed and non-empty
			_ = last.AppendDefinitions(defs...)
			continue
		}

		record, err := domain.NewRecord(keyword, domain.SplitDefinitions(blob)...)
		if err != nil {
			p.skip(result, lineNo, line, err.Error())
			// continuations of a discarded line belong to no record
			last = nil
			continue
		}

		if pos, ok := index[record.Keyword]; ok {
			result.Records[pos] = record
		} else {
			index[record.Keyword] = len(result.Records)
			result.Records = append(result.Records, record)
		}
		last = record
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import text at line %d: %w: %w", lineNo+1, domain.ErrIO, err)
	}

	p.logger.Debug("import parsed",
		slog.Int("lines", lineNo),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped", len(result.Skipped)))

	return result, nil
}

func (p *Parser) skip(result *Result, lineNo int, line, reason string) {
	lineErr := domain.NewLineError(lineNo, line, reason)
	result.Skipped = append(result.Skipped, lineErr)
	p.logger.Warn("discarding import line",
		slog.Int("line", lineNo),
		slog.String("reason", reason),
		slog.String("text", line))
}
