package csvfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

// File headers. Decoders skip the first line whatever it contains.
const (
	RecordHeader  = "Keyword,Definition"
	HistoryHeader = "Code,Term"
)

const (
	fieldSeparator      = ","
	definitionSeparator = domain.DefinitionSeparator
	maxLineSize         = 1 << 20
)

// EncodeRecords writes the header and one "keyword,def1|def2|" line per record.
// Every definition is followed by a pipe, including the last one.
//
// Commas and pipes inside keywords or definitions are written as is, so such
// records do not survive a round trip.
func EncodeRecords(w io.Writer, records []*domain.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(RecordHeader + "\n"); err != nil {
		return err
	}

	for _, record := range records {
		var line strings.Builder
		line.WriteString(record.Keyword)
		line.WriteString(fieldSeparator)
		for _, def := range record.Definitions {
			line.WriteString(def)
			line.WriteString(definitionSeparator)
		}
		line.WriteByte('\n')

		if _, err := bw.WriteString(line.String()); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// DecodeRecords reads what EncodeRecords writes. Lines without a comma, with an
// empty keyword or without any definition are returned as skipped instead of
// failing the whole read.
func DecodeRecords(r io.Reader) ([]*domain.Record, []*domain.LineError, error) {
	records := make([]*domain.Record, 0)
	var skipped []*domain.LineError

	err := eachLine(r, func(lineNo int, line string) {
		keyword, blob, found := strings.Cut(line, fieldSeparator)
		if !found {
			skipped = append(skipped, domain.NewLineError(lineNo, line, "missing comma separator"))
			return
		}

		record, err := domain.NewRecord(keyword, domain.SplitDefinitions(blob)...)
		if err != nil {
			skipped = append(skipped, domain.NewLineError(lineNo, line, err.Error()))
			return
		}
		records = append(records, record)
	})
	if err != nil {
		return nil, nil, err
	}

	return records, skipped, nil
}

// EncodeHistory writes the header and one "code,term" line per entry.
func EncodeHistory(w io.Writer, entries []domain.HistoryEntry) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(HistoryHeader + "\n"); err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := fmt.Fprintf(bw, "%d%s%s\n", int(entry.Kind), fieldSeparator, entry.Term); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// DecodeHistory reads what EncodeHistory writes. The term is everything after
// the first comma. Lines with an unknown code or an empty term are skipped.
func DecodeHistory(r io.Reader) ([]domain.HistoryEntry, []*domain.LineError, error) {
	entries := make([]domain.HistoryEntry, 0)
	var skipped []*domain.LineError

	err := eachLine(r, func(lineNo int, line string) {
		code, term, found := strings.Cut(line, fieldSeparator)
		if !found {
			skipped = append(skipped, domain.NewLineError(lineNo, line, "missing comma separator"))
			return
		}

		n, err := strconv.Atoi(strings.TrimSpace(code))
		if err != nil {
			skipped = append(skipped, domain.NewLineError(lineNo, line, "search code is not a number"))
			return
		}

		entry, err := domain.NewHistoryEntry(domain.SearchKind(n), strings.TrimSpace(term))
		if err != nil {
			skipped = append(skipped, domain.NewLineError(lineNo, line, err.Error()))
			return
		}
		if entry.Term == "" {
			skipped = append(skipped, domain.NewLineError(lineNo, line, "empty search term"))
			return
		}
		entries = append(entries, entry)
	})
	if err != nil {
		return nil, nil, err
	}

	return entries, skipped, nil
}

// eachLine calls fn for every non-blank line after the header.
func eachLine(r io.Reader, fn func(lineNo int, line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

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
		fn(lineNo, line)
	}

	return scanner.Err()
}
