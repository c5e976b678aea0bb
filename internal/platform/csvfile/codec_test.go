package csvfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phrazzld/glossary/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, keyword string, defs ...string) *domain.Record {
	t.Helper()
	record, err := domain.NewRecord(keyword, defs...)
	require.NoError(t, err)
	return record
}

func TestEncodeRecords(t *testing.T) {
	t.Parallel() // Enable parallel execution

	var buf bytes.Buffer
	err := EncodeRecords(&buf, []*domain.Record{
		mustRecord(t, "cat", "small pet", "meows"),
		mustRecord(t, "dog", "barks"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Keyword,Definition\ncat,small pet|meows|\ndog,barks|\n", buf.String())
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel() // Enable parallel execution

	input := strings.Join([]string{
		"Keyword,Definition",
		"cat,small pet|meows|",
		"dog,barks",
		"",
		"no separator here",
		",orphan definition|",
		"empty,|",
		"ox, strong | slow |",
	}, "\n")

	records, skipped, err := DecodeRecords(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"small pet", "meows"}, records[0].Definitions)
	assert.Equal(t, []string{"barks"}, records[1].Definitions)
	assert.Equal(t, "ox", records[2].Keyword)
	assert.Equal(t, []string{"strong", "slow"}, records[2].Definitions)

	require.Len(t, skipped, 3)
	assert.Equal(t, 5, skipped[0].Line)
	assert.Equal(t, 6, skipped[1].Line)
	assert.Equal(t, 7, skipped[2].Line)
	for _, s := range skipped {
		assert.ErrorIs(t, s, domain.ErrMalformedRecord)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	t.Parallel() // Enable parallel execution

	records := []*domain.Record{
		mustRecord(t, "alpha", "first letter", "a beginning"),
		mustRecord(t, "Beta", "second letter"),
		mustRecord(t, "gamma ray", "high energy; short wavelength", "see also: x-ray"),
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRecords(&buf, records))

	decoded, skipped, err := DecodeRecords(&buf)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, records, decoded)
}

func TestRecordsRoundTripBreaksOnSeparators(t *testing.T) {
	t.Parallel() // Enable parallel execution

	var buf bytes.Buffer
	require.NoError(t, EncodeRecords(&buf, []*domain.Record{
		mustRecord(t, "a,b", "c|d"),
	}))

	decoded, _, err := DecodeRecords(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "a", decoded[0].Keyword)
	assert.Equal(t, []string{"b", "c", "d"}, decoded[0].Definitions)
}

func TestHistoryCodec(t *testing.T) {
	t.Parallel() // Enable parallel execution

	entries := []domain.HistoryEntry{
		{Kind: domain.SearchKeyword, Term: "cat"},
		{Kind: domain.SearchDefinition, Term: "small, furry"},
		{Kind: domain.SearchKeyword, Term: "dog"},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeHistory(&buf, entries))
	assert.Equal(t, "Code,Term\n0,cat\n1,small, furry\n0,dog\n", buf.String())

	decoded, skipped, err := DecodeHistory(&buf)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, entries, decoded)
}

func TestDecodeHistorySkipsMalformedLines(t *testing.T) {
	t.Parallel() // Enable parallel execution

	input := "Code,Term\n0,cat\nx,dog\n7,owl\nnocomma\n1,\n1,pet\n"
	entries, skipped, err := DecodeHistory(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []domain.HistoryEntry{
		{Kind: domain.SearchKeyword, Term: "cat"},
		{Kind: domain.SearchDefinition, Term: "pet"},
	}, entries)
	assert.Len(t, skipped, 4)
}
