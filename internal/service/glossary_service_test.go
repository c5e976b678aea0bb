package service

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/phrazzld/glossary/internal/domain"
	"github.com/phrazzld/glossary/internal/domain/quiz"
	"github.com/phrazzld/glossary/internal/platform/csvfile"
	"github.com/phrazzld/glossary/internal/platform/logger"
	"github.com/phrazzld/glossary/internal/session"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawGlossary = "Term`Meaning\n" +
	"cat`small pet|meows\n" +
	"big house\n" +
	"orphan`\n" +
	"dog`barks\n" +
	"owl`hoots\n"

// cycleRand returns its values in order, modulo n, starting over at the end.
type cycleRand struct {
	values []int
	next   int
}

func (r *cycleRand) Intn(n int) int {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

type fixture struct {
	fs      afero.Fs
	service GlossaryService
	logs    *logger.TestLogBuffer
}

func newFixture(t *testing.T, fsys afero.Fs, opts Options) *fixture {
	t.Helper()
	log, buf := logger.GetTestLogger(t)
	repo := csvfile.NewRepository(fsys, csvfile.Options{AtomicWrites: true}, log)

	svc, err := NewGlossaryService(repo, rand.New(rand.NewSource(7)), opts, log)
	require.NoError(t, err)
	return &fixture{fs: fsys, service: svc, logs: buf}
}

func newOpenFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "Data/animals.txt", []byte(rawGlossary), 0o644))

	f := newFixture(t, fsys, opts)
	_, err := f.service.Open(context.Background(), "Data/animals.txt")
	require.NoError(t, err)
	return f
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestNewGlossaryServiceValidation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	repo := csvfile.NewRepository(afero.NewMemMapFs(), csvfile.Options{}, nil)

	_, err := NewGlossaryService(nil, rand.New(rand.NewSource(1)), Options{}, nil)
	assert.Error(t, err)

	_, err = NewGlossaryService(repo, nil, Options{}, nil)
	assert.Error(t, err)

	svc, err := NewGlossaryService(repo, rand.New(rand.NewSource(1)), Options{}, nil)
	require.NoError(t, err)
	assert.False(t, svc.IsDirty())
	assert.Equal(t, "", svc.Path())
}

func TestOpenImportsAndWritesCache(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "Data/animals.txt", []byte(rawGlossary), 0o644))
	f := newFixture(t, fsys, Options{})

	report, err := f.service.Open(ctx, "Data/animals.txt")
	require.NoError(t, err)
	assert.False(t, report.FromCache)
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, "Data/animals.csv", report.CachePath)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 4, report.Skipped[0].Line)
	assert.NoError(t, report.CacheErr)
	assert.False(t, f.service.IsDirty())

	assert.Equal(t,
		"Keyword,Definition\ncat,small pet|meows|big house|\ndog,barks|\nowl,hoots|\n",
		readFile(t, fsys, "Data/animals.csv"))

	records, err := f.service.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"small pet", "meows", "big house"}, records[0].Definitions)
}

func TestOpenPrefersCache(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "t.txt", []byte("h\nraw`from raw\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "t.csv", []byte("Keyword,Definition\ncached,from cache|\n"), 0o644))
	f := newFixture(t, fsys, Options{})

	report, err := f.service.Open(ctx, "t.txt")
	require.NoError(t, err)
	assert.True(t, report.FromCache)

	records, err := f.service.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "cached", records[0].Keyword)

	// The raw file is not needed once the cache exists.
	require.NoError(t, fsys.Remove("t.txt"))
	report, err = f.service.Open(ctx, "t.txt")
	require.NoError(t, err)
	assert.True(t, report.FromCache)
}

func TestOpenFailureKeepsPreviousGlossary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	_, err := f.service.Open(ctx, "Data/missing.txt")
	assert.ErrorIs(t, err, domain.ErrIO)

	var serviceErr *GlossaryServiceError
	assert.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "open", serviceErr.Operation)

	assert.Equal(t, "Data/animals.txt", f.service.Path())
	records, err := f.service.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestOpenCacheWriteFailure(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "ro/t.txt", []byte("h\nkey`value\n"), 0o644))
	f := newFixture(t, afero.NewReadOnlyFs(base), Options{})

	report, err := f.service.Open(ctx, "ro/t.txt")
	require.NoError(t, err)
	assert.ErrorIs(t, report.CacheErr, domain.ErrIO)
	assert.Equal(t, 1, report.Records)
	assert.True(t, f.service.IsDirty(), "records that were never written count as unsaved")

	err = f.service.Save(ctx)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.True(t, f.service.IsDirty())
}

func TestOperationsRequireOpenGlossary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newFixture(t, afero.NewMemMapFs(), Options{})

	_, err := f.service.Records(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = f.service.Search(ctx, domain.SearchKeyword, "cat")
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = f.service.RandomPick(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, f.service.Save(ctx), ErrNotOpen)
	_, err = f.service.Reset(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel() // Enable parallel execution
	f := newOpenFixture(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.service.Save(ctx), context.Canceled)
}

func TestSearchHistory(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{AutosaveHistory: true})

	results, err := f.service.Search(ctx, domain.SearchKeyword, "CAT")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cat", results[0].Keyword)

	results, err = f.service.Search(ctx, domain.SearchDefinition, "HOUSE")
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = f.service.Search(ctx, domain.SearchKeyword, "CAT")
	require.NoError(t, err)

	results, err = f.service.Search(ctx, domain.SearchKeyword, "ca")
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Equal(t, "Code,Term\n0,CAT\n1,HOUSE\n0,ca\n", readFile(t, f.fs, "Data/animals.hist.csv"))
	assert.False(t, f.service.IsDirty())

	// A new session loads the persisted history and logs the same term again.
	next := newFixture(t, f.fs, Options{AutosaveHistory: true})
	_, err = next.service.Open(ctx, "Data/animals.txt")
	require.NoError(t, err)
	_, err = next.service.Search(ctx, domain.SearchKeyword, "CAT")
	require.NoError(t, err)

	history, err := next.service.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{
		{Kind: domain.SearchKeyword, Term: "CAT"},
		{Kind: domain.SearchDefinition, Term: "HOUSE"},
		{Kind: domain.SearchKeyword, Term: "ca"},
		{Kind: domain.SearchKeyword, Term: "CAT"},
	}, history)

	_, err = next.service.Search(ctx, domain.SearchKind(5), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidSearchKind)
}

func TestSearchWithoutAutosave(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	_, err := f.service.Search(ctx, domain.SearchKeyword, "owl")
	require.NoError(t, err)
	assert.True(t, f.service.IsDirty())

	exists, err := afero.Exists(f.fs, "Data/animals.hist.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, f.service.Save(ctx))
	assert.Equal(t, "Code,Term\n0,owl\n", readFile(t, f.fs, "Data/animals.hist.csv"))
	assert.False(t, f.service.IsDirty())
}

func TestSuggest(t *testing.T) {
	t.Parallel() // Enable parallel execution
	f := newOpenFixture(t, Options{Suggestions: 2})

	suggestions, err := f.service.Suggest(context.Background(), "ow")
	require.NoError(t, err)
	assert.Equal(t, []string{"owl"}, suggestions)
}

func TestAddEditDeleteAndSave(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	outcome, err := f.service.Add(ctx, "dog", "loyal", session.AddAppend)
	require.NoError(t, err)
	assert.Equal(t, session.AddAppended, outcome)
	assert.True(t, f.service.IsDirty())

	outcome, err = f.service.Add(ctx, "emu", "runs", session.AddCancel)
	require.NoError(t, err)
	assert.Equal(t, session.AddInserted, outcome)

	_, err = f.service.Add(ctx, "", "nothing", session.AddAppend)
	assert.ErrorIs(t, err, domain.ErrEmptyKeyword)

	edit, err := f.service.Edit(ctx, "cat")
	require.NoError(t, err)
	edit.Listed()
	_, err = edit.Handle("c 3 a large house")
	require.NoError(t, err)

	_, err = f.service.Edit(ctx, "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	deleted, err := f.service.Delete(ctx, "owl", false)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.service.Delete(ctx, "owl", true)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.service.Delete(ctx, "owl", true)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	require.NoError(t, f.service.Save(ctx))
	assert.False(t, f.service.IsDirty())
	assert.Equal(t,
		"Keyword,Definition\ncat,small pet|meows|a large house|\ndog,barks|loyal|\nemu,runs|\n",
		readFile(t, f.fs, "Data/animals.csv"))
}

func TestAddFlow(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	flow, err := f.service.AddFlow(ctx, nil)
	require.NoError(t, err)

	outcome, err := flow.Run("yak", "hairy")
	require.NoError(t, err)
	assert.Equal(t, session.AddInserted, outcome)
	assert.True(t, f.service.IsDirty())
}

func TestRandomPick(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "t.txt", []byte("h\nzebra`stripes\napple`fruit\nmango`fruit\n"), 0o644))
	log, _ := logger.GetTestLogger(t)
	repo := csvfile.NewRepository(fsys, csvfile.Options{}, log)
	svc, err := NewGlossaryService(repo, &cycleRand{values: []int{0, 1, 2}}, Options{}, log)
	require.NoError(t, err)
	_, err = svc.Open(ctx, "t.txt")
	require.NoError(t, err)

	// Picks follow insertion order, not keyword order.
	for _, want := range []string{"zebra", "apple", "mango"} {
		record, err := svc.RandomPick(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, record.Keyword)
	}

	for _, keyword := range []string{"zebra", "apple", "mango"} {
		_, err := svc.Delete(ctx, keyword, true)
		require.NoError(t, err)
	}
	_, err = svc.RandomPick(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyStore)
	_, err = svc.Quiz(ctx, quiz.ModeKeyword, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyStore)
}

func TestQuiz(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	q, err := f.service.Quiz(ctx, quiz.ModeDefinition, 50)
	require.NoError(t, err)
	assert.Equal(t, 20, q.Stages(), "stages are clamped")
	for _, question := range q.Questions {
		assert.Len(t, question.Options, 4)
	}

	choices := make([]int, q.Stages())
	for i, question := range q.Questions {
		choices[i] = question.Answer
	}
	result, err := f.service.ScoreQuiz(ctx, q, choices)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	entries, err := f.logs.EntriesWithMessage("quiz finished")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(100), entries[0]["score"])
	assert.Equal(t, "glossary_service", entries[0]["component"])
	assert.NotEmpty(t, entries[0]["session_id"])

	_, err = f.service.ScoreQuiz(ctx, q, choices[:1])
	assert.ErrorIs(t, err, quiz.ErrAnswerMismatch)

	_, err = f.service.Quiz(ctx, quiz.Mode("both"), 3)
	assert.ErrorIs(t, err, quiz.ErrInvalidMode)
}

func TestReset(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	_, err := f.service.Add(ctx, "emu", "runs", session.AddAppend)
	require.NoError(t, err)
	_, err = f.service.Search(ctx, domain.SearchKeyword, "emu")
	require.NoError(t, err)

	report, err := f.service.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, report.FromCache)
	assert.Equal(t, 3, report.Records)

	records, err := f.service.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3, "unsaved changes are discarded")

	history, err := f.service.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1, "the search history is kept")
}

func TestResetFailureKeepsCache(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	f := newOpenFixture(t, Options{})

	_, err := f.service.Add(ctx, "emu", "runs", session.AddAppend)
	require.NoError(t, err)
	require.NoError(t, f.service.Save(ctx))
	saved := readFile(t, f.fs, "Data/animals.csv")

	// a line longer than the parser accepts makes the import fail
	tooLong := "Term`Meaning\nyak`" + strings.Repeat("x", 2<<20) + "\n"
	require.NoError(t, afero.WriteFile(f.fs, "Data/animals.txt", []byte(tooLong), 0o644))

	_, err = f.service.Reset(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)

	assert.Equal(t, saved, readFile(t, f.fs, "Data/animals.csv"), "the cache is untouched")
	records, err := f.service.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 4, "the open glossary is kept")
	assert.False(t, f.service.IsDirty())
}

func TestResetWithoutImportSource(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "Data/t.csv", []byte("Keyword,Definition\na,b|\n"), 0o644))
	f := newFixture(t, fsys, Options{})

	_, err := f.service.Open(ctx, "Data/t.csv")
	require.NoError(t, err)

	_, err = f.service.Reset(ctx)
	assert.ErrorIs(t, err, ErrNoImportSource)

	exists, err := afero.Exists(fsys, "Data/t.csv")
	require.NoError(t, err)
	assert.True(t, exists, "the cache is kept when there is nothing to re-import")
}
