package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/glossary/internal/domain"
	"github.com/phrazzld/glossary/internal/domain/quiz"
	"github.com/phrazzld/glossary/internal/importer"
	"github.com/phrazzld/glossary/internal/platform/csvfile"
	"github.com/phrazzld/glossary/internal/search"
	"github.com/phrazzld/glossary/internal/session"
	"github.com/phrazzld/glossary/internal/store"
)

// Repository defines the file operations the service needs.
// csvfile.Repository implements it.
type Repository interface {
	// Exists reports whether path is an existing regular file
	Exists(path string) (bool, error)

	// Open opens a raw import file for reading
	Open(path string) (io.ReadCloser, error)

	// LoadRecords reads a cache file
	LoadRecords(path string) ([]*domain.Record, error)

	// SaveRecords writes a cache file
	SaveRecords(path string, records []*domain.Record) error

	// LoadHistory reads a history file; a missing file is an empty history
	LoadHistory(path string) ([]domain.HistoryEntry, error)

	// SaveHistory writes a history file
	SaveHistory(path string, entries []domain.HistoryEntry) error
}

// GlossaryService provides the operations the CLI performs on an open glossary.
type GlossaryService interface {
	// Open loads the glossary for importPath, from its cache when one exists
	// and from the import file otherwise. On error the previous glossary stays
	// open.
	Open(ctx context.Context, importPath string) (*OpenReport, error)

	// Path returns the import path of the open glossary, or "".
	Path() string

	// Records returns every record in keyword order.
	Records(ctx context.Context) ([]*domain.Record, error)

	// Search runs a keyword or definition query and logs it.
	Search(ctx context.Context, kind domain.SearchKind, term string) ([]*domain.Record, error)

	// Suggest returns keywords that fuzzily match term.
	Suggest(ctx context.Context, term string) ([]string, error)

	// Add stores a definition, applying option when the keyword exists.
	Add(ctx context.Context, keyword, definition string, option session.AddOption) (session.AddOutcome, error)

	// AddFlow returns an interactive add flow bound to the open glossary.
	AddFlow(ctx context.Context, p session.Prompter) (*session.AddFlow, error)

	// Edit starts an edit session on keyword.
	Edit(ctx context.Context, keyword string) (*session.EditSession, error)

	// Delete removes keyword when confirmed and reports whether it did.
	Delete(ctx context.Context, keyword string, confirmed bool) (bool, error)

	// RandomPick returns a uniformly chosen record.
	RandomPick(ctx context.Context) (*domain.Record, error)

	// Quiz generates a quiz over the open glossary.
	Quiz(ctx context.Context, mode quiz.Mode, stages int) (*quiz.Quiz, error)

	// ScoreQuiz scores the answers given to q.
	ScoreQuiz(ctx context.Context, q *quiz.Quiz, choices []int) (*quiz.Result, error)

	// History returns the search history, oldest first.
	History(ctx context.Context) ([]domain.HistoryEntry, error)

	// Reset imports the raw file again and replaces the cache with the result,
	// discarding unsaved changes. The search history is kept. When the import
	// fails the open glossary and its cache are left as they were.
	Reset(ctx context.Context) (*OpenReport, error)

	// Save writes the records and the search history.
	Save(ctx context.Context) error

	// IsDirty reports whether there are unsaved changes.
	IsDirty() bool
}

// OpenReport describes how a glossary was loaded.
type OpenReport struct {
	ImportPath  string
	CachePath   string
	HistoryPath string

	// FromCache is true when the records came from the cache file.
	FromCache bool

	Records int

	// Skipped lists the import lines that were discarded.
	Skipped []*domain.LineError

	// CacheErr is set when a fresh import could not be written to the cache.
	// The records are loaded and marked unsaved.
	CacheErr error
}

// Options tune a GlossaryService.
type Options struct {
	// AutosaveHistory writes the history file after every logged search.
	AutosaveHistory bool

	// Suggestions is the maximum number of fuzzy suggestions.
	Suggestions int

	// Quiz sets the quiz limits. Nil uses quiz.NewDefaultParams().
	Quiz *quiz.Params
}

// glossaryServiceImpl implements the GlossaryService interface
type glossaryServiceImpl struct {
	repo    Repository
	parser  *importer.Parser
	quizzes quiz.Service
	rng     quiz.Rand
	opts    Options
	logger  *slog.Logger

	path    string
	records *store.RecordStore
	history *search.History
	engine  *search.Engine
}

// NewGlossaryService creates a new GlossaryService.
// It returns an error if any required dependency is nil.
func NewGlossaryService(
	repo Repository,
	rng quiz.Rand,
	opts Options,
	logger *slog.Logger,
) (GlossaryService, error) {
	if repo == nil {
		return nil, &GlossaryServiceError{Operation: "new", Message: "repository cannot be nil"}
	}
	if rng == nil {
		return nil, &GlossaryServiceError{Operation: "new", Message: "random source cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("session_id", uuid.NewString()))

	params := opts.Quiz
	if params == nil {
		params = quiz.NewDefaultParams()
	}

	return &glossaryServiceImpl{
		repo:    repo,
		parser:  importer.NewParser(logger),
		quizzes: quiz.NewServiceWithParams(params, rng),
		rng:     rng,
		opts:    opts,
		logger:  logger.With(slog.String("component", "glossary_service")),
	}, nil
}

func (s *glossaryServiceImpl) Path() string {
	return s.path
}

func (s *glossaryServiceImpl) Open(ctx context.Context, importPath string) (*OpenReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, report, err := s.load(importPath)
	if err != nil {
		s.logger.Error("failed to open glossary", "error", err, "path", importPath)
		return nil, NewGlossaryServiceError("open", "failed to load glossary", err)
	}

	entries, err := s.repo.LoadHistory(report.HistoryPath)
	if err != nil {
		s.logger.Error("failed to read search history", "error", err, "path", report.HistoryPath)
		return nil, NewGlossaryServiceError("open", "failed to load search history", err)
	}

	history := search.NewHistory()
	history.Load(entries)

	s.path = importPath
	s.records = records
	s.history = history
	s.engine = search.NewEngine(records, history)

	s.logger.Info("glossary opened",
		"path", importPath,
		"from_cache", report.FromCache,
		"records", report.Records,
		"history_entries", len(entries))
	return report, nil
}

func newOpenReport(importPath string) *OpenReport {
	return &OpenReport{
		ImportPath:  importPath,
		CachePath:   csvfile.CachePath(importPath),
		HistoryPath: csvfile.HistoryPath(importPath),
	}
}

// load reads the records for importPath without touching the open glossary.
func (s *glossaryServiceImpl) load(importPath string) (*store.RecordStore, *OpenReport, error) {
	report := newOpenReport(importPath)

	cached, err := s.repo.Exists(report.CachePath)
	if err != nil {
		return nil, nil, err
	}

	if cached {
		loaded, err := s.repo.LoadRecords(report.CachePath)
		if err != nil {
			return nil, nil, err
		}
		records := store.NewRecordStore()
		if err := records.Load(loaded); err != nil {
			return nil, nil, err
		}
		report.FromCache = true
		report.Records = records.Size()
		return records, report, nil
	}

	return s.importFile(importPath, report)
}

// importFile parses the raw file into a fresh store and writes its cache. The
// cache is only replaced once the whole file has been read.
func (s *glossaryServiceImpl) importFile(importPath string, report *OpenReport) (*store.RecordStore, *OpenReport, error) {
	f, err := s.repo.Open(importPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	result, err := s.parser.Parse(f)
	if err != nil {
		return nil, nil, err
	}
	records := store.NewRecordStore()
	if err := records.Load(result.Records); err != nil {
		return nil, nil, err
	}
	report.Records = records.Size()
	report.Skipped = result.Skipped

	if err := s.repo.SaveRecords(report.CachePath, records.All()); err != nil {
		s.logger.Warn("failed to write cache after import", "error", err, "path", report.CachePath)
		report.CacheErr = err
		records.MarkDirty()
	}

	return records, report, nil
}

func (s *glossaryServiceImpl) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.records == nil {
		return ErrNotOpen
	}
	return nil
}

func (s *glossaryServiceImpl) Records(ctx context.Context) ([]*domain.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.records.All(), nil
}

func (s *glossaryServiceImpl) Search(
	ctx context.Context,
	kind domain.SearchKind,
	term string,
) ([]*domain.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	results, logged, err := s.engine.Search(kind, term)
	if err != nil {
		return nil, NewGlossaryServiceError("search", "invalid search", err)
	}

	s.logger.Debug("search",
		"kind", kind.String(),
		"term", term,
		"results", len(results),
		"logged", logged)

	if logged && s.opts.AutosaveHistory {
		if err := s.saveHistory(); err != nil {
			// The entry stays in memory and is written by the next Save.
			s.logger.Warn("failed to autosave search history", "error", err)
		}
	}

	return results, nil
}

func (s *glossaryServiceImpl) Suggest(ctx context.Context, term string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.engine.Suggest(term, s.opts.Suggestions), nil
}

func (s *glossaryServiceImpl) Add(
	ctx context.Context,
	keyword, definition string,
	option session.AddOption,
) (session.AddOutcome, error) {
	if err := s.ready(ctx); err != nil {
		return session.AddCancelled, err
	}

	outcome, err := session.Add(s.records, keyword, definition, option)
	if err != nil {
		return session.AddCancelled, NewGlossaryServiceError("add", "failed to add definition", err)
	}

	s.logger.Debug("add", "keyword", keyword, "outcome", outcome.String())
	return outcome, nil
}

func (s *glossaryServiceImpl) AddFlow(ctx context.Context, p session.Prompter) (*session.AddFlow, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return session.NewAddFlow(s.records, p), nil
}

func (s *glossaryServiceImpl) Edit(ctx context.Context, keyword string) (*session.EditSession, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	edit, err := session.NewEditSession(s.records, keyword)
	if err != nil {
		return nil, NewGlossaryServiceError("edit", "failed to start edit session", err)
	}
	return edit, nil
}

func (s *glossaryServiceImpl) Delete(ctx context.Context, keyword string, confirmed bool) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	if !s.records.Contains(keyword) {
		return false, ErrRecordNotFound
	}
	if !confirmed {
		return false, nil
	}

	if err := s.records.Remove(keyword); err != nil {
		return false, NewGlossaryServiceError("delete", "failed to delete keyword", err)
	}

	s.logger.Debug("keyword deleted", "keyword", keyword)
	return true, nil
}

func (s *glossaryServiceImpl) RandomPick(ctx context.Context) (*domain.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	size := s.records.Size()
	if size == 0 {
		return nil, domain.ErrEmptyStore
	}

	record, err := s.records.ByInsertionID(s.rng.Intn(size))
	if err != nil {
		return nil, NewGlossaryServiceError("random", "failed to pick a record", err)
	}
	return record, nil
}

func (s *glossaryServiceImpl) Quiz(ctx context.Context, mode quiz.Mode, stages int) (*quiz.Quiz, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	q, err := s.quizzes.Generate(s.records, mode, stages)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyStore) {
			return nil, err
		}
		return nil, NewGlossaryServiceError("quiz", "failed to generate quiz", err)
	}
	return q, nil
}

func (s *glossaryServiceImpl) ScoreQuiz(ctx context.Context, q *quiz.Quiz, choices []int) (*quiz.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.quizzes.Score(q, choices)
	if err != nil {
		return nil, NewGlossaryServiceError("score", "failed to score quiz", err)
	}

	s.logger.Info("quiz finished",
		"quiz_id", result.ID,
		"mode", string(result.Mode),
		"stages", result.Stages,
		"correct", result.Correct,
		"score", result.Score)
	return result, nil
}

func (s *glossaryServiceImpl) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.history.Entries(), nil
}

func (s *glossaryServiceImpl) Reset(ctx context.Context) (*OpenReport, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	cachePath := csvfile.CachePath(s.path)
	if cachePath == s.path {
		return nil, ErrNoImportSource
	}
	exists, err := s.repo.Exists(s.path)
	if err != nil {
		return nil, NewGlossaryServiceError("reset", "failed to check import file", err)
	}
	if !exists {
		return nil, ErrNoImportSource
	}

	records, report, err := s.importFile(s.path, newOpenReport(s.path))
	if err != nil {
		return nil, NewGlossaryServiceError("reset", "failed to import glossary", err)
	}

	s.records = records
	s.engine = search.NewEngine(records, s.history)

	s.logger.Info("glossary reset", "path", s.path, "records", report.Records)
	return report, nil
}

func (s *glossaryServiceImpl) Save(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	cachePath := csvfile.CachePath(s.path)
	if err := s.repo.SaveRecords(cachePath, s.records.All()); err != nil {
		s.logger.Error("failed to save glossary", "error", err, "path", cachePath)
		return NewGlossaryServiceError("save", "failed to write glossary", err)
	}
	s.records.MarkClean()

	if err := s.saveHistory(); err != nil {
		s.logger.Error("failed to save search history", "error", err)
		return NewGlossaryServiceError("save", "failed to write search history", err)
	}

	s.logger.Info("glossary saved", "path", cachePath, "records", s.records.Size())
	return nil
}

func (s *glossaryServiceImpl) saveHistory() error {
	if err := s.repo.SaveHistory(csvfile.HistoryPath(s.path), s.history.Entries()); err != nil {
		return err
	}
	s.history.MarkClean()
	return nil
}

func (s *glossaryServiceImpl) IsDirty() bool {
	if s.records == nil {
		return false
	}
	return s.records.Dirty() || s.history.Dirty()
}
