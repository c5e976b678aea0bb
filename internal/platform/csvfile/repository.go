package csvfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
	"github.com/spf13/afero"
)

// File name suffixes derived from the import path.
const (
	CacheExt   = ".csv"
	HistoryExt = ".hist.csv"
)

// CachePath returns the canonical cache path for an import file: the import
// path with its extension replaced by ".csv". A ".csv" import is its own cache.
func CachePath(importPath string) string {
	return trimExt(importPath) + CacheExt
}

// HistoryPath returns the search history path for an import file.
func HistoryPath(importPath string) string {
	return trimExt(importPath) + HistoryExt
}

func trimExt(path string) string {
	if strings.HasSuffix(path, HistoryExt) {
		return strings.TrimSuffix(path, HistoryExt)
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Options configure a Repository.
type Options struct {
	// AtomicWrites writes to a temp file in the target directory and renames it
	// over the target. When false the target is truncated and written in place.
	AtomicWrites bool
}

// Repository reads and writes glossary files on an afero filesystem.
// Every filesystem failure is returned wrapping domain.ErrIO.
type Repository struct {
	fs     afero.Fs
	opts   Options
	logger *slog.Logger
}

// NewRepository creates a Repository. A nil fs uses the OS filesystem and a nil
// logger falls back to slog.Default().
func NewRepository(fsys afero.Fs, opts Options, logger *slog.Logger) *Repository {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		fs:     fsys,
		opts:   opts,
		logger: logger.With("component", "csvfile"),
	}
}

// Exists reports whether path is an existing regular file.
func (r *Repository) Exists(path string) (bool, error) {
	info, err := r.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioError("stat", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// Open opens path for reading. The caller closes it.
func (r *Repository) Open(path string) (io.ReadCloser, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	return f, nil
}

// LoadRecords decodes the cache file at path. Malformed lines are logged and
// skipped.
func (r *Repository) LoadRecords(path string) ([]*domain.Record, error) {
	f, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, skipped, err := DecodeRecords(f)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	r.logSkipped(path, skipped)

	r.logger.Debug("records loaded", slog.String("path", path), slog.Int("count", len(records)))
	return records, nil
}

// SaveRecords encodes records to path.
func (r *Repository) SaveRecords(path string, records []*domain.Record) error {
	err := r.write(path, func(w io.Writer) error {
		return EncodeRecords(w, records)
	})
	if err != nil {
		return err
	}

	r.logger.Debug("records saved", slog.String("path", path), slog.Int("count", len(records)))
	return nil
}

// LoadHistory decodes the history file at path. A missing file is an empty
// history.
func (r *Repository) LoadHistory(path string) ([]domain.HistoryEntry, error) {
	f, err := r.fs.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	entries, skipped, err := DecodeHistory(f)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	r.logSkipped(path, skipped)

	return entries, nil
}

// SaveHistory encodes the whole history to path.
func (r *Repository) SaveHistory(path string, entries []domain.HistoryEntry) error {
	return r.write(path, func(w io.Writer) error {
		return EncodeHistory(w, entries)
	})
}

// Discover lists the glossary cache files in dir, sorted by name. Hidden files
// and history files are left out. A missing directory yields no files.
func (r *Repository) Discover(dir string) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, ioError("list", dir, err)
	}

	files := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, CacheExt) || strings.HasSuffix(name, HistoryExt) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	slices.Sort(files)
	return files, nil
}

func (r *Repository) write(path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return ioError("create directory for", path, err)
		}
	}

	if r.opts.AtomicWrites {
		return r.writeAtomic(path, encode)
	}

	f, err := r.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ioError("create", path, err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return ioError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return ioError("close", path, err)
	}
	return nil
}

func (r *Repository) writeAtomic(path string, encode func(io.Writer) error) error {
	temp, err := afero.TempFile(r.fs, filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return ioError("create temp file for", path, err)
	}
	tempName := temp.Name()
	shouldCleanup := true
	defer func() {
		if shouldCleanup {
			_ = r.fs.Remove(tempName)
		}
	}()

	if err := encode(temp); err != nil {
		_ = temp.Close()
		return ioError("write", path, err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		return ioError("sync", path, err)
	}
	if err := temp.Close(); err != nil {
		return ioError("close", path, err)
	}
	if err := r.fs.Rename(tempName, path); err != nil {
		return ioError("replace", path, err)
	}
	shouldCleanup = false
	return nil
}

func (r *Repository) logSkipped(path string, skipped []*domain.LineError) {
	for _, s := range skipped {
		r.logger.Warn("skipping malformed line",
			slog.String("path", path),
			slog.Int("line", s.Line),
			slog.String("reason", s.Reason))
	}
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, domain.ErrIO, err)
}
