package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/glossary/internal/config"
	"github.com/phrazzld/glossary/internal/domain/quiz"
	"github.com/phrazzld/glossary/internal/platform/console"
	"github.com/phrazzld/glossary/internal/platform/csvfile"
	"github.com/phrazzld/glossary/internal/service"
	"github.com/spf13/afero"
)

// errNoGlossary is returned when startup ends without a file to open.
var errNoGlossary = errors.New("no glossary selected")

// application holds the dependencies shared by the REPL and the one-shot
// commands.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	console *console.Console

	repo     *csvfile.Repository
	glossary service.GlossaryService
}

// newApplication wires the repository and the glossary service. A nil rng is
// seeded from the clock.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	con *console.Console,
	fsys afero.Fs,
	rng quiz.Rand,
) (*application, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		console: con,
	}

	app.repo = csvfile.NewRepository(fsys, csvfile.Options{
		AtomicWrites: cfg.Storage.AtomicWrites,
	}, logger)

	var err error
	app.glossary, err = service.NewGlossaryService(app.repo, rng, service.Options{
		AutosaveHistory: cfg.Storage.AutosaveHistory,
		Quiz:            quiz.NewParams(quiz.ParamsConfig{Options: cfg.Quiz.Choices}),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glossary service: %w", err)
	}

	return app, nil
}

// open loads path and reports what the user should know about the load.
func (a *application) open(ctx context.Context, path string) error {
	report, err := a.glossary.Open(ctx, path)
	if err != nil {
		return err
	}

	for _, skipped := range report.Skipped {
		a.console.Warn("Line %d discarded (%s): %s", skipped.Line, skipped.Reason, skipped.Text)
	}
	if report.CacheErr != nil {
		a.console.Warn("Could not write %s: %v", report.CachePath, report.CacheErr)
	}

	source := "imported"
	if report.FromCache {
		source = "loaded"
	}
	a.console.Info("%d keywords %s from %s.", report.Records, source, path)
	return nil
}

// resolveFile picks the glossary to open: the argument, then the configured
// file, then whatever the data directory holds.
func (a *application) resolveFile(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.config.Glossary.File != "" {
		return a.config.Glossary.File, nil
	}
	return a.discover()
}

// discover lists the glossaries in the data directory. One match is used as
// is; several are offered for selection; none asks for a path.
func (a *application) discover() (string, error) {
	dir := a.config.Glossary.DataDir
	files, err := a.repo.Discover(dir)
	if err != nil {
		return "", err
	}
	a.logger.Debug("glossary discovery", "dir", dir, "found", len(files))

	switch len(files) {
	case 0:
		a.console.Info("No glossary found in %s.", dir)
		return a.askPath()
	case 1:
		return files[0], nil
	}

	a.console.Info("Glossaries in %s:", dir)
	for i, file := range files {
		a.console.Printf("  %d. %s\n", i+1, file)
	}
	for {
		line, err := a.console.ReadLine(fmt.Sprintf("%s Open which one? [1-%d] ", console.QuestionMarker, len(files)))
		if errors.Is(err, io.EOF) {
			return "", errNoGlossary
		}
		if err != nil {
			return "", err
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > len(files) {
			a.console.Warn("Enter a number between 1 and %d.", len(files))
			continue
		}
		return files[n-1], nil
	}
}

func (a *application) askPath() (string, error) {
	for {
		line, err := a.console.ReadLine(console.QuestionMarker + " File to import > ")
		if errors.Is(err, io.EOF) {
			return "", errNoGlossary
		}
		if err != nil {
			return "", err
		}
		if path := strings.TrimSpace(line); path != "" {
			return path, nil
		}
	}
}
