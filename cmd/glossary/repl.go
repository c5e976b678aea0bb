package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
	"github.com/phrazzld/glossary/internal/domain/quiz"
	"github.com/phrazzld/glossary/internal/session"
)

// command is one REPL command.
type command struct {
	name  string
	alias string
	usage string
	help  string
	run   func(r *repl, ctx context.Context, args string) error
}

var (
	// errQuit ends the REPL loop.
	errQuit = errors.New("quit")

	// errFinalSave is wrapped around a failed save on quit.
	errFinalSave = errors.New("failed to save before quitting")
)

var commands []command

func init() {
	commands = []command{
		{name: "help", alias: "h", usage: "help [command]", help: "show the commands, or the help of one", run: (*repl).help},
		{name: "print", alias: "p", usage: "print [search]", help: "list every keyword, or the search history", run: (*repl).print},
		{name: "search", alias: "s", usage: "search key|def <term>", help: "find keywords equal to term, or definitions containing it", run: (*repl).search},
		{name: "add", alias: "a", usage: "add [keyword [definition]]", help: "add a definition", run: (*repl).add},
		{name: "edit", alias: "e", usage: "edit [keyword]", help: "change or delete the definitions of a keyword", run: (*repl).edit},
		{name: "delete", alias: "d", usage: "delete [keyword]", help: "delete a keyword and all its definitions", run: (*repl).delete},
		{name: "random", alias: "r", usage: "random", help: "show a random keyword", run: (*repl).random},
		{name: "quiz", alias: "g", usage: "quiz [key|def] [stages]", help: "play a multiple-choice quiz", run: (*repl).quiz},
		{name: "reset", usage: "reset", help: "discard the cache and import the original file again", run: (*repl).reset},
		{name: "save", usage: "save", help: "write the glossary and the search history", run: (*repl).save},
		{name: "quit", alias: "q", usage: "quit", help: "save if needed and leave", run: (*repl).quit},
	}
}

func lookupCommand(name string) (command, bool) {
	name = strings.ToLower(name)
	for _, c := range commands {
		if c.name == name || (c.alias != "" && c.alias == name) {
			return c, true
		}
	}
	return command{}, false
}

// repl reads commands from the console and runs them against the open
// glossary.
type repl struct {
	app *application
}

func newREPL(app *application) *repl {
	return &repl{app: app}
}

// run loops until quit or the end of input. Both save pending changes; a
// failure of that final save is returned.
func (r *repl) run(ctx context.Context) error {
	con := r.app.console
	con.Info("Type 'help' for the list of commands.")

	for {
		line, err := con.ReadLine("glossary > ")
		if errors.Is(err, io.EOF) {
			con.Printf("\n")
			line = "quit"
		} else if err != nil {
			return err
		}

		err = r.dispatch(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, errFinalSave):
			return err
		case err != nil:
			con.Warn("%v", err)
		}
	}
}

// dispatch runs one input line. Errors from commands are returned for the
// caller to report; errQuit ends the session.
func (r *repl) dispatch(ctx context.Context, line string) error {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return nil
	}

	cmd, ok := lookupCommand(name)
	if !ok {
		return fmt.Errorf("%w: %q, type 'help' for the list", domain.ErrUnknownCommand, name)
	}

	r.app.logger.Debug("command", "name", cmd.name)
	return cmd.run(r, ctx, strings.TrimSpace(args))
}

func (r *repl) help(_ context.Context, args string) error {
	con := r.app.console
	if args != "" {
		cmd, ok := lookupCommand(args)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, args)
		}
		con.Printf("%s\n  %s\n", cmd.usage, cmd.help)
		return nil
	}

	for _, cmd := range commands {
		alias := ""
		if cmd.alias != "" {
			alias = cmd.alias + ","
		}
		con.Printf("  %-3s %-28s %s\n", alias, cmd.usage, cmd.help)
	}
	return nil
}

func (r *repl) print(ctx context.Context, args string) error {
	switch args {
	case "":
		records, err := r.app.glossary.Records(ctx)
		if err != nil {
			return err
		}
		printRecords(r.app.console, records)
		r.app.console.Info("%d keywords.", len(records))
		return nil
	case "search", "s", "history":
		entries, err := r.app.glossary.History(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			r.app.console.Printf("  %-10s %s\n", entry.Kind, entry.Term)
		}
		r.app.console.Info("%d searches.", len(entries))
		return nil
	default:
		return fmt.Errorf("%w: print %q", domain.ErrUnknownOption, args)
	}
}

func (r *repl) search(ctx context.Context, args string) error {
	kindArg, term, _ := strings.Cut(args, " ")
	kind, err := domain.ParseSearchKind(strings.ToLower(kindArg))
	if err != nil {
		// "search cat" searches keywords.
		kind, term = domain.SearchKeyword, args
	}

	if term, err = r.require(term, "term > "); err != nil {
		return err
	}

	records, err := r.app.glossary.Search(ctx, kind, term)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		printRecords(r.app.console, records)
		return nil
	}

	r.app.console.Info("No %s matches '%s'.", kind, strings.TrimSpace(term))
	if kind == domain.SearchKeyword {
		suggestions, err := r.app.glossary.Suggest(ctx, term)
		if err != nil {
			return err
		}
		if len(suggestions) > 0 {
			r.app.console.Info("Did you mean: %s?", strings.Join(suggestions, ", "))
		}
	}
	return nil
}

func (r *repl) add(ctx context.Context, args string) error {
	keyword, definition, _ := strings.Cut(args, " ")

	flow, err := r.app.glossary.AddFlow(ctx, r.app.console)
	if err != nil {
		return err
	}
	outcome, err := flow.Run(keyword, definition)
	if err != nil {
		return err
	}

	if outcome == session.AddCancelled {
		r.app.console.Info("Nothing added.")
		return nil
	}
	r.app.console.Info("Definition %s.", outcome)
	return nil
}

func (r *repl) edit(ctx context.Context, args string) error {
	keyword, err := r.require(args, "keyword > ")
	if err != nil {
		return err
	}

	edit, err := r.app.glossary.Edit(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return err
	}
	return edit.Run(r.app.console)
}

func (r *repl) delete(ctx context.Context, args string) error {
	keyword, err := r.require(args, "keyword > ")
	if err != nil {
		return err
	}
	keyword = strings.TrimSpace(keyword)

	// An unconfirmed delete only checks that the keyword exists.
	if _, err := r.app.glossary.Delete(ctx, keyword, false); err != nil {
		return err
	}

	confirmed, err := r.app.console.Confirm("Delete '%s' and all its definitions?", keyword)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	deleted, err := r.app.glossary.Delete(ctx, keyword, confirmed)
	if err != nil {
		return err
	}
	if deleted {
		r.app.console.Info("'%s' deleted.", keyword)
	} else {
		r.app.console.Info("Nothing deleted.")
	}
	return nil
}

func (r *repl) random(ctx context.Context, _ string) error {
	record, err := r.app.glossary.RandomPick(ctx)
	if err != nil {
		return err
	}
	printRecords(r.app.console, []*domain.Record{record})
	return nil
}

func (r *repl) quiz(ctx context.Context, args string) error {
	mode, stages, err := r.quizArgs(args)
	if err != nil {
		return err
	}

	q, err := r.app.glossary.Quiz(ctx, mode, stages)
	if err != nil {
		return err
	}

	choices, err := session.RunQuiz(r.app.console, q)
	if errors.Is(err, io.EOF) {
		r.app.console.Printf("\n")
		r.app.console.Info("Quiz abandoned.")
		return nil
	}
	if err != nil {
		return err
	}

	result, err := r.app.glossary.ScoreQuiz(ctx, q, choices)
	if err != nil {
		return err
	}
	r.app.console.Result("Score: %d%% (%d/%d)", result.Score, result.Correct, result.Stages)
	return nil
}

// quizArgs reads "[key|def] [stages]" in either order, falling back to the
// configured defaults.
func (r *repl) quizArgs(args string) (quiz.Mode, int, error) {
	mode := quiz.Mode(r.app.config.Quiz.Mode)
	stages := r.app.config.Quiz.Stages

	for _, arg := range strings.Fields(args) {
		if n, err := strconv.Atoi(arg); err == nil {
			stages = n
			continue
		}
		m, err := quiz.ParseMode(arg)
		if err != nil {
			return "", 0, err
		}
		mode = m
	}
	return mode, stages, nil
}

func (r *repl) reset(ctx context.Context, _ string) error {
	if r.app.glossary.IsDirty() {
		ok, err := r.app.console.Confirm("Discard unsaved changes?")
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if !ok {
			r.app.console.Info("Nothing reset.")
			return nil
		}
	}

	report, err := r.app.glossary.Reset(ctx)
	if err != nil {
		return err
	}
	for _, skipped := range report.Skipped {
		r.app.console.Warn("Line %d discarded (%s): %s", skipped.Line, skipped.Reason, skipped.Text)
	}
	r.app.console.Info("%d keywords imported from %s.", report.Records, report.ImportPath)
	return nil
}

func (r *repl) save(ctx context.Context, _ string) error {
	if err := r.app.glossary.Save(ctx); err != nil {
		return err
	}
	r.app.console.Info("Saved.")
	return nil
}

// quit saves pending changes. The save is mandatory: when it fails the error
// is returned instead of errQuit so the process exits non-zero.
func (r *repl) quit(ctx context.Context, _ string) error {
	if r.app.glossary.IsDirty() {
		if err := r.app.glossary.Save(ctx); err != nil {
			return fmt.Errorf("%w: %w", errFinalSave, err)
		}
		r.app.console.Info("Changes saved.")
	}
	return errQuit
}

// require returns value, or reads it from the console when it is blank.
func (r *repl) require(value, prompt string) (string, error) {
	for strings.TrimSpace(value) == "" {
		line, err := r.app.console.ReadLine(prompt)
		if err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingArgument, strings.TrimSuffix(prompt, " > "))
		}
		value = line
	}
	return value, nil
}

// printer is the output side of the console.
type printer interface {
	Printf(format string, args ...any)
}

func printRecords(p printer, records []*domain.Record) {
	for _, record := range records {
		p.Printf("%s\n", record.Keyword)
		for i, def := range record.Definitions {
			p.Printf("  %d. %s\n", i+1, def)
		}
	}
}
