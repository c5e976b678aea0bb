package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

// AddOption is the answer to "the keyword exists, what now?".
type AddOption int

// Possible add options
const (
	AddCancel AddOption = iota
	AddOverwrite
	AddAppend
	AddHelp
)

// String returns the option name.
func (o AddOption) String() string {
	switch o {
	case AddCancel:
		return "cancel"
	case AddOverwrite:
		return "overwrite"
	case AddAppend:
		return "append"
	case AddHelp:
		return "help"
	default:
		return fmt.Sprintf("AddOption(%d)", int(o))
	}
}

// ParseAddOption maps a console answer. An empty answer cancels.
func ParseAddOption(s string) (AddOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return AddOverwrite, nil
	case "n", "no", "":
		return AddCancel, nil
	case "a", "append":
		return AddAppend, nil
	case "h", "help", "?":
		return AddHelp, nil
	default:
		return AddCancel, fmt.Errorf("%w: %q", domain.ErrUnknownOption, s)
	}
}

// AddOutcome says what Add did.
type AddOutcome int

// Possible add outcomes
const (
	AddCancelled AddOutcome = iota
	AddInserted
	AddOverwritten
	AddAppended
)

// String returns a past-tense description of the outcome.
func (o AddOutcome) String() string {
	switch o {
	case AddInserted:
		return "added"
	case AddOverwritten:
		return "overwritten"
	case AddAppended:
		return "appended"
	default:
		return "cancelled"
	}
}

// RecordWriter is the part of the record store the add flow needs.
type RecordWriter interface {
	Contains(keyword string) bool
	Get(keyword string) (*domain.Record, error)
	Put(record *domain.Record) error
	ReplaceDefinitions(keyword string, definitions []string) error
	AppendDefinitions(keyword string, definitions ...string) error
}

// Add stores definition under keyword. A new keyword is inserted whatever the
// option; an existing one is overwritten, appended to or left alone.
func Add(w RecordWriter, keyword, definition string, option AddOption) (AddOutcome, error) {
	record, err := domain.NewRecord(keyword, definition)
	if err != nil {
		return AddCancelled, err
	}

	if !w.Contains(record.Keyword) {
		if err := w.Put(record); err != nil {
			return AddCancelled, err
		}
		return AddInserted, nil
	}

	switch option {
	case AddOverwrite:
		if err := w.ReplaceDefinitions(record.Keyword, record.Definitions); err != nil {
			return AddCancelled, err
		}
		return AddOverwritten, nil
	case AddAppend:
		if err := w.AppendDefinitions(record.Keyword, record.Definitions...); err != nil {
			return AddCancelled, err
		}
		return AddAppended, nil
	case AddCancel:
		return AddCancelled, nil
	default:
		return AddCancelled, fmt.Errorf("%w: %s is not an action", domain.ErrUnknownOption, option)
	}
}

const addHelp = `y, yes     replace the existing definitions with the new one
n, no      keep the existing entry (default)
a, append  add the new definition after the existing ones
h, help    show this help`

// AddFlow asks for whatever Add needs that the caller did not supply.
type AddFlow struct {
	writer   RecordWriter
	prompter Prompter
}

// NewAddFlow creates an AddFlow.
func NewAddFlow(w RecordWriter, p Prompter) *AddFlow {
	return &AddFlow{writer: w, prompter: p}
}

// Run prompts for a missing keyword or definition and, when the keyword
// exists, for what to do with it. Running out of input cancels the flow.
func (f *AddFlow) Run(keyword, definition string) (AddOutcome, error) {
	var err error
	if keyword, err = f.ask("keyword > ", keyword); err != nil {
		return cancelOnEOF(err)
	}
	if definition, err = f.ask("definition > ", definition); err != nil {
		return cancelOnEOF(err)
	}

	keyword = strings.TrimSpace(keyword)
	option := AddCancel
	if f.writer.Contains(keyword) {
		existing, err := f.writer.Get(keyword)
		if err != nil {
			return AddCancelled, err
		}
		f.prompter.Info("'%s' already exists:", keyword)
		printDefinitions(f.prompter, existing)

		if option, err = f.askOption(keyword); err != nil {
			return cancelOnEOF(err)
		}
	}

	return Add(f.writer, keyword, definition, option)
}

func (f *AddFlow) ask(prompt, value string) (string, error) {
	for strings.TrimSpace(value) == "" {
		line, err := f.prompter.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		value = line
	}
	return value, nil
}

func (f *AddFlow) askOption(keyword string) (AddOption, error) {
	for {
		line, err := f.prompter.ReadLine(fmt.Sprintf("(?) Overwrite '%s'? [y/N/a/h] ", keyword))
		if err != nil {
			return AddCancel, err
		}

		option, err := ParseAddOption(line)
		if err != nil {
			f.prompter.Warn("%v", err)
			continue
		}
		if option == AddHelp {
			f.prompter.Printf("%s\n", addHelp)
			continue
		}
		return option, nil
	}
}

func cancelOnEOF(err error) (AddOutcome, error) {
	if errors.Is(err, io.EOF) {
		return AddCancelled, nil
	}
	return AddCancelled, err
}

// printDefinitions lists the definitions with their 1-based indexes.
func printDefinitions(p Prompter, record *domain.Record) {
	for i, def := range record.Definitions {
		p.Printf("  %d. %s\n", i+1, def)
	}
}
