package session

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/glossary/internal/domain"
)

// EditState is the state of an EditSession.
type EditState int

// Possible edit states
const (
	// Listing shows the definitions and the command menu.
	Listing EditState = iota
	// AwaitingCommand waits for the next command.
	AwaitingCommand
	// ConfirmingDelete waits for a yes/no answer about a pending delete.
	ConfirmingDelete
	// Done is terminal.
	Done
)

// String returns the state name.
func (s EditState) String() string {
	switch s {
	case Listing:
		return "listing"
	case AwaitingCommand:
		return "awaiting command"
	case ConfirmingDelete:
		return "confirming delete"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// EditAction tells the caller what a handled line did.
type EditAction int

// Possible edit actions
const (
	ActionNone EditAction = iota
	ActionPrint
	ActionHelp
	ActionChanged
	ActionConfirmDelete
	ActionDeleted
	ActionDeleteDeclined
	ActionQuit
)

// RecordEditor is the part of the record store an edit session needs.
type RecordEditor interface {
	Get(keyword string) (*domain.Record, error)
	ReplaceDefinitions(keyword string, definitions []string) error
}

const editHelp = `print, p           show the definitions (also an empty line)
change, c <n> <t>  replace definition n with text t
delete, d <n>      delete definition n
help, h            show this help
quit, q            leave the editor`

// EditSession edits the definitions of one record. Every successful change or
// delete is written to the store immediately.
type EditSession struct {
	editor        RecordEditor
	record        *domain.Record
	state         EditState
	pendingDelete int
}

// NewEditSession starts a session in the Listing state.
func NewEditSession(editor RecordEditor, keyword string) (*EditSession, error) {
	record, err := editor.Get(keyword)
	if err != nil {
		return nil, err
	}
	return &EditSession{editor: editor, record: record, state: Listing}, nil
}

// State returns the current state.
func (s *EditSession) State() EditState {
	return s.state
}

// Record returns a copy of the record as currently stored.
func (s *EditSession) Record() *domain.Record {
	return s.record.Clone()
}

// PendingDelete returns the 1-based index awaiting confirmation, or 0.
func (s *EditSession) PendingDelete() int {
	return s.pendingDelete
}

// Listed acknowledges that the definitions were shown.
func (s *EditSession) Listed() {
	if s.state == Listing {
		s.state = AwaitingCommand
	}
}

// Handle feeds one input line to the session. On error the state and the
// record are unchanged.
func (s *EditSession) Handle(line string) (EditAction, error) {
	switch s.state {
	case Listing, AwaitingCommand:
		return s.handleCommand(line)
	case ConfirmingDelete:
		return s.handleConfirmation(line)
	default:
		return ActionNone, nil
	}
}

func (s *EditSession) handleCommand(line string) (EditAction, error) {
	cmd, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(cmd) {
	case "", "print", "p":
		s.state = Listing
		return ActionPrint, nil
	case "help", "h":
		return ActionHelp, nil
	case "quit", "q":
		s.state = Done
		return ActionQuit, nil
	case "change", "c":
		return s.change(args)
	case "delete", "d":
		return s.requestDelete(args)
	default:
		return ActionNone, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd)
	}
}

func (s *EditSession) change(args string) (EditAction, error) {
	indexArg, text, _ := strings.Cut(args, " ")
	index, err := parseIndex(indexArg)
	if err != nil {
		return ActionNone, err
	}
	if strings.TrimSpace(text) == "" {
		return ActionNone, fmt.Errorf("%w: change needs the new definition text", domain.ErrMissingArgument)
	}

	updated := s.record.Clone()
	if err := updated.ReplaceDefinition(index, text); err != nil {
		return ActionNone, err
	}
	if err := s.editor.ReplaceDefinitions(updated.Keyword, updated.Definitions); err != nil {
		return ActionNone, err
	}

	s.record = updated
	s.state = Listing
	return ActionChanged, nil
}

func (s *EditSession) requestDelete(args string) (EditAction, error) {
	index, err := parseIndex(args)
	if err != nil {
		return ActionNone, err
	}

	// Validate against a copy so the prompt is only shown for a delete that
	// can succeed.
	if err := s.record.Clone().RemoveDefinition(index); err != nil {
		return ActionNone, err
	}

	s.pendingDelete = index
	s.state = ConfirmingDelete
	return ActionConfirmDelete, nil
}

func (s *EditSession) handleConfirmation(line string) (EditAction, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
	case "n", "no", "":
		s.pendingDelete = 0
		s.state = AwaitingCommand
		return ActionDeleteDeclined, nil
	default:
		return ActionNone, fmt.Errorf("%w: %q, answer y or n", domain.ErrUnknownOption, line)
	}

	updated := s.record.Clone()
	if err := updated.RemoveDefinition(s.pendingDelete); err != nil {
		return ActionNone, err
	}
	if err := s.editor.ReplaceDefinitions(updated.Keyword, updated.Definitions); err != nil {
		return ActionNone, err
	}

	s.record = updated
	s.pendingDelete = 0
	s.state = Listing
	return ActionDeleted, nil
}

func parseIndex(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("%w: definition number", domain.ErrMissingArgument)
	}
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidIndex, arg)
	}
	return index, nil
}

// Run drives the session against p until the user quits or the input ends.
func (s *EditSession) Run(p Prompter) error {
	for s.State() != Done {
		if s.State() == Listing {
			p.Info("Editing '%s':", s.record.Keyword)
			printDefinitions(p, s.record)
			s.Listed()
		}

		prompt := "edit > "
		if s.State() == ConfirmingDelete {
			prompt = fmt.Sprintf("(?) Delete definition %d? [y/N] ", s.PendingDelete())
		}

		line, err := p.ReadLine(prompt)
		if errors.Is(err, io.EOF) {
			s.state = Done
			return nil
		}
		if err != nil {
			return err
		}

		action, err := s.Handle(line)
		if errors.Is(err, domain.ErrLastDefinition) {
			p.Warn("%v, use 'delete %s' to remove the keyword", err, s.record.Keyword)
			continue
		}
		if err != nil {
			p.Warn("%v", err)
			continue
		}

		switch action {
		case ActionHelp:
			p.Printf("%s\n", editHelp)
		case ActionChanged:
			p.Info("Definition changed.")
		case ActionDeleted:
			p.Info("Definition deleted.")
		case ActionDeleteDeclined:
			p.Info("Nothing deleted.")
		}
	}
	return nil
}
