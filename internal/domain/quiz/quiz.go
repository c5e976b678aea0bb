package quiz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/glossary/internal/domain"
)

// Mode selects what the player has to guess.
type Mode string

// Possible quiz modes
const (
	// ModeKeyword shows a definition and asks for the keyword.
	ModeKeyword Mode = "key"
	// ModeDefinition shows a keyword and asks for one of its definitions.
	ModeDefinition Mode = "def"
)

// ParseMode maps the command-line spelling of a quiz mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "key", "keyword", "k":
		return ModeKeyword, nil
	case "def", "definition", "d":
		return ModeDefinition, nil
	default:
		return "", fmt.Errorf("%w: quiz mode %q", domain.ErrUnknownOption, s)
	}
}

// Valid reports whether m is a known Mode.
func (m Mode) Valid() bool {
	return m == ModeKeyword || m == ModeDefinition
}

// Question is one multiple-choice question.
type Question struct {
	Keyword    string   // keyword of the sampled record
	Definition string   // the sampled definition of that record
	Options    []string // answer options in display order
	Answer     int      // 0-based slot of the correct option
}

// Prompt returns the text shown to the player for the given mode.
func (q Question) Prompt(mode Mode) string {
	if mode == ModeDefinition {
		return fmt.Sprintf("What is %s?", q.Keyword)
	}
	return q.Definition + ":"
}

// IsCorrect reports whether choice selects the correct answer. Options that
// repeat the correct text count as correct.
func (q Question) IsCorrect(choice int) bool {
	if choice < 0 || choice >= len(q.Options) {
		return false
	}
	return q.Options[choice] == q.Options[q.Answer]
}

// Quiz is a generated set of questions.
type Quiz struct {
	Mode      Mode
	Questions []Question
}

// Stages returns the number of questions.
func (q *Quiz) Stages() int {
	return len(q.Questions)
}

// Result is the outcome of a played quiz.
type Result struct {
	ID      uuid.UUID `json:"id"`
	Mode    Mode      `json:"mode"`
	Stages  int       `json:"stages"`
	Correct int       `json:"correct"`
	Score   int       `json:"score"`
}

// ParseChoice maps an answer letter (either case) or 1-based number to a
// 0-based option slot.
func ParseChoice(s string, optionCount int) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		c := s[0]
		switch {
		case c >= 'a' && int(c-'a') < optionCount:
			return int(c - 'a'), nil
		case c >= 'A' && int(c-'A') < optionCount:
			return int(c - 'A'), nil
		case c >= '1' && int(c-'1') < optionCount:
			return int(c - '1'), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownOption, s)
}

// OptionLabel returns the letter shown in front of the option at slot.
func OptionLabel(slot int) string {
	return string(rune('A' + slot))
}
