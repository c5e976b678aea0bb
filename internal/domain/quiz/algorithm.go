package quiz

import (
	"fmt"
	"math"
	"slices"

	"github.com/phrazzld/glossary/internal/domain"
)

// Source is the read side of the glossary the quiz samples from. Records are
// addressed by dense insertion ids in [0, Size()).
type Source interface {
	Size() int
	ByInsertionID(id int) (*domain.Record, error)
}

// Rand is the randomness the generator draws from. *math/rand.Rand satisfies it.
type Rand interface {
	// Intn returns a non-negative pseudo-random number in [0, n).
	Intn(n int) int
}

// generate builds a quiz of params-clamped size from src.
//
// Records are sampled by insertion id without repeats, unless the glossary is
// smaller than the stage count, in which case repeats are allowed. Distractors
// never repeat within a question or equal the correct answer, unless the
// glossary is undersized or there are not enough distinct distractor values to
// fill the options; then any drawn value is accepted.
func generate(src Source, rng Rand, mode Mode, stages int, params *Params) (*Quiz, error) {
	size := src.Size()
	if size == 0 {
		return nil, domain.ErrEmptyStore
	}

	stages = params.ClampStages(stages)
	undersized := size < stages

	ids := sampleIDs(rng, size, stages, undersized)
	questions := make([]Question, 0, len(ids))
	for _, id := range ids {
		record, err := src.ByInsertionID(id)
		if err != nil {
			return nil, fmt.Errorf("sample record %d: %w", id, err)
		}

		definition := record.Definitions[rng.Intn(len(record.Definitions))]
		question, err := buildQuestion(src, rng, mode, record, definition, undersized, params.Options)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	return &Quiz{Mode: mode, Questions: questions}, nil
}

// sampleIDs draws n insertion ids from [0, size). Ids are distinct unless
// allowRepeats is set.
func sampleIDs(rng Rand, size, n int, allowRepeats bool) []int {
	ids := make([]int, 0, n)
	seen := make(map[int]bool, n)
	for len(ids) < n {
		id := rng.Intn(size)
		if !allowRepeats && seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func buildQuestion(
	src Source,
	rng Rand,
	mode Mode,
	record *domain.Record,
	definition string,
	undersized bool,
	optionCount int,
) (Question, error) {
	question := Question{
		Keyword:    record.Keyword,
		Definition: definition,
		Options:    make([]string, optionCount),
		Answer:     rng.Intn(optionCount),
	}

	correct := record.Keyword
	if mode == ModeDefinition {
		correct = definition
	}

	enough, err := hasDistinctDistractors(src, mode, record.Keyword, correct, optionCount-1)
	if err != nil {
		return Question{}, err
	}
	tolerateRepeats := undersized || !enough

	for slot := range question.Options {
		if slot == question.Answer {
			question.Options[slot] = correct
			continue
		}

		for {
			owner, candidate, err := drawDistractor(src, rng, mode)
			if err != nil {
				return Question{}, err
			}
			if tolerateRepeats {
				question.Options[slot] = candidate
				break
			}
			if owner == record.Keyword || candidate == correct || slices.Contains(question.Options[:slot], candidate) {
				continue
			}
			question.Options[slot] = candidate
			break
		}
	}

	return question, nil
}

// drawDistractor picks a random record and returns its keyword and the
// candidate value for the mode.
func drawDistractor(src Source, rng Rand, mode Mode) (string, string, error) {
	id := rng.Intn(src.Size())
	record, err := src.ByInsertionID(id)
	if err != nil {
		return "", "", fmt.Errorf("draw distractor %d: %w", id, err)
	}

	if mode == ModeDefinition {
		return record.Keyword, record.Definitions[rng.Intn(len(record.Definitions))], nil
	}
	return record.Keyword, record.Keyword, nil
}

// hasDistinctDistractors reports whether at least need distinct values, not
// owned by keyword and different from correct, can be drawn for the mode.
func hasDistinctDistractors(src Source, mode Mode, keyword, correct string, need int) (bool, error) {
	if need <= 0 {
		return true, nil
	}

	values := make(map[string]struct{})
	for id := 0; id < src.Size(); id++ {
		record, err := src.ByInsertionID(id)
		if err != nil {
			return false, fmt.Errorf("scan record %d: %w", id, err)
		}
		if record.Keyword == keyword {
			continue
		}

		candidates := []string{record.Keyword}
		if mode == ModeDefinition {
			candidates = record.Definitions
		}
		for _, value := range candidates {
			if value == correct {
				continue
			}
			values[value] = struct{}{}
			if len(values) >= need {
				return true, nil
			}
		}
	}
	return false, nil
}

// Percent converts a number of correct answers into the reported score,
// round(correct * 100 / stages).
func Percent(correct, stages int) int {
	if stages <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(stages)))
}
