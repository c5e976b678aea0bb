package quiz

import (
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilSource      = errors.New("quiz source cannot be nil")
	ErrNilQuiz        = errors.New("quiz cannot be nil")
	ErrInvalidMode    = errors.New("invalid quiz mode")
	ErrAnswerMismatch = errors.New("number of answers does not match number of questions")
)

// Service defines the interface for quiz generation and scoring
type Service interface {
	// Generate samples records from src into a quiz of the requested size.
	// The stage count is clamped into the configured range.
	Generate(src Source, mode Mode, stages int) (*Quiz, error)

	// Score grades one 0-based choice per question.
	Score(q *Quiz, choices []int) (*Result, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	rng    Rand
}

// NewServiceWithParams creates a new quiz service. Nil params fall back to
// NewDefaultParams().
func NewServiceWithParams(params *Params, rng Rand) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
		rng:    rng,
	}
}

// Generate implements the Service interface
func (s *defaultService) Generate(src Source, mode Mode, stages int) (*Quiz, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	return generate(src, s.rng, mode, stages, s.params)
}

// Score implements the Service interface
func (s *defaultService) Score(q *Quiz, choices []int) (*Result, error) {
	if q == nil {
		return nil, ErrNilQuiz
	}

	if len(choices) != q.Stages() {
		return nil, ErrAnswerMismatch
	}

	correct := 0
	for i, question := range q.Questions {
		if question.IsCorrect(choices[i]) {
			correct++
		}
	}

	return &Result{
		ID:      uuid.New(),
		Mode:    q.Mode,
		Stages:  q.Stages(),
		Correct: correct,
		Score:   Percent(correct, q.Stages()),
	}, nil
}
