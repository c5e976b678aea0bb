package quiz

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/glossary/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(nil, rand.New(rand.NewSource(1)))
	if service == nil {
		t.Fatal("Expected non-nil service")
	}

	defaultService, ok := service.(*defaultService)
	if !ok {
		t.Fatal("Expected *defaultService type")
	}

	if defaultService.params == nil {
		t.Fatal("Expected non-nil params")
	}
	assert.Equal(t, NewDefaultParams(), defaultService.params)

	custom := NewParams(ParamsConfig{Options: 3})
	q, err := NewServiceWithParams(custom, rand.New(rand.NewSource(1))).Generate(newSource(5), ModeKeyword, 2)
	require.NoError(t, err)
	for _, question := range q.Questions {
		assert.Len(t, question.Options, 3)
	}
}

func TestServiceGenerateValidation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(nil, rand.New(rand.NewSource(1)))

	_, err := service.Generate(nil, ModeKeyword, 5)
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = service.Generate(newSource(5), Mode("both"), 5)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestServiceScore(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(nil, rand.New(rand.NewSource(1)))

	q := &Quiz{Mode: ModeKeyword}
	for i := 0; i < 8; i++ {
		q.Questions = append(q.Questions, Question{
			Options: []string{"w", "x", "y", "z"},
			Answer:  i % 4,
		})
	}

	// six correct, two wrong
	choices := make([]int, 8)
	for i := range choices {
		choices[i] = i % 4
	}
	choices[0] = 3
	choices[5] = 0

	result, err := service.Score(q, choices)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Correct)
	assert.Equal(t, 8, result.Stages)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, ModeKeyword, result.Mode)
	assert.NotEqual(t, uuid.Nil, result.ID)

	_, err = service.Score(q, choices[:3])
	assert.ErrorIs(t, err, ErrAnswerMismatch)

	_, err = service.Score(nil, nil)
	assert.ErrorIs(t, err, ErrNilQuiz)
}

func TestServiceScoreDuplicateCorrectText(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(nil, rand.New(rand.NewSource(1)))

	q := &Quiz{Mode: ModeKeyword, Questions: []Question{
		{Options: []string{"cat", "dog", "cat", "cow"}, Answer: 0},
	}}

	result, err := service.Score(q, []int{2})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 100, result.Score)
}

func TestParseMode(t *testing.T) {
	t.Parallel() // Enable parallel execution

	for input, want := range map[string]Mode{
		"key": ModeKeyword, "Keyword": ModeKeyword, "k": ModeKeyword,
		"def": ModeDefinition, "definition": ModeDefinition, " d ": ModeDefinition,
	} {
		got, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseMode("trivia")
	assert.ErrorIs(t, err, domain.ErrUnknownOption)
}

func TestParseChoice(t *testing.T) {
	t.Parallel() // Enable parallel execution

	for input, want := range map[string]int{
		"a": 0, "A": 0, "1": 0,
		"b": 1, "B": 1, "2": 1,
		"c": 2, "C": 2, "3": 2,
		"d": 3, "D": 3, "4": 3,
	} {
		got, err := ParseChoice(input, 4)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "e", "E", "5", "0", "ab", "?"} {
		_, err := ParseChoice(input, 4)
		assert.ErrorIs(t, err, domain.ErrUnknownOption, input)
	}

	assert.Equal(t, "A", OptionLabel(0))
	assert.Equal(t, "D", OptionLabel(3))
}
