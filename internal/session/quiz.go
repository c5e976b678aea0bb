package session

import (
	"github.com/phrazzld/glossary/internal/domain/quiz"
)

// RunQuiz asks every question of q and returns the chosen 0-based slots in
// question order. Invalid answers are re-asked. An input error, io.EOF
// included, aborts the quiz and is returned.
func RunQuiz(p Prompter, q *quiz.Quiz) ([]int, error) {
	choices := make([]int, 0, q.Stages())

	for i, question := range q.Questions {
		p.Printf("\nQuestion %d/%d: %s\n", i+1, q.Stages(), question.Prompt(q.Mode))
		for slot, option := range question.Options {
			p.Printf("  %s) %s\n", quiz.OptionLabel(slot), option)
		}

		choice, err := askChoice(p, len(question.Options))
		if err != nil {
			return nil, err
		}
		choices = append(choices, choice)

		if question.IsCorrect(choice) {
			p.Info("Correct!")
		} else {
			p.Warn("Wrong, the answer is %s) %s",
				quiz.OptionLabel(question.Answer), question.Options[question.Answer])
		}
	}

	return choices, nil
}

func askChoice(p Prompter, optionCount int) (int, error) {
	for {
		line, err := p.ReadLine("answer > ")
		if err != nil {
			return 0, err
		}

		choice, err := quiz.ParseChoice(line, optionCount)
		if err != nil {
			p.Warn("%v, answer A-%s or 1-%d", err, quiz.OptionLabel(optionCount-1), optionCount)
			continue
		}
		return choice, nil
	}
}
