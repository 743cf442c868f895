package explain

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizmate/internal/llm"
	"github.com/abhisek/quizmate/internal/quiz"
)

// MaxChars bounds the length of one explanation, counted in characters.
const MaxChars = 100

const systemPrompt = `You write answer explanations for a multiple-choice exam trainer. Reply in the language of the question.`

// Schema is the structured output of one explanation request.
var Schema = &llm.Schema{
	Name:        "question-explanation",
	Description: "A short explanation of why the correct answer is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": fmt.Sprintf("Why the correct answer is correct, at most %d characters", MaxChars),
				"minLength":   1,
				"maxLength":   MaxChars,
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

func buildUserMessage(q *quiz.Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", q.Text)

	opts := q.Options
	if len(opts) == 0 && q.Type == quiz.TrueFalse {
		opts = quiz.TrueFalseOptions
	}
	if len(opts) > 0 {
		b.WriteString("\nOptions:\n")
		for _, o := range opts {
			fmt.Fprintf(&b, "%s. %s\n", o.Key, o.Text)
		}
	}

	answer := ""
	if q.Answer != nil {
		answer = q.Answer.String()
	}
	fmt.Fprintf(&b, "\nCorrect answer: %s\n", answer)

	fmt.Fprintf(&b, `
Instructions:
Write a short, precise explanation of at most %d characters.
1. Go straight to the point.
2. Say why this is the correct answer.
3. Do not restate which option is correct.`, MaxChars)

	return b.String()
}
