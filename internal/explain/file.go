package explain

import (
	"errors"
	"io/fs"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/quiz"
)

// Load reads an explanation file. A missing file is an empty set.
func Load(path string) (map[quiz.QuestionID]string, error) {
	exps, err := bank.ReadExplanations(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[quiz.QuestionID]string{}, nil
	}
	return exps, err
}

// Save writes the explanations of res in course order.
func Save(path string, course *bank.Course, res *Result) error {
	return bank.WriteExplanations(path, course.IDs(), res.Explanations)
}
