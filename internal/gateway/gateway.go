// Package gateway talks to the remote authority that stores learner state
// and grades answers.
package gateway

import (
	"context"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Gateway is the set of remote operations a quiz session depends on.
type Gateway interface {
	// FetchUserData returns the learner's durable document for the course.
	FetchUserData(ctx context.Context) (*quiz.UserData, error)

	// FetchFlags returns the learner's display preferences.
	FetchFlags(ctx context.Context) (quiz.Flags, error)

	// FetchQuestion returns a question. The answer is included only when
	// reveal is true.
	FetchQuestion(ctx context.Context, id quiz.QuestionID, reveal bool) (*quiz.Question, error)

	// SubmitAnswer grades a selection and records it durably server-side.
	SubmitAnswer(ctx context.Context, id quiz.QuestionID, sel quiz.Selection) (quiz.Grade, error)

	// ToggleStar flips the star state of a question.
	ToggleStar(ctx context.Context, id quiz.QuestionID) (quiz.StarResult, error)

	// SaveProgress stores the cursor of a progression and makes it current.
	SaveProgress(ctx context.Context, key quiz.ProgressionKey, pos int) error
}

// StartMode selects how StartProgression builds its list.
type StartMode string

const (
	ModeSequential StartMode = "sequential"
	ModeTag        StartMode = "tag"
	ModeRandom     StartMode = "random"
)

// StartRequest asks the gateway to create or resume a progression.
type StartRequest struct {
	Mode   StartMode `json:"mode"`
	Unit   string    `json:"unit,omitempty"`
	Tag    string    `json:"tag,omitempty"`
	Count  int       `json:"count,omitempty"`
	Reveal *bool     `json:"reveal,omitempty"`
}

// StartResult describes the progression the gateway made current.
type StartResult struct {
	Key    quiz.ProgressionKey `json:"key"`
	Mode   StartMode           `json:"mode"`
	List   []quiz.QuestionID   `json:"list"`
	Pos    int                 `json:"pos"`
	Reveal bool                `json:"reveal"`
}

// Unit is a named group of questions in a course.
type Unit struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog covers the operations used by the menus around a session.
type Catalog interface {
	Units(ctx context.Context) ([]Unit, error)
	StartProgression(ctx context.Context, req StartRequest) (*StartResult, error)
	ClearUnit(ctx context.Context, unit string) error
	UpdateFlags(ctx context.Context, flags map[string]bool) (quiz.Flags, error)
}
