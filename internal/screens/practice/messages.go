package practice

import (
	sess "github.com/abhisek/quizmate/internal/session"
	"github.com/abhisek/quizmate/internal/quiz"
)

// openedMsg is sent when the session has been opened.
type openedMsg struct {
	Session *sess.Session
	Err     error
}

// loadedMsg carries the question loaded for cursor position Pos.
type loadedMsg struct {
	Pos  int
	View *sess.QuestionView
	Err  error
}

// submittedMsg is sent when a submission finished or was rejected.
type submittedMsg struct {
	ID   quiz.QuestionID
	View *sess.QuestionView
	Err  error
}

// starredMsg is sent when a star toggle finished.
type starredMsg struct {
	ID      quiz.QuestionID
	Starred bool
	Err     error
}
