package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/quizmate/internal/quiz"
)

var (
	// ErrAlreadyAnswered matches every *AlreadyAnsweredError.
	ErrAlreadyAnswered = errors.New("already answered")

	// ErrInFlight is returned when a submission for the same question is
	// still waiting for the gateway.
	ErrInFlight = errors.New("answer submission in flight")

	// ErrInvalidSelection is returned for selections that do not fit the
	// question type or name unknown options.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNoQuestion is returned when there is no loaded question to act on.
	ErrNoQuestion = errors.New("no question")

	// ErrStale is returned by LoadQuestion when the cursor moved to another
	// question before the load completed.
	ErrStale = errors.New("question no longer under the cursor")

	// ErrOutOfRange is returned by Jump for indexes outside the list.
	ErrOutOfRange = errors.New("index out of range")
)

// Scope tells which answer partition rejected a submission.
type Scope int

const (
	ScopeDurable Scope = iota
	ScopeEphemeral
)

func (s Scope) String() string {
	if s == ScopeEphemeral {
		return "ephemeral"
	}
	return "durable"
}

// AlreadyAnsweredError is returned when a question already has a record in
// the partition that governs the active progression. No request was made.
type AlreadyAnsweredError struct {
	ID    quiz.QuestionID
	Scope Scope
}

func (e *AlreadyAnsweredError) Error() string {
	if e.Scope == ScopeEphemeral {
		return fmt.Sprintf("question %s already answered in this review", e.ID)
	}
	return fmt.Sprintf("question %s already has an answer on record", e.ID)
}

func (e *AlreadyAnsweredError) Is(target error) bool {
	return target == ErrAlreadyAnswered
}
