package session

import (
	"context"
	"fmt"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Submit sends a selection for the loaded question id and records the
// gateway's verdict. A question is answered at most once per partition:
// durable progressions check lastChoice, ephemeral ones check their own
// ledger. Rejections make no request.
//
// Durable answers update lastChoice and the wrong list and checkpoint the
// position. Ephemeral answers are written to the ledger only. When the
// gateway fails nothing is written and the question stays answerable.
func (s *Session) Submit(ctx context.Context, id quiz.QuestionID, sel quiz.Selection) (*QuestionView, error) {
	s.mu.Lock()
	q := s.current
	if q == nil || q.ID != id {
		s.mu.Unlock()
		return nil, fmt.Errorf("submit %s: %w", id, ErrNoQuestion)
	}
	if s.res.Ephemeral {
		if s.ledger.Has(id) {
			s.mu.Unlock()
			return nil, &AlreadyAnsweredError{ID: id, Scope: ScopeEphemeral}
		}
	} else if _, ok := s.mirror.LastChoice(id); ok {
		s.mu.Unlock()
		return nil, &AlreadyAnsweredError{ID: id, Scope: ScopeDurable}
	}
	if s.inflight[id] {
		s.mu.Unlock()
		return nil, fmt.Errorf("submit %s: %w", id, ErrInFlight)
	}
	sel, err := normalizeSelection(q, sel)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("submit %s: %w", id, err)
	}
	s.inflight[id] = true
	s.mu.Unlock()

	// The write completes even if the caller stops waiting.
	grade, err := s.gw.SubmitAnswer(context.WithoutCancel(ctx), id, sel)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", id, err)
	}

	rec := quiz.AnswerRecord{Correct: grade.Correct, Selected: sel}
	if s.res.Ephemeral {
		s.ledger.Record(id, rec)
	} else {
		s.mirror.RecordAnswer(id, rec)
		s.checkpoint()
	}

	if q.Answer == nil && !grade.Answer.IsZero() {
		ans := grade.Answer
		q.Answer = &ans
	}
	return s.view(q), nil
}

// normalizeSelection checks sel against the question type and options.
// A single key given for a multi-select question becomes a one-key set.
func normalizeSelection(q *quiz.Question, sel quiz.Selection) (quiz.Selection, error) {
	if sel.IsZero() {
		return sel, fmt.Errorf("empty selection: %w", ErrInvalidSelection)
	}
	switch q.Type {
	case quiz.SingleChoice, quiz.TrueFalse:
		if sel.IsMulti() {
			return sel, fmt.Errorf("%s question takes one option: %w", q.Type.Label(), ErrInvalidSelection)
		}
	case quiz.MultiSelect:
		if !sel.IsMulti() {
			sel = quiz.Multi(sel.Key())
		}
	default:
		return sel, fmt.Errorf("unknown question type %d: %w", q.Type, ErrInvalidSelection)
	}
	for _, k := range sel.Keys() {
		if !q.Options.Has(k) {
			return sel, fmt.Errorf("option %q: %w", k, ErrInvalidSelection)
		}
	}
	return sel, nil
}
