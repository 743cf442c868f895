package session

import (
	"context"
	"fmt"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Mark is the correctness highlight of one option.
type Mark int

const (
	MarkNone Mark = iota
	// MarkSelected is a chosen option whose correctness is not known.
	MarkSelected
	MarkCorrect
	MarkIncorrect
)

// Feedback is the grading feedback shown for a question.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackIncorrect
)

// OptionView is one option as presented to the learner.
type OptionView struct {
	Key         string
	Text        string
	Interactive bool
	Selected    bool
	Mark        Mark
}

// QuestionView is everything the presentation layer needs to render the
// current question.
type QuestionView struct {
	Question *quiz.Question
	Index    int
	Total    int

	// Record is the answer that governs submissions in the active
	// progression: the ledger entry in ephemeral mode, lastChoice otherwise.
	Record *quiz.AnswerRecord

	// Prior is the durable answer shown as history in an ephemeral
	// progression. It never blocks a submission.
	Prior *quiz.AnswerRecord

	// Suppressed is set when the load hid Prior.
	Suppressed bool

	Reveal   bool
	Starred  bool
	InFlight bool

	// Disclosed reports whether the answer key is known and may be shown.
	Disclosed bool

	Options     []OptionView
	Feedback    Feedback
	Explanation string
}

// Answered reports whether the governing record exists.
func (v *QuestionView) Answered() bool {
	return v.Record != nil
}

// Interactive reports whether any option accepts input.
func (v *QuestionView) Interactive() bool {
	for _, o := range v.Options {
		if o.Interactive {
			return true
		}
	}
	return false
}

// LoadQuestion fetches the question under the cursor and builds its view.
// The first fetch asks for the answer only in reveal mode. When a record is
// displayed and the answer is missing, the question is fetched again with
// disclosure. If that fails the view is returned without highlighting.
//
// A load whose question is no longer under the cursor when it completes
// returns ErrStale and leaves the session and the gate untouched.
func (s *Session) LoadQuestion(ctx context.Context) (*QuestionView, error) {
	s.mu.Lock()
	if s.pos < 0 || s.pos >= len(s.res.List) {
		s.mu.Unlock()
		return nil, ErrNoQuestion
	}
	id := s.res.List[s.pos]
	reveal := s.res.Reveal
	s.mu.Unlock()

	q, err := s.gw.FetchQuestion(ctx, id, reveal)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", id, err)
	}

	s.mu.Lock()
	if !s.underCursor(id) {
		s.mu.Unlock()
		return nil, fmt.Errorf("load question %s: %w", id, ErrStale)
	}
	suppressed := s.gate.Pending()
	_, hasRecord := s.record(id)
	hasPrior := false
	if s.res.Ephemeral && !suppressed {
		_, hasPrior = s.mirror.LastChoice(id)
	}
	s.mu.Unlock()

	authorized := reveal || hasRecord || hasPrior
	switch {
	case !authorized && q.Answer != nil:
		q = q.Redacted()
	case authorized && q.Answer == nil:
		if full, err := s.gw.FetchQuestion(ctx, id, true); err == nil && full.Answer != nil {
			ans := *full.Answer
			q.Answer = &ans
			if q.Explanation == "" {
				q.Explanation = full.Explanation
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The cursor may have moved during the disclosure fetch.
	if !s.underCursor(id) {
		return nil, fmt.Errorf("load question %s: %w", id, ErrStale)
	}
	s.gate.Observe()
	s.current = q
	s.suppressed = suppressed
	return s.view(q), nil
}

// underCursor reports whether id is the question at the current position.
// The caller holds s.mu.
func (s *Session) underCursor(id quiz.QuestionID) bool {
	return s.pos >= 0 && s.pos < len(s.res.List) && s.res.List[s.pos] == id
}

// Current returns the view of the last loaded question.
func (s *Session) Current() (*QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoQuestion
	}
	return s.view(s.current), nil
}

// view builds the presentation of q from the current state. Callers hold mu.
func (s *Session) view(q *quiz.Question) *QuestionView {
	v := &QuestionView{
		Question:   q,
		Index:      s.indexOf(q.ID),
		Total:      len(s.res.List),
		Suppressed: s.suppressed && s.current != nil && s.current.ID == q.ID,
		Reveal:     s.res.Reveal,
		Starred:    s.mirror.IsStarred(q.ID),
		InFlight:   s.inflight[q.ID],
		Disclosed:  q.Answer != nil,
	}
	if rec, ok := s.record(q.ID); ok {
		v.Record = &rec
	}
	if s.res.Ephemeral && !v.Suppressed {
		if rec, ok := s.mirror.LastChoice(q.ID); ok {
			v.Prior = &rec
		}
	}

	shown := v.Record
	if shown == nil {
		shown = v.Prior
	}
	interactive := !v.Reveal && v.Record == nil && !v.InFlight

	v.Options = make([]OptionView, len(q.Options))
	for i, o := range q.Options {
		ov := OptionView{Key: o.Key, Text: o.Text, Interactive: interactive}
		if shown != nil {
			ov.Selected = shown.Selected.Contains(o.Key)
		}
		ov.Mark = markOption(o.Key, q.Answer, shown, v.Reveal)
		v.Options[i] = ov
	}

	if shown != nil && !v.Reveal {
		if shown.Correct {
			v.Feedback = FeedbackCorrect
		} else {
			v.Feedback = FeedbackIncorrect
		}
	}
	if s.flags.ShowExplanations && v.Disclosed {
		v.Explanation = q.Explanation
	}
	return v
}

func markOption(key string, answer *quiz.Selection, shown *quiz.AnswerRecord, reveal bool) Mark {
	if answer == nil {
		if shown != nil && shown.Selected.Contains(key) {
			return MarkSelected
		}
		return MarkNone
	}
	correct := answer.Contains(key)
	switch {
	case reveal:
		if correct {
			return MarkCorrect
		}
		return MarkIncorrect
	case shown == nil:
		return MarkNone
	case correct:
		return MarkCorrect
	case shown.Selected.Contains(key):
		return MarkIncorrect
	}
	return MarkNone
}

func (s *Session) indexOf(id quiz.QuestionID) int {
	if s.pos >= 0 && s.pos < len(s.res.List) && s.res.List[s.pos] == id {
		return s.pos
	}
	for i, qid := range s.res.List {
		if qid == id {
			return i
		}
	}
	return -1
}

// ItemStatus is the list-grid state of one question of the progression.
type ItemStatus struct {
	ID       quiz.QuestionID
	Index    int
	Answered bool
	Correct  bool
	Starred  bool
	Active   bool
}

// ListStatus reports the status of every question in the active list.
// Answered and Correct follow the governing record of each question.
func (s *Session) ListStatus() []ItemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ItemStatus, len(s.res.List))
	for i, id := range s.res.List {
		st := ItemStatus{
			ID:      id,
			Index:   i,
			Starred: s.mirror.IsStarred(id),
			Active:  i == s.pos,
		}
		if rec, ok := s.record(id); ok {
			st.Answered = true
			st.Correct = rec.Correct
		}
		out[i] = st
	}
	return out
}
