package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Op names a gateway operation for call recording and fault injection.
type Op string

const (
	OpFetchUserData Op = "fetch-user-data"
	OpFetchFlags    Op = "fetch-flags"
	OpFetchQuestion Op = "fetch-question"
	OpSubmitAnswer  Op = "submit-answer"
	OpToggleStar    Op = "toggle-star"
	OpSaveProgress  Op = "save-progress"
)

// Call is one recorded invocation on a Mock.
type Call struct {
	Op        Op
	ID        quiz.QuestionID
	Reveal    bool
	Selection quiz.Selection
	Key       quiz.ProgressionKey
	Pos       int
}

// Mock is a deterministic in-memory Gateway for tests. It grades against
// the answers of its registered questions unless a grade was queued, and
// keeps its own copy of the user document so callers never share state
// with it.
type Mock struct {
	mu        sync.Mutex
	user      *quiz.UserData
	flags     quiz.Flags
	questions map[quiz.QuestionID]*quiz.Question
	grades    []quiz.Grade
	failures  map[Op][]error
	calls     []Call
}

var _ Gateway = (*Mock)(nil)

// NewMock creates a Mock serving ud and questions.
func NewMock(ud *quiz.UserData, questions ...*quiz.Question) *Mock {
	if ud == nil {
		ud = quiz.NewUserData()
	}
	m := &Mock{
		user:      cloneUserData(ud),
		flags:     ud.Flags,
		questions: make(map[quiz.QuestionID]*quiz.Question),
		failures:  make(map[Op][]error),
	}
	for _, q := range questions {
		m.questions[q.ID] = q
	}
	return m
}

// SetFlags replaces the flags returned by FetchFlags.
func (m *Mock) SetFlags(f quiz.Flags) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = f
}

// QueueGrade makes the next SubmitAnswer return g instead of grading.
func (m *Mock) QueueGrade(g quiz.Grade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grades = append(m.grades, g)
}

// FailNext makes the next call of op fail with err. Failures queue up.
func (m *Mock) FailNext(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// Calls returns the recorded calls of op, or all calls when op is "".
func (m *Mock) Calls(op Op) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the number of calls of op.
func (m *Mock) CallCount(op Op) int {
	return len(m.Calls(op))
}

// Starred reports the mock's own star state for id.
func (m *Mock) Starred(id quiz.QuestionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Global.Star.Has(id)
}

// record appends c and pops a queued failure for its op. Callers hold mu.
func (m *Mock) record(c Call) error {
	m.calls = append(m.calls, c)
	if errs := m.failures[c.Op]; len(errs) > 0 {
		m.failures[c.Op] = errs[1:]
		return errs[0]
	}
	return nil
}

func (m *Mock) FetchUserData(_ context.Context) (*quiz.UserData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpFetchUserData}); err != nil {
		return nil, err
	}
	return cloneUserData(m.user), nil
}

func (m *Mock) FetchFlags(_ context.Context) (quiz.Flags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpFetchFlags}); err != nil {
		return quiz.Flags{}, err
	}
	return m.flags, nil
}

func (m *Mock) FetchQuestion(_ context.Context, id quiz.QuestionID, reveal bool) (*quiz.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpFetchQuestion, ID: id, Reveal: reveal}); err != nil {
		return nil, err
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, &ErrStatus{Code: 404, Message: fmt.Sprintf("no question %s", id)}
	}
	if reveal {
		c := *q
		return &c, nil
	}
	return q.Redacted(), nil
}

func (m *Mock) SubmitAnswer(_ context.Context, id quiz.QuestionID, sel quiz.Selection) (quiz.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpSubmitAnswer, ID: id, Selection: sel}); err != nil {
		return quiz.Grade{}, err
	}
	var g quiz.Grade
	if len(m.grades) > 0 {
		g, m.grades = m.grades[0], m.grades[1:]
	} else {
		q, ok := m.questions[id]
		if !ok || q.Answer == nil {
			return quiz.Grade{}, &ErrStatus{Code: 404, Message: fmt.Sprintf("no question %s", id)}
		}
		g = quiz.Grade{Correct: q.Answer.Equal(sel), Answer: *q.Answer}
	}
	m.user.LastChoice[id] = quiz.AnswerRecord{Correct: g.Correct, Selected: sel}
	return g, nil
}

func (m *Mock) ToggleStar(_ context.Context, id quiz.QuestionID) (quiz.StarResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpToggleStar, ID: id}); err != nil {
		return quiz.StarResult{}, err
	}
	if m.user.Global.Star.Remove(id) {
		return quiz.StarResult{Starred: false}, nil
	}
	m.user.Global.Star.Add(id)
	return quiz.StarResult{Starred: true}, nil
}

func (m *Mock) SaveProgress(_ context.Context, key quiz.ProgressionKey, pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpSaveProgress, Key: key, Pos: pos}); err != nil {
		return err
	}
	if st, ok := m.user.Progressions.Get(key); ok {
		st.Position = pos
	}
	m.user.SetActive(key)
	return nil
}

func cloneUserData(ud *quiz.UserData) *quiz.UserData {
	raw, err := json.Marshal(ud)
	if err != nil {
		panic(fmt.Sprintf("gateway mock: marshal user data: %v", err))
	}
	out, err := quiz.DecodeUserData(raw)
	if err != nil {
		panic(fmt.Sprintf("gateway mock: decode user data: %v", err))
	}
	return out
}
