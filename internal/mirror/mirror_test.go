package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmate/internal/quiz"
)

func TestMirror_RecordAnswerMaintainsWrongList(t *testing.T) {
	m := New(nil)

	m.RecordAnswer("q1", quiz.AnswerRecord{Correct: false, Selected: quiz.Single("A")})
	assert.True(t, m.IsWrong("q1"))
	m.RecordAnswer("q1", quiz.AnswerRecord{Correct: false, Selected: quiz.Single("C")})
	assert.Equal(t, []quiz.QuestionID{"q1"}, m.Wrong(), "no duplicates")

	m.RecordAnswer("q1", quiz.AnswerRecord{Correct: true, Selected: quiz.Single("B")})
	assert.False(t, m.IsWrong("q1"))

	rec, ok := m.LastChoice("q1")
	require.True(t, ok)
	assert.Equal(t, "B", rec.Selected.Key())
}

func TestMirror_SetStarredConverges(t *testing.T) {
	m := New(quiz.NewUserData())
	m.SetStarred("q5", true)
	m.SetStarred("q5", true)
	assert.Equal(t, []quiz.QuestionID{"q5"}, m.Starred())
	m.SetStarred("q5", false)
	m.SetStarred("q5", false)
	assert.False(t, m.IsStarred("q5"))
}

func TestMirror_SetPosition(t *testing.T) {
	ud := quiz.NewUserData()
	ud.Progressions.Set("mod1", &quiz.ProgressionState{List: []quiz.QuestionID{"a", "b"}})
	m := New(ud)

	m.SetPosition("mod1", 1)
	m.SetPosition("unknown", 4)

	st, _ := ud.Progressions.Get("mod1")
	assert.Equal(t, 1, st.Position)
}

func TestLedger_AtMostOnce(t *testing.T) {
	l := NewLedger("random:5")
	assert.True(t, l.Record("q9", quiz.AnswerRecord{Correct: true, Selected: quiz.Single("A")}))
	assert.False(t, l.Record("q9", quiz.AnswerRecord{Correct: false, Selected: quiz.Single("B")}))

	rec, ok := l.Get("q9")
	require.True(t, ok)
	assert.True(t, rec.Correct)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_InstancesAreIndependent(t *testing.T) {
	a := NewLedger("random:5")
	b := NewLedger("random:5")
	assert.NotEqual(t, a.Instance(), b.Instance())

	a.Record("q1", quiz.AnswerRecord{Correct: true})
	assert.False(t, b.Has("q1"))
}
