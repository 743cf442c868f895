// Package mirror holds the client's local copy of learner state: the
// durable partition mirroring the gateway's UserData, and the transient
// ledger used by ephemeral progressions.
package mirror

import (
	"github.com/abhisek/quizmate/internal/quiz"
)

// Mirror is an in-memory copy of the durable user state. It is written only
// after the gateway acknowledged a change, except for star membership which
// converges to whatever the gateway last reported.
type Mirror struct {
	data *quiz.UserData
}

// New wraps ud. A nil ud is treated as an empty document.
func New(ud *quiz.UserData) *Mirror {
	if ud == nil {
		ud = quiz.NewUserData()
	}
	if ud.LastChoice == nil {
		ud.LastChoice = make(map[quiz.QuestionID]quiz.AnswerRecord)
	}
	return &Mirror{data: ud}
}

// LastChoice returns the durable record for id.
func (m *Mirror) LastChoice(id quiz.QuestionID) (quiz.AnswerRecord, bool) {
	rec, ok := m.data.LastChoice[id]
	return rec, ok
}

// RecordAnswer stores an acknowledged durable answer and keeps the global
// wrong list in step with it: added when incorrect, removed when correct.
func (m *Mirror) RecordAnswer(id quiz.QuestionID, rec quiz.AnswerRecord) {
	m.data.LastChoice[id] = rec
	if rec.Correct {
		m.data.Global.Wrong.Remove(id)
	} else {
		m.data.Global.Wrong.Add(id)
	}
}

// SetStarred converges star membership of id to starred.
func (m *Mirror) SetStarred(id quiz.QuestionID, starred bool) {
	if starred {
		m.data.Global.Star.Add(id)
	} else {
		m.data.Global.Star.Remove(id)
	}
}

// IsStarred reports whether id is in the global star set.
func (m *Mirror) IsStarred(id quiz.QuestionID) bool {
	return m.data.Global.Star.Has(id)
}

// IsWrong reports whether id is in the global wrong list.
func (m *Mirror) IsWrong(id quiz.QuestionID) bool {
	return m.data.Global.Wrong.Has(id)
}

// Wrong returns the global wrong list.
func (m *Mirror) Wrong() []quiz.QuestionID {
	return m.data.Global.Wrong.Items()
}

// Starred returns the global star set.
func (m *Mirror) Starred() []quiz.QuestionID {
	return m.data.Global.Star.Items()
}

// SetPosition moves the cursor of a stored progression.
func (m *Mirror) SetPosition(key quiz.ProgressionKey, pos int) {
	if st, ok := m.data.Progressions.Get(key); ok && st != nil {
		st.Position = pos
	}
}

// Data exposes the mirrored document.
func (m *Mirror) Data() *quiz.UserData {
	return m.data
}
