package mirror

import (
	"github.com/google/uuid"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Ledger records answers given inside one ephemeral progression instance.
// It never feeds back into the durable Mirror and is discarded with the
// session that owns it.
type Ledger struct {
	instance string
	key      quiz.ProgressionKey
	records  map[quiz.QuestionID]quiz.AnswerRecord
}

// NewLedger starts an empty ledger for an instance of key.
func NewLedger(key quiz.ProgressionKey) *Ledger {
	return &Ledger{
		instance: uuid.NewString(),
		key:      key,
		records:  make(map[quiz.QuestionID]quiz.AnswerRecord),
	}
}

// Instance returns the unique ID of this ledger's progression instance.
func (l *Ledger) Instance() string {
	return l.instance
}

// Key returns the progression key the ledger belongs to.
func (l *Ledger) Key() quiz.ProgressionKey {
	return l.key
}

// Get returns the record for id within this instance.
func (l *Ledger) Get(id quiz.QuestionID) (quiz.AnswerRecord, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// Has reports whether id was answered within this instance.
func (l *Ledger) Has(id quiz.QuestionID) bool {
	_, ok := l.records[id]
	return ok
}

// Record stores the answer for id. It reports false and leaves the ledger
// unchanged when id already has a record.
func (l *Ledger) Record(id quiz.QuestionID, rec quiz.AnswerRecord) bool {
	if _, ok := l.records[id]; ok {
		return false
	}
	l.records[id] = rec
	return true
}

// Len returns the number of answered questions.
func (l *Ledger) Len() int {
	return len(l.records)
}
