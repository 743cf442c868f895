package quiz

import (
	"encoding/json"
	"fmt"
)

// QuestionID identifies a question within a course (the bank "uid").
type QuestionID string

// ProgressionKey names a progression. Its literal form decides whether the
// progression is ephemeral; see package progression.
type ProgressionKey string

// IDSet is an insertion-ordered set of question IDs. It serializes as a
// JSON array, matching the wire shape of global.wrong and global.star.
// The zero value is an empty set ready for use.
type IDSet struct {
	items   []QuestionID
	members map[QuestionID]struct{}
}

// NewIDSet returns a set containing ids in order, dropping duplicates.
func NewIDSet(ids ...QuestionID) IDSet {
	var s IDSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id if absent and reports whether it was added.
func (s *IDSet) Add(id QuestionID) bool {
	if s.members == nil {
		s.members = make(map[QuestionID]struct{})
	}
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

// Remove deletes id if present and reports whether it was removed.
func (s *IDSet) Remove(id QuestionID) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	for i, v := range s.items {
		if v == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether id is in the set.
func (s IDSet) Has(id QuestionID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the IDs in insertion order.
func (s IDSet) Items() []QuestionID {
	out := make([]QuestionID, len(s.items))
	copy(out, s.items)
	return out
}

// Clear empties the set.
func (s *IDSet) Clear() {
	s.items = nil
	s.members = nil
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []QuestionID
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("decode id set: %w", err)
	}
	*s = NewIDSet(ids...)
	return nil
}
