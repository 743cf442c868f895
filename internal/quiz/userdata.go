package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ProgressionState is a named, ordered question list with a cursor.
type ProgressionState struct {
	List     []QuestionID `json:"list"`
	Position int          `json:"pos"`
	Reveal   bool         `json:"reveal"`
}

// Progressions keeps progression states in the order the gateway returned
// them. The first entry is the fallback when no progression is active, so
// the order must survive decoding and re-encoding.
type Progressions struct {
	order  []ProgressionKey
	states map[ProgressionKey]*ProgressionState
}

// Len returns the number of progressions.
func (p *Progressions) Len() int {
	return len(p.order)
}

// Keys returns the progression keys in order.
func (p *Progressions) Keys() []ProgressionKey {
	out := make([]ProgressionKey, len(p.order))
	copy(out, p.order)
	return out
}

// Get returns the state stored under key.
func (p *Progressions) Get(key ProgressionKey) (*ProgressionState, bool) {
	st, ok := p.states[key]
	return st, ok
}

// First returns the earliest progression, if any.
func (p *Progressions) First() (ProgressionKey, *ProgressionState, bool) {
	if len(p.order) == 0 {
		return "", nil, false
	}
	k := p.order[0]
	return k, p.states[k], true
}

// Set stores st under key. A new key is appended; an existing key keeps
// its position in the order.
func (p *Progressions) Set(key ProgressionKey, st *ProgressionState) {
	if p.states == nil {
		p.states = make(map[ProgressionKey]*ProgressionState)
	}
	if _, ok := p.states[key]; !ok {
		p.order = append(p.order, key)
	}
	p.states[key] = st
}

// Delete removes key.
func (p *Progressions) Delete(key ProgressionKey) {
	if _, ok := p.states[key]; !ok {
		return
	}
	delete(p.states, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p Progressions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.states[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Progressions) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	*p = Progressions{}
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("decode progress: expected object, got %s", res.Type)
	}
	var decodeErr error
	res.ForEach(func(key, value gjson.Result) bool {
		st := &ProgressionState{}
		if value.Type != gjson.Null {
			if err := json.Unmarshal([]byte(value.Raw), st); err != nil {
				decodeErr = fmt.Errorf("decode progression %q: %w", key.String(), err)
				return false
			}
		}
		p.Set(ProgressionKey(key.String()), st)
		return true
	})
	return decodeErr
}

// AnswerRecord is the graded outcome of one submission.
type AnswerRecord struct {
	Correct  bool      `json:"correct"`
	Selected Selection `json:"selected"`
}

// Global holds the cross-progression question lists.
type Global struct {
	Wrong IDSet `json:"wrong"`
	Star  IDSet `json:"star"`
}

// Flags are the learner's per-course display preferences.
type Flags struct {
	RevealMode       bool `json:"reveal_mode"`
	ShowExplanations bool `json:"show_explanations"`
}

// UnitStats tracks per-unit activity on the server side.
type UnitStats struct {
	Studied IDSet `json:"studied"`
	Wrong   IDSet `json:"wrong"`
	Star    IDSet `json:"star"`
}

// UserData is the durable per-course learner document held by the gateway.
type UserData struct {
	Progressions Progressions                `json:"progress"`
	ActiveKey    *ProgressionKey             `json:"current_progress_key"`
	LastChoice   map[QuestionID]AnswerRecord `json:"last_choice"`
	Global       Global                      `json:"global"`
	Flags        Flags                       `json:"flags"`
	ByUnit       map[string]*UnitStats       `json:"by_unit,omitempty"`
}

// NewUserData returns an empty document.
func NewUserData() *UserData {
	return &UserData{
		LastChoice: make(map[QuestionID]AnswerRecord),
		ByUnit:     make(map[string]*UnitStats),
	}
}

// DecodeUserData parses a UserData document and fills in missing maps.
func DecodeUserData(data []byte) (*UserData, error) {
	ud := NewUserData()
	if err := json.Unmarshal(data, ud); err != nil {
		return nil, fmt.Errorf("decode user data: %w", err)
	}
	if ud.LastChoice == nil {
		ud.LastChoice = make(map[QuestionID]AnswerRecord)
	}
	if ud.ByUnit == nil {
		ud.ByUnit = make(map[string]*UnitStats)
	}
	return ud, nil
}

// SetActive records key as the current progression.
func (u *UserData) SetActive(key ProgressionKey) {
	k := key
	u.ActiveKey = &k
}

// Active returns the current progression key, or "" when none is set.
func (u *UserData) Active() ProgressionKey {
	if u.ActiveKey == nil {
		return ""
	}
	return *u.ActiveKey
}

// Unit returns the stats for unit, creating them on first use.
func (u *UserData) Unit(name string) *UnitStats {
	if u.ByUnit == nil {
		u.ByUnit = make(map[string]*UnitStats)
	}
	st, ok := u.ByUnit[name]
	if !ok {
		st = &UnitStats{}
		u.ByUnit[name] = st
	}
	return st
}

// Grade is the gateway's verdict for a submission.
type Grade struct {
	Correct bool      `json:"correct"`
	Answer  Selection `json:"answer"`
}

// StarResult is the star state after a toggle.
type StarResult struct {
	Starred bool `json:"starred"`
}
