package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Selection
		want bool
	}{
		{"same single", Single("B"), Single("B"), true},
		{"different single", Single("A"), Single("B"), false},
		{"set order ignored", Multi("A", "C"), Multi("C", "A"), true},
		{"set duplicates ignored", Multi("A", "A", "C"), Multi("C", "A"), true},
		{"subset", Multi("A"), Multi("A", "C"), false},
		{"single vs one-element set", Single("A"), Multi("A"), true},
		{"empty sets", Multi(), Multi(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestSelection_JSONShapes(t *testing.T) {
	var s Selection
	require.NoError(t, json.Unmarshal([]byte(`"B"`), &s))
	assert.False(t, s.IsMulti())
	assert.Equal(t, "B", s.Key())

	require.NoError(t, json.Unmarshal([]byte(`["D","A"]`), &s))
	assert.True(t, s.IsMulti())
	assert.Equal(t, []string{"A", "D"}, s.Keys())
	assert.Equal(t, "", s.Key())

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.True(t, s.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &s))

	out, err := json.Marshal(Multi("C", "A"))
	require.NoError(t, err)
	assert.JSONEq(t, `["A","C"]`, string(out))
}

func TestOptions_PreserveOrder(t *testing.T) {
	var q Question
	raw := `{"uid":"1-3","question":"q","type":"选择题","options":{"D":"d","A":"a","C":"c"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, []string{"D", "A", "C"}, q.Options.Keys())
	assert.Equal(t, SingleChoice, q.Type)
	assert.False(t, q.Disclosed())

	out, err := json.Marshal(q.Options)
	require.NoError(t, err)
	assert.Equal(t, `{"D":"d","A":"a","C":"c"}`, string(out))
}

func TestQuestion_AnswerPresence(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"uid":"x","type":"multi","options":{},"answer":["A","B"]}`), &q))
	require.True(t, q.Disclosed())
	assert.True(t, q.Answer.Equal(Multi("B", "A")))

	r := q.Redacted()
	assert.False(t, r.Disclosed())
	assert.True(t, q.Disclosed(), "redaction must not touch the original")
}

func TestParseQuestionType(t *testing.T) {
	for label, want := range map[string]QuestionType{
		"选择题": SingleChoice, "判断题": TrueFalse, "多选题": MultiSelect,
		"single": SingleChoice, "true_false": TrueFalse, "multi": MultiSelect,
	} {
		got, err := ParseQuestionType(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}
	_, err := ParseQuestionType("essay")
	assert.Error(t, err)
}

func TestIDSet(t *testing.T) {
	var s IDSet
	assert.True(t, s.Add("q2"))
	assert.True(t, s.Add("q1"))
	assert.False(t, s.Add("q2"))
	assert.Equal(t, []QuestionID{"q2", "q1"}, s.Items())

	assert.True(t, s.Remove("q2"))
	assert.False(t, s.Remove("q2"))
	assert.False(t, s.Has("q2"))
	assert.Equal(t, 1, s.Len())

	out, err := json.Marshal(IDSet{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestDecodeUserData_ProgressOrder(t *testing.T) {
	raw := `{
		"progress": {
			"unit-9": {"list": ["a","b"], "pos": 1, "reveal": false},
			"random:42": {"list": ["q9"], "pos": 0, "reveal": true},
			"unit-1": {"list": [], "pos": 0}
		},
		"current_progress_key": null,
		"last_choice": {"a": {"correct": false, "selected": ["A","B"]}},
		"global": {"wrong": ["a"], "star": []},
		"flags": {"reveal_mode": false, "show_explanations": true}
	}`
	ud, err := DecodeUserData([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []ProgressionKey{"unit-9", "random:42", "unit-1"}, ud.Progressions.Keys())
	assert.Equal(t, ProgressionKey(""), ud.Active())
	assert.True(t, ud.Flags.ShowExplanations)
	assert.True(t, ud.Global.Wrong.Has("a"))
	rec := ud.LastChoice["a"]
	assert.True(t, rec.Selected.IsMulti())

	st, ok := ud.Progressions.Get("random:42")
	require.True(t, ok)
	assert.True(t, st.Reveal)

	out, err := json.Marshal(ud)
	require.NoError(t, err)
	again, err := DecodeUserData(out)
	require.NoError(t, err)
	assert.Equal(t, ud.Progressions.Keys(), again.Progressions.Keys())
}

func TestProgressions_SetKeepsPosition(t *testing.T) {
	var p Progressions
	p.Set("a", &ProgressionState{})
	p.Set("b", &ProgressionState{})
	p.Set("a", &ProgressionState{Position: 3})
	assert.Equal(t, []ProgressionKey{"a", "b"}, p.Keys())
	st, _ := p.Get("a")
	assert.Equal(t, 3, st.Position)

	p.Delete("a")
	k, _, ok := p.First()
	require.True(t, ok)
	assert.Equal(t, ProgressionKey("b"), k)
}
