package bank

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmate/internal/quiz"
)

const unitsDoc = `{
  "第二章": {
    "选择题": [
      {"uid": "2-1", "question": "Pick B", "options": {"B": "bee", "A": "ay"}, "answer": "B"},
      {"question": "no uid"}
    ],
    "多选题": [
      {"uid": "2-2", "question": "Pick A and C", "options": {"A": "a", "B": "b", "C": "c"}, "answer": "CA"}
    ]
  },
  "第一章": {
    "判断题": [
      {"uid": "1-1", "question": "True?", "answer": "√"}
    ]
  }
}`

const groupedDoc = `{
  "单选": [
    {"group_index": 2, "questions": [{"uid": "s1", "question": "q", "options": {"A": "x", "B": "y"}, "answer": "A"}]},
    {"group_index": 1, "questions": [{"uid": "s2", "question": "q", "options": {"A": "x", "B": "y"}, "answer": "B"}]}
  ],
  "判断": [
    {"group_index": 1, "questions": [{"uid": "t1", "question": "q", "answer": "×"}]}
  ],
  "其他": []
}`

func TestParseUnitsLayout(t *testing.T) {
	c, err := Parse("maogai", LayoutUnits, []byte(unitsDoc))
	require.NoError(t, err)

	units := c.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "第二章", units[0].Name)
	assert.Equal(t, []quiz.QuestionID{"2-1", "2-2"}, units[0].IDs)
	assert.Equal(t, "第一章", units[1].Name)
	assert.Equal(t, 3, c.Len())

	q, ok := c.Question("2-1")
	require.True(t, ok)
	assert.Equal(t, quiz.SingleChoice, q.Type)
	assert.Equal(t, []string{"B", "A"}, q.Options.Keys())
	assert.Equal(t, "第二章", q.Unit)

	multi, _ := c.Question("2-2")
	assert.Equal(t, quiz.MultiSelect, multi.Type)
	assert.True(t, multi.Answer.Equal(quiz.Multi("A", "C")))

	tf, _ := c.Question("1-1")
	assert.Equal(t, quiz.TrueFalse, tf.Type)
	assert.Equal(t, quiz.TrueFalseOptions, tf.Options)
}

func TestParseGroupedLayout(t *testing.T) {
	c, err := Parse("mayuan", LayoutGrouped, []byte(groupedDoc))
	require.NoError(t, err)

	var names []string
	for _, u := range c.Units() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"单选题 Part2", "单选题 Part1", "判断题 Part1"}, names)

	tf, ok := c.Question("t1")
	require.True(t, ok)
	assert.Equal(t, []string{"√", "×"}, tf.Options.Keys())
	assert.Equal(t, "×", tf.Answer.Key())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("x", LayoutUnits, []byte(`{`))
	assert.Error(t, err)

	_, err = Parse("x", LayoutUnits, []byte(`{"u": {"填空题": []}}`))
	assert.Error(t, err)

	_, err = Parse("x", Layout("csv"), []byte(`{}`))
	assert.Error(t, err)
}

func TestQuestionReturnsCopy(t *testing.T) {
	c, err := Parse("maogai", LayoutUnits, []byte(unitsDoc))
	require.NoError(t, err)

	q, _ := c.Question("2-1")
	q.Options[0].Text = "changed"
	q.Answer = nil

	again, _ := c.Question("2-1")
	assert.Equal(t, "bee", again.Options[0].Text)
	assert.NotNil(t, again.Answer)
}

func TestGrade(t *testing.T) {
	c, err := Parse("maogai", LayoutUnits, []byte(unitsDoc))
	require.NoError(t, err)
	single, _ := c.Question("2-1")
	multi, _ := c.Question("2-2")

	tests := []struct {
		name string
		q    *quiz.Question
		sel  quiz.Selection
		want bool
	}{
		{"single correct", single, quiz.Single("B"), true},
		{"single wrong", single, quiz.Single("A"), false},
		{"multi any order", multi, quiz.Multi("C", "A"), true},
		{"multi subset", multi, quiz.Multi("A"), false},
		{"multi superset", multi, quiz.Multi("A", "B", "C"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grade(tt.q, tt.sel)
			assert.Equal(t, tt.want, g.Correct)
			assert.True(t, g.Answer.Equal(*tt.q.Answer))
		})
	}
}

func TestSample(t *testing.T) {
	c, err := Parse("maogai", LayoutUnits, []byte(unitsDoc))
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(1, 2))

	got := c.Sample(2, r)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
	for _, id := range got {
		assert.True(t, c.Has(id))
	}

	assert.Len(t, c.Sample(50, r), 3)
	assert.Empty(t, c.Sample(0, r))
	assert.Equal(t, []quiz.QuestionID{"2-1", "2-2", "1-1"}, c.IDs())
}

func TestExplanationsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exp.json")
	ids := []quiz.QuestionID{"b", "a"}
	exps := map[quiz.QuestionID]string{"a": "因为A", "b": "因为B"}

	require.NoError(t, WriteExplanations(path, ids, exps))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": \"因为B\",\n  \"a\": \"因为A\"\n}\n", string(data))

	got, err := ReadExplanations(path)
	require.NoError(t, err)
	assert.Equal(t, exps, got)
}

func TestOpenAttachesExplanations(t *testing.T) {
	dir := t.TempDir()
	qpath := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(qpath, []byte(unitsDoc), 0o644))
	epath := filepath.Join(dir, "exp.json")
	require.NoError(t, os.WriteFile(epath, []byte(`{"2-1": "B is right"}`), 0o644))

	c, err := Open(Source{Name: "maogai", Title: "毛概", Questions: qpath, Explanations: epath})
	require.NoError(t, err)
	assert.Equal(t, "毛概", c.Title)
	q, _ := c.Question("2-1")
	assert.Equal(t, "B is right", q.Explanation)

	// A missing explanation file is not an error.
	_, err = Open(Source{Name: "maogai", Questions: qpath, Explanations: filepath.Join(dir, "none.json")})
	assert.NoError(t, err)
}

func TestCatalog(t *testing.T) {
	a, err := Parse("maogai", LayoutUnits, []byte(unitsDoc))
	require.NoError(t, err)
	b, err := Parse("mayuan", LayoutGrouped, []byte(groupedDoc))
	require.NoError(t, err)

	cat, err := NewCatalog(a, b)
	require.NoError(t, err)
	assert.Equal(t, "maogai", cat.Default())
	assert.Equal(t, []string{"maogai", "mayuan"}, cat.Names())

	got, ok := cat.Course("")
	require.True(t, ok)
	assert.Equal(t, "maogai", got.Name)
	_, ok = cat.Course("nope")
	assert.False(t, ok)

	_, err = NewCatalog(a, a)
	assert.Error(t, err)
}
