package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmate/internal/quiz"
)

func userData(t *testing.T, raw string) *quiz.UserData {
	t.Helper()
	ud, err := quiz.DecodeUserData([]byte(raw))
	require.NoError(t, err)
	return ud
}

func TestIsEphemeral(t *testing.T) {
	tests := []struct {
		key  quiz.ProgressionKey
		want bool
	}{
		{"wrong", true},
		{"star", true},
		{"random:42", true},
		{"random:", true},
		{"wrongs", false},
		{"starred", false},
		{"xrandom:1", false},
		{"第一章", false},
		{"sequential_all", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, IsEphemeral(tt.key))
		})
	}
}

func TestResolve_ActiveKey(t *testing.T) {
	ud := userData(t, `{"progress":{"mod1":{"list":["q1"],"pos":0},"star":{"list":["q5","q6"],"pos":1,"reveal":true}},"current_progress_key":"star"}`)

	r := Resolve(ud)
	assert.Equal(t, quiz.ProgressionKey("star"), r.Key)
	assert.True(t, r.Ephemeral)
	assert.Equal(t, []quiz.QuestionID{"q5", "q6"}, r.List)
	assert.Equal(t, 1, r.Position)
	assert.True(t, r.Reveal)
}

func TestResolve_FallsBackToFirstInGatewayOrder(t *testing.T) {
	ud := userData(t, `{"progress":{"zeta":{"list":["z"],"pos":0},"alpha":{"list":["a"],"pos":0}},"current_progress_key":null}`)
	r := Resolve(ud)
	assert.Equal(t, quiz.ProgressionKey("zeta"), r.Key, "order must not be re-sorted")
	assert.False(t, r.Ephemeral)

	ud.SetActive("missing")
	assert.Equal(t, quiz.ProgressionKey("zeta"), Resolve(ud).Key)
}

func TestResolve_Empty(t *testing.T) {
	r := Resolve(quiz.NewUserData())
	assert.False(t, r.HasKey())
	assert.Empty(t, r.List)
	assert.Equal(t, 0, r.Position)
	assert.False(t, r.Reveal)
	assert.False(t, r.Ephemeral)

	assert.False(t, Resolve(nil).HasKey())
}

func TestResolve_CopiesList(t *testing.T) {
	ud := userData(t, `{"progress":{"m":{"list":["a","b"],"pos":-3}}}`)
	r := Resolve(ud)
	assert.Equal(t, 0, r.Position)

	r.List[0] = "mutated"
	st, _ := ud.Progressions.Get("m")
	assert.Equal(t, quiz.QuestionID("a"), st.List[0])
}

func TestNormalizeUserData(t *testing.T) {
	ud := userData(t, `{"progress":{"maogai:第一章":{"list":["a"],"pos":2},"第一章":{"list":["b"],"pos":0},"tag:wrong":{"list":[],"pos":0},"random:10":{"list":[],"pos":0}},"current_progress_key":"sequential:第二章"}`)

	changed := NormalizeUserData(ud, "maogai", "mayuan")
	assert.True(t, changed)
	assert.Equal(t, []quiz.ProgressionKey{"第一章", "random:10", "wrong"}, ud.Progressions.Keys())
	st, _ := ud.Progressions.Get("第一章")
	assert.Equal(t, []quiz.QuestionID{"b"}, st.List, "existing progression wins over the legacy one")
	assert.Equal(t, quiz.ProgressionKey("第二章"), ud.Active())

	assert.False(t, NormalizeUserData(ud, "maogai", "mayuan"))
}

func TestRandomKey(t *testing.T) {
	assert.Equal(t, quiz.ProgressionKey("random:50"), RandomKey(50))
	assert.Equal(t, "Random 50", Describe(RandomKey(50)))
}
