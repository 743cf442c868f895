// Package progression resolves which progression a session works on and
// classifies progression keys.
package progression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Well-known progression keys.
const (
	WrongKey         quiz.ProgressionKey = "wrong"
	StarKey          quiz.ProgressionKey = "star"
	SequentialAllKey quiz.ProgressionKey = "sequential_all"

	randomPrefix = "random:"
)

// RandomKey returns the key of a random review of count questions.
func RandomKey(count int) quiz.ProgressionKey {
	return quiz.ProgressionKey(randomPrefix + strconv.Itoa(count))
}

// IsEphemeral reports whether key names a review progression whose answers
// are not recorded durably: the wrong list, the starred list, or a random
// sample.
func IsEphemeral(key quiz.ProgressionKey) bool {
	return key == WrongKey || key == StarKey || strings.HasPrefix(string(key), randomPrefix)
}

// Resolved is the outcome of Resolve. It is computed once per session
// entry and never changes until the next full reload.
type Resolved struct {
	Key       quiz.ProgressionKey
	Ephemeral bool
	List      []quiz.QuestionID
	Position  int
	Reveal    bool
}

// HasKey reports whether a progression was selected.
func (r Resolved) HasKey() bool {
	return r.Key != ""
}

// Resolve selects the active progression: the current key when it names a
// stored progression, else the first progression in gateway order. With no
// progressions the result is an empty list at position 0.
func Resolve(ud *quiz.UserData) Resolved {
	if ud == nil {
		return Resolved{}
	}

	key := ud.Active()
	st, ok := ud.Progressions.Get(key)
	if key == "" || !ok {
		key, st, ok = ud.Progressions.First()
	}
	if !ok {
		return Resolved{}
	}

	r := Resolved{
		Key:       key,
		Ephemeral: IsEphemeral(key),
	}
	if st != nil {
		r.List = append([]quiz.QuestionID(nil), st.List...)
		r.Position = max(st.Position, 0)
		r.Reveal = st.Reveal
	}
	return r
}

// Normalize rewrites legacy course- or mode-prefixed keys such as
// "maogai:第一章" or "sequential:第一章" to their bare form. Random keys
// keep their prefix. The second result reports whether key changed.
func Normalize(key quiz.ProgressionKey, legacyPrefixes ...string) (quiz.ProgressionKey, bool) {
	prefix, rest, found := strings.Cut(string(key), ":")
	if !found {
		return key, false
	}
	if prefix+":" == randomPrefix {
		return key, false
	}
	for _, p := range append([]string{"sequential", "tag"}, legacyPrefixes...) {
		if prefix == p {
			return quiz.ProgressionKey(rest), true
		}
	}
	return key, false
}

// NormalizeUserData applies Normalize to every progression key and to the
// current key. When a normalized key collides with an existing one, the
// existing progression wins and the legacy entry is dropped.
func NormalizeUserData(ud *quiz.UserData, legacyPrefixes ...string) bool {
	changed := false
	for _, key := range ud.Progressions.Keys() {
		nk, ok := Normalize(key, legacyPrefixes...)
		if !ok {
			continue
		}
		st, _ := ud.Progressions.Get(key)
		ud.Progressions.Delete(key)
		if _, exists := ud.Progressions.Get(nk); !exists {
			ud.Progressions.Set(nk, st)
		}
		changed = true
	}
	if nk, ok := Normalize(ud.Active(), legacyPrefixes...); ok {
		ud.SetActive(nk)
		changed = true
	}
	return changed
}

// Describe renders a key for display.
func Describe(key quiz.ProgressionKey) string {
	switch {
	case key == "":
		return "none"
	case key == WrongKey:
		return "Wrong answers"
	case key == StarKey:
		return "Starred"
	case key == SequentialAllKey:
		return "All questions"
	case strings.HasPrefix(string(key), randomPrefix):
		return fmt.Sprintf("Random %s", strings.TrimPrefix(string(key), randomPrefix))
	default:
		return string(key)
	}
}
