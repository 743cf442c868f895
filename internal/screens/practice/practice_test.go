package practice

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/quiz"
	sess "github.com/abhisek/quizmate/internal/session"
)

func singleQ(id quiz.QuestionID, answer string) *quiz.Question {
	ans := quiz.Single(answer)
	return &quiz.Question{
		ID:      id,
		Text:    "question " + string(id),
		Type:    quiz.SingleChoice,
		Options: quiz.Options{{Key: "A", Text: "alpha"}, {Key: "B", Text: "beta"}, {Key: "C", Text: "gamma"}},
		Answer:  &ans,
	}
}

func multiQ(id quiz.QuestionID, answer ...string) *quiz.Question {
	ans := quiz.Multi(answer...)
	return &quiz.Question{
		ID:      id,
		Text:    "question " + string(id),
		Type:    quiz.MultiSelect,
		Options: quiz.Options{{Key: "A", Text: "alpha"}, {Key: "B", Text: "beta"}, {Key: "C", Text: "gamma"}},
		Answer:  &ans,
	}
}

func newMock(key quiz.ProgressionKey, questions ...*quiz.Question) *gateway.Mock {
	ud := quiz.NewUserData()
	list := make([]quiz.QuestionID, len(questions))
	for i, q := range questions {
		list[i] = q.ID
	}
	ud.Progressions.Set(key, &quiz.ProgressionState{List: list})
	ud.SetActive(key)
	return gateway.NewMock(ud, questions...)
}

// drive runs cmd and feeds its message back until no command is left.
func drive(t *testing.T, s *Screen, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = s.Update(msg)
	}
}

func press(t *testing.T, s *Screen, key string) {
	t.Helper()
	var msg tea.KeyPressMsg
	switch key {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "left":
		msg = tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		msg = tea.KeyPressMsg{Code: tea.KeyRight}
	case "space":
		msg = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	_, cmd := s.Update(msg)
	if s.jumping {
		// The jump box only returns cursor blink ticks, which never settle.
		return
	}
	drive(t, s, cmd)
}

func start(t *testing.T, gw *gateway.Mock) *Screen {
	t.Helper()
	s := New(gw, nil)
	t.Cleanup(s.Close)
	drive(t, s, s.Init())
	if s.errMsg != "" {
		t.Fatalf("open failed: %s", s.errMsg)
	}
	return s
}

func TestAnswerSingleChoice(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "B"), singleQ("q2", "A"))
	s := start(t, gw)

	if s.view == nil || s.view.Question.ID != "q1" {
		t.Fatalf("view = %+v, want q1 loaded", s.view)
	}
	press(t, s, "2")

	if s.view.Feedback != sess.FeedbackCorrect {
		t.Errorf("Feedback = %v, want correct", s.view.Feedback)
	}
	if n := gw.CallCount(gateway.OpSubmitAnswer); n != 1 {
		t.Errorf("submits = %d, want 1", n)
	}
	out := ansi.Strip(s.View(100, 40))
	if !strings.Contains(out, "Correct!") {
		t.Errorf("view missing feedback:\n%s", out)
	}
}

func TestAnswerByLetter(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "B"))
	s := start(t, gw)

	press(t, s, "a")
	if s.view.Feedback != sess.FeedbackIncorrect {
		t.Fatalf("Feedback = %v, want incorrect", s.view.Feedback)
	}
	out := ansi.Strip(s.View(100, 40))
	if !strings.Contains(out, "Answer: B") {
		t.Errorf("view should name the correct answer:\n%s", out)
	}
}

func TestSecondAnswerShowsNotice(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "B"))
	s := start(t, gw)

	press(t, s, "2")
	press(t, s, "1")
	if s.notice == "" {
		t.Fatal("expected an already-answered notice")
	}
	if n := gw.CallCount(gateway.OpSubmitAnswer); n != 1 {
		t.Errorf("submits = %d, want 1", n)
	}
	if !strings.Contains(ansi.Strip(s.View(100, 40)), "already answered") {
		t.Error("notice not rendered")
	}

	// Any key dismisses the notice without acting.
	press(t, s, "right")
	if s.notice != "" {
		t.Error("notice still shown")
	}
	if s.session.Position() != 0 {
		t.Errorf("Position = %d, the dismissing key must not navigate", s.session.Position())
	}
}

func TestMultiSelectTogglesThenSubmits(t *testing.T) {
	gw := newMock("mod1", multiQ("q1", "A", "C"))
	s := start(t, gw)

	press(t, s, "1")
	press(t, s, "3")
	if n := gw.CallCount(gateway.OpSubmitAnswer); n != 0 {
		t.Fatalf("submits = %d before enter", n)
	}
	press(t, s, "enter")

	calls := gw.Calls(gateway.OpSubmitAnswer)
	if len(calls) != 1 {
		t.Fatalf("submits = %d, want 1", len(calls))
	}
	if got := calls[0].Selection.String(); got != "A, C" {
		t.Errorf("submitted %q, want A, C", got)
	}
	if s.view.Feedback != sess.FeedbackCorrect {
		t.Errorf("Feedback = %v, want correct", s.view.Feedback)
	}
}

func TestMultiSelectEmptySubmit(t *testing.T) {
	gw := newMock("mod1", multiQ("q1", "A"))
	s := start(t, gw)

	press(t, s, "enter")
	if s.status != "pick at least one option" {
		t.Errorf("status = %q", s.status)
	}
	if n := gw.CallCount(gateway.OpSubmitAnswer); n != 0 {
		t.Errorf("submits = %d, want 0", n)
	}
}

func TestNavigationAndJump(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "A"), singleQ("q2", "A"), singleQ("q3", "A"))
	s := start(t, gw)

	press(t, s, "right")
	if s.view.Question.ID != "q2" {
		t.Fatalf("after right: %s, want q2", s.view.Question.ID)
	}
	press(t, s, "left")
	if s.view.Question.ID != "q1" {
		t.Fatalf("after left: %s, want q1", s.view.Question.ID)
	}

	press(t, s, "g")
	if !s.jumping {
		t.Fatal("jump box not open")
	}
	press(t, s, "3")
	press(t, s, "enter")
	if s.view.Question.ID != "q3" {
		t.Fatalf("after jump: %s, want q3", s.view.Question.ID)
	}

	press(t, s, "right")
	if s.status != "this is the last question" {
		t.Errorf("status = %q at the end", s.status)
	}

	press(t, s, "g")
	press(t, s, "9")
	press(t, s, "enter")
	if s.session.Position() != 2 {
		t.Errorf("Position = %d after an out-of-range jump", s.session.Position())
	}
	if !strings.HasPrefix(s.status, "no question 9") {
		t.Errorf("status = %q", s.status)
	}
}

func TestStarToggle(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "A"))
	s := start(t, gw)

	press(t, s, "s")
	if !gw.Starred("q1") || !s.view.Starred {
		t.Fatalf("q1 not starred: gateway %v, view %v", gw.Starred("q1"), s.view.Starred)
	}
	press(t, s, "s")
	if gw.Starred("q1") || s.view.Starred {
		t.Error("q1 still starred after second toggle")
	}
}

func TestEmptyProgression(t *testing.T) {
	s := start(t, gateway.NewMock(nil))

	if s.view != nil {
		t.Fatal("view loaded for an empty list")
	}
	out := ansi.Strip(s.View(100, 40))
	if !strings.Contains(out, "no questions") {
		t.Errorf("view = %s", out)
	}
	press(t, s, "1")
	press(t, s, "right")
}

func TestCloseFlushesPosition(t *testing.T) {
	gw := newMock("mod1", singleQ("q1", "A"), singleQ("q2", "A"))
	s := New(gw, nil)
	drive(t, s, s.Init())
	press(t, s, "right")
	s.Close()

	calls := gw.Calls(gateway.OpSaveProgress)
	if len(calls) == 0 {
		t.Fatal("no position saved")
	}
	if last := calls[len(calls)-1]; last.Key != "mod1" || last.Pos != 1 {
		t.Errorf("last save = %+v, want mod1@1", last)
	}
}
