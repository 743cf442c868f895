package home

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/quiz"
	"github.com/abhisek/quizmate/internal/router"
	"github.com/abhisek/quizmate/internal/screens/practice"
	"github.com/abhisek/quizmate/internal/screens/units"
)

type fakeBackend struct {
	*gateway.Mock
	starts  []gateway.StartRequest
	cleared []string
	flags   []map[string]bool
}

func (f *fakeBackend) Units(context.Context) ([]gateway.Unit, error) {
	return nil, nil
}

func (f *fakeBackend) StartProgression(_ context.Context, req gateway.StartRequest) (*gateway.StartResult, error) {
	f.starts = append(f.starts, req)
	key := quiz.ProgressionKey(req.Tag)
	if req.Mode == gateway.ModeRandom {
		key = "random:x"
	}
	return &gateway.StartResult{Key: key, Mode: req.Mode, List: []quiz.QuestionID{"q1"}}, nil
}

func (f *fakeBackend) ClearUnit(_ context.Context, unit string) error {
	f.cleared = append(f.cleared, unit)
	return nil
}

func (f *fakeBackend) UpdateFlags(_ context.Context, flags map[string]bool) (quiz.Flags, error) {
	f.flags = append(f.flags, flags)
	return quiz.Flags{ShowExplanations: flags["show_explanations"]}, nil
}

func newBackend() *fakeBackend {
	ud := quiz.NewUserData()
	ud.Progressions.Set("ch1", &quiz.ProgressionState{List: []quiz.QuestionID{"q1", "q2", "q3"}, Position: 1})
	ud.SetActive("ch1")
	ud.Global.Wrong.Add("q2")
	ud.Flags.RevealMode = true
	return &fakeBackend{Mock: gateway.NewMock(ud)}
}

func settle(t *testing.T, h *Screen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case nil:
			return nil
		case router.PushScreenMsg, router.ReplaceScreenMsg:
			return msg
		}
		_, cmd = h.Update(msg)
	}
	return nil
}

// choose selects the menu item with label and activates it.
func choose(t *testing.T, h *Screen, label string) tea.Cmd {
	t.Helper()
	for i, it := range h.menu.Items {
		if it.Label == label {
			if it.Disabled {
				t.Fatalf("%q is disabled", label)
			}
			h.menu.Selected = i
			_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
			return cmd
		}
	}
	t.Fatalf("no menu item %q", label)
	return nil
}

func item(t *testing.T, h *Screen, label string) string {
	t.Helper()
	for _, it := range h.menu.Items {
		if it.Label == label {
			return it.Detail
		}
	}
	t.Fatalf("no menu item %q", label)
	return ""
}

func loaded(t *testing.T, fb *fakeBackend) *Screen {
	t.Helper()
	h := New(fb, nil)
	settle(t, h, h.Init())
	if h.err != "" {
		t.Fatalf("load: %s", h.err)
	}
	return h
}

func TestHomeMenuReflectsUserData(t *testing.T) {
	h := loaded(t, newBackend())

	if got := item(t, h, "Continue"); got != "ch1  2/3" {
		t.Errorf("Continue detail = %q", got)
	}
	if got := item(t, h, "Wrong answers"); got != "1" {
		t.Errorf("Wrong detail = %q", got)
	}
	if got := item(t, h, "Reveal answers"); got != "on" {
		t.Errorf("reveal should start from the stored flag, got %q", got)
	}
	for _, it := range h.menu.Items {
		if it.Label == "Starred" && !it.Disabled {
			t.Error("Starred enabled with an empty list")
		}
	}
}

func TestHomeContinuePushesQuiz(t *testing.T) {
	h := loaded(t, newBackend())
	msg := settle(t, h, choose(t, h, "Continue"))
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("msg = %T, want PushScreenMsg", msg)
	}
	if _, ok := push.Screen.(*practice.Screen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestHomeUnitsCarriesReveal(t *testing.T) {
	h := loaded(t, newBackend())
	msg := settle(t, h, choose(t, h, "Units"))
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if _, ok := push.Screen.(*units.Screen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestHomeStartsWrongList(t *testing.T) {
	fb := newBackend()
	h := loaded(t, fb)

	settle(t, h, choose(t, h, "Reveal answers"))
	if got := item(t, h, "Reveal answers"); got != "off" {
		t.Fatalf("reveal after toggle = %q", got)
	}

	msg := settle(t, h, choose(t, h, "Wrong answers"))
	if _, ok := msg.(router.PushScreenMsg); !ok {
		t.Fatalf("msg = %T, want PushScreenMsg", msg)
	}
	if len(fb.starts) != 1 {
		t.Fatalf("starts = %d", len(fb.starts))
	}
	req := fb.starts[0]
	if req.Mode != gateway.ModeTag || req.Tag != "wrong" {
		t.Errorf("request = %+v", req)
	}
	if req.Reveal == nil || *req.Reveal {
		t.Error("reveal override should be sent as off")
	}
}

func TestHomeRandomPrompt(t *testing.T) {
	fb := newBackend()
	h := loaded(t, fb)

	choose(t, h, "Random review")
	if !h.CapturingInput() {
		t.Fatal("prompt not open")
	}
	for _, r := range "20" {
		h.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	settle(t, h, cmd)

	if len(fb.starts) != 1 || fb.starts[0].Mode != gateway.ModeRandom || fb.starts[0].Count != 20 {
		t.Errorf("starts = %+v, want random of 20", fb.starts)
	}
}

func TestHomeToggleExplanations(t *testing.T) {
	fb := newBackend()
	h := loaded(t, fb)

	settle(t, h, choose(t, h, "Show explanations"))
	if len(fb.flags) != 1 || !fb.flags[0]["show_explanations"] {
		t.Fatalf("flag updates = %+v", fb.flags)
	}
	if got := item(t, h, "Show explanations"); got != "on" {
		t.Errorf("detail = %q after toggle", got)
	}
}

func TestHomeClearNeedsConfirmation(t *testing.T) {
	fb := newBackend()
	h := loaded(t, fb)

	if got := item(t, h, "Clear unit history"); got != "ch1" {
		t.Fatalf("clear detail = %q", got)
	}
	choose(t, h, "Clear unit history")
	h.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if len(fb.cleared) != 0 || h.CapturingInput() {
		t.Fatal("n should cancel")
	}

	choose(t, h, "Clear unit history")
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	settle(t, h, cmd)
	if len(fb.cleared) != 1 || fb.cleared[0] != "ch1" {
		t.Errorf("cleared = %v", fb.cleared)
	}
	if h.status != "history of ch1 cleared" {
		t.Errorf("status = %q", h.status)
	}
}
