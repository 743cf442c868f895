package units

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/quiz"
	"github.com/abhisek/quizmate/internal/router"
	"github.com/abhisek/quizmate/internal/screens/practice"
)

type fakeBackend struct {
	*gateway.Mock
	units  []gateway.Unit
	starts []gateway.StartRequest
}

func (f *fakeBackend) Units(context.Context) ([]gateway.Unit, error) {
	return f.units, nil
}

func (f *fakeBackend) StartProgression(_ context.Context, req gateway.StartRequest) (*gateway.StartResult, error) {
	f.starts = append(f.starts, req)
	key := quiz.ProgressionKey(req.Unit)
	return &gateway.StartResult{Key: key, Mode: req.Mode, List: []quiz.QuestionID{"q1"}}, nil
}

func (f *fakeBackend) ClearUnit(context.Context, string) error {
	return nil
}

func (f *fakeBackend) UpdateFlags(context.Context, map[string]bool) (quiz.Flags, error) {
	return quiz.Flags{}, nil
}

func settle(t *testing.T, s *Screen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case nil:
			return nil
		case router.PushScreenMsg, router.ReplaceScreenMsg:
			return msg
		}
		_, cmd = s.Update(msg)
	}
	return nil
}

func TestUnitsStartSequential(t *testing.T) {
	fb := &fakeBackend{
		Mock:  gateway.NewMock(nil),
		units: []gateway.Unit{{Name: "empty", Count: 0}, {Name: "ch1", Count: 3}, {Name: "ch2", Count: 2}},
	}
	s := New(fb, nil, true)
	settle(t, s, s.Init())

	if got := len(s.menu.Items); got != 4 {
		t.Fatalf("items = %d, want 3 units plus all", got)
	}
	if s.menu.Selected != 1 {
		t.Errorf("Selected = %d, want the first non-empty unit", s.menu.Selected)
	}
	if all := s.menu.Items[3]; all.Label != "All questions" || all.Detail != "5" {
		t.Errorf("all item = %+v", all)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := settle(t, s, cmd)
	rep, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("msg = %T, want ReplaceScreenMsg", msg)
	}
	if _, ok := rep.Screen.(*practice.Screen); !ok {
		t.Errorf("next screen = %T, want practice", rep.Screen)
	}

	if len(fb.starts) != 1 {
		t.Fatalf("starts = %d", len(fb.starts))
	}
	req := fb.starts[0]
	if req.Mode != gateway.ModeSequential || req.Unit != "ch1" {
		t.Errorf("request = %+v", req)
	}
	if req.Reveal == nil || !*req.Reveal {
		t.Error("reveal override not sent")
	}
}

func TestUnitsAllQuestionsSendsEmptyUnit(t *testing.T) {
	fb := &fakeBackend{Mock: gateway.NewMock(nil), units: []gateway.Unit{{Name: "ch1", Count: 3}}}
	s := New(fb, nil, false)
	settle(t, s, s.Init())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	settle(t, s, cmd)

	if len(fb.starts) != 1 || fb.starts[0].Unit != "" {
		t.Fatalf("starts = %+v, want one course-wide start", fb.starts)
	}
	if *fb.starts[0].Reveal {
		t.Error("reveal should be off")
	}
}
