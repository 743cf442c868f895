// Package units lists the units of the course and starts a sequential
// progression through the one picked.
package units

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/router"
	"github.com/abhisek/quizmate/internal/screen"
	"github.com/abhisek/quizmate/internal/screens/practice"
	"github.com/abhisek/quizmate/internal/ui/components"
	"github.com/abhisek/quizmate/internal/ui/layout"
	"github.com/abhisek/quizmate/internal/ui/theme"
)

type loadedMsg struct {
	Units []gateway.Unit
	Err   error
}

type startedMsg struct {
	Result *gateway.StartResult
	Err    error
}

// Screen shows the unit list.
type Screen struct {
	backend screen.Backend
	log     *slog.Logger
	reveal  bool

	units   []gateway.Unit
	loading bool
	status  string
	menu    components.Menu
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the unit list. reveal is sent with the start request.
func New(backend screen.Backend, logger *slog.Logger, reveal bool) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Screen{backend: backend, log: logger, reveal: reveal, loading: true}
}

func (s *Screen) Init() tea.Cmd {
	backend := s.backend
	return func() tea.Msg {
		us, err := backend.Units(context.Background())
		return loadedMsg{Units: us, Err: err}
	}
}

func (s *Screen) Title() string {
	return "Units"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.status = "could not load units: " + msg.Err.Error()
			return s, nil
		}
		s.units = msg.Units
		s.buildMenu()
		return s, nil

	case startedMsg:
		if msg.Err != nil {
			s.status = "could not start: " + msg.Err.Error()
			return s, nil
		}
		s.log.Info("progression started", "key", msg.Result.Key, "size", len(msg.Result.List), "pos", msg.Result.Pos)
		next := practice.New(s.backend, s.log)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) buildMenu() {
	total := 0
	items := make([]components.MenuItem, 0, len(s.units)+1)
	for _, u := range s.units {
		total += u.Count
		items = append(items, components.MenuItem{
			Label:    u.Name,
			Detail:   fmt.Sprintf("%d", u.Count),
			Disabled: u.Count == 0,
			Action:   s.starter(u.Name),
		})
	}
	items = append(items, components.MenuItem{
		Label:    "All questions",
		Detail:   fmt.Sprintf("%d", total),
		Disabled: total == 0,
		Action:   s.starter(""),
	})
	s.menu = components.NewMenu(items)
}

// starter returns the menu action for unit. An empty unit starts the
// course-wide progression.
func (s *Screen) starter(unit string) func() tea.Cmd {
	return func() tea.Cmd {
		reveal := s.reveal
		req := gateway.StartRequest{Mode: gateway.ModeSequential, Unit: unit, Reveal: &reveal}
		backend := s.backend
		return func() tea.Msg {
			res, err := backend.StartProgression(context.Background(), req)
			return startedMsg{Result: res, Err: err}
		}
	}
}

func (s *Screen) View(width, height int) string {
	cw := min(width-4, 64)
	var sections []string
	sections = append(sections, theme.Title.Render("Pick a unit"))
	if s.reveal {
		sections = append(sections, theme.Hint.Render("Answers will be revealed."))
	}
	switch {
	case s.loading:
		sections = append(sections, theme.Hint.Render("Loading…"))
	case len(s.menu.Items) > 0:
		sections = append(sections, strings.TrimRight(s.menu.View(), "\n"))
	}
	if s.status != "" {
		sections = append(sections, theme.Hint.Render(s.status))
	}
	body := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, body)
}
