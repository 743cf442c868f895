// Package home is the main menu: resume the current progression, start a
// new one, and change the learner's display flags.
package home

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/progression"
	"github.com/abhisek/quizmate/internal/quiz"
	"github.com/abhisek/quizmate/internal/router"
	"github.com/abhisek/quizmate/internal/screen"
	"github.com/abhisek/quizmate/internal/screens/practice"
	"github.com/abhisek/quizmate/internal/screens/units"
	"github.com/abhisek/quizmate/internal/ui/components"
	"github.com/abhisek/quizmate/internal/ui/layout"
	"github.com/abhisek/quizmate/internal/ui/theme"
)

type prompt int

const (
	promptNone prompt = iota
	promptRandom
	promptClear
)

type loadedMsg struct {
	Data *quiz.UserData
	Err  error
}

type startedMsg struct {
	Result *gateway.StartResult
	Err    error
}

type flagsMsg struct {
	Flags quiz.Flags
	Err   error
}

type revealToggledMsg struct{}

type clearedMsg struct {
	Unit string
	Err  error
}

// Screen is the home menu.
type Screen struct {
	backend screen.Backend
	log     *slog.Logger

	data    *quiz.UserData
	loading bool
	err     string
	status  string

	// reveal applies to the next progression started from this menu.
	reveal     bool
	revealInit bool

	prompt prompt
	count  components.NumberInput
	menu   components.Menu
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.Resumer = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the home screen.
func New(backend screen.Backend, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Screen{backend: backend, log: logger, loading: true}
	h.rebuildMenu()
	return h
}

func (h *Screen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the user data after a quiz was closed.
func (h *Screen) Resume() tea.Cmd {
	return h.load()
}

func (h *Screen) Title() string {
	return "Home"
}

func (h *Screen) CapturingInput() bool {
	return h.prompt != promptNone
}

func (h *Screen) KeyHints() []layout.KeyHint {
	switch h.prompt {
	case promptRandom:
		return []layout.KeyHint{{Key: "Enter", Description: "Start"}, {Key: "Esc", Description: "Cancel"}}
	case promptClear:
		return []layout.KeyHint{{Key: "y", Description: "Clear"}, {Key: "any key", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *Screen) load() tea.Cmd {
	backend := h.backend
	return func() tea.Msg {
		ud, err := backend.FetchUserData(context.Background())
		return loadedMsg{Data: ud, Err: err}
	}
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		h.loading = false
		if msg.Err != nil {
			h.err = msg.Err.Error()
			h.log.Warn("fetch user data failed", "err", msg.Err)
		} else {
			h.err = ""
			h.data = msg.Data
			if !h.revealInit {
				h.reveal = msg.Data.Flags.RevealMode
				h.revealInit = true
			}
		}
		h.rebuildMenu()
		return h, nil

	case startedMsg:
		if msg.Err != nil {
			h.status = "could not start: " + msg.Err.Error()
			return h, nil
		}
		if len(msg.Result.List) == 0 {
			h.status = progression.Describe(msg.Result.Key) + " has no questions"
			return h, h.load()
		}
		h.status = ""
		next := practice.New(h.backend, h.log)
		return h, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case flagsMsg:
		if msg.Err != nil {
			h.status = "could not update flags: " + msg.Err.Error()
			return h, nil
		}
		if h.data != nil {
			h.data.Flags = msg.Flags
		}
		h.rebuildMenu()
		return h, nil

	case revealToggledMsg:
		h.reveal = !h.reveal
		h.rebuildMenu()
		return h, nil

	case clearedMsg:
		if msg.Err != nil {
			h.status = "could not clear: " + msg.Err.Error()
			return h, nil
		}
		h.status = fmt.Sprintf("history of %s cleared", msg.Unit)
		return h, h.load()

	case tea.KeyMsg:
		switch h.prompt {
		case promptRandom:
			return h.updateRandomPrompt(msg)
		case promptClear:
			h.prompt = promptNone
			if msg.String() == "y" {
				return h, h.clear(string(h.activeKey()))
			}
			h.status = ""
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) updateRandomPrompt(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.prompt = promptNone
		return h, nil
	case "enter":
		h.prompt = promptNone
		n, ok := h.count.Value()
		if !ok {
			n = 0
		}
		return h, h.start(gateway.StartRequest{Mode: gateway.ModeRandom, Count: n})
	}
	var cmd tea.Cmd
	h.count, cmd = h.count.Update(msg)
	return h, cmd
}

func (h *Screen) activeKey() quiz.ProgressionKey {
	if h.data == nil {
		return ""
	}
	return h.data.Active()
}

// clearableUnit reports whether the active progression is a single unit.
func (h *Screen) clearableUnit() (string, bool) {
	key := h.activeKey()
	if key == "" || key == progression.SequentialAllKey || progression.IsEphemeral(key) {
		return "", false
	}
	return string(key), true
}

func (h *Screen) start(req gateway.StartRequest) tea.Cmd {
	reveal := h.reveal
	req.Reveal = &reveal
	backend := h.backend
	return func() tea.Msg {
		res, err := backend.StartProgression(context.Background(), req)
		return startedMsg{Result: res, Err: err}
	}
}

func (h *Screen) setExplanations(on bool) tea.Cmd {
	backend := h.backend
	return func() tea.Msg {
		f, err := backend.UpdateFlags(context.Background(), map[string]bool{"show_explanations": on})
		return flagsMsg{Flags: f, Err: err}
	}
}

func (h *Screen) clear(unit string) tea.Cmd {
	backend := h.backend
	return func() tea.Msg {
		return clearedMsg{Unit: unit, Err: backend.ClearUnit(context.Background(), unit)}
	}
}

func (h *Screen) rebuildMenu() {
	var (
		active        = h.activeKey()
		activeDetail  string
		hasActive     bool
		wrong, star   int
		explanationOn bool
	)
	if h.data != nil {
		if st, ok := h.data.Progressions.Get(active); ok && len(st.List) > 0 {
			hasActive = true
			activeDetail = fmt.Sprintf("%s  %d/%d", progression.Describe(active), min(st.Position+1, len(st.List)), len(st.List))
		}
		wrong = h.data.Global.Wrong.Len()
		star = h.data.Global.Star.Len()
		explanationOn = h.data.Flags.ShowExplanations
	}
	unit, clearable := h.clearableUnit()

	items := []components.MenuItem{
		{Label: "Continue", Detail: activeDetail, Disabled: !hasActive, Action: func() tea.Cmd {
			next := practice.New(h.backend, h.log)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: "Units", Action: func() tea.Cmd {
			next := units.New(h.backend, h.log, h.reveal)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: "Wrong answers", Detail: fmt.Sprintf("%d", wrong), Disabled: wrong == 0, Action: func() tea.Cmd {
			return h.start(gateway.StartRequest{Mode: gateway.ModeTag, Tag: string(progression.WrongKey)})
		}},
		{Label: "Starred", Detail: fmt.Sprintf("%d", star), Disabled: star == 0, Action: func() tea.Cmd {
			return h.start(gateway.StartRequest{Mode: gateway.ModeTag, Tag: string(progression.StarKey)})
		}},
		{Label: "Random review", Action: func() tea.Cmd {
			h.prompt = promptRandom
			h.count = components.NewNumberInput("How many questions? ", 4)
			h.count.Model.Placeholder = "50"
			return h.count.Focus()
		}},
		{Label: "Reveal answers", Detail: onOff(h.reveal), Action: func() tea.Cmd {
			return func() tea.Msg { return revealToggledMsg{} }
		}},
		{Label: "Show explanations", Detail: onOff(explanationOn), Disabled: h.data == nil, Action: func() tea.Cmd {
			return h.setExplanations(!explanationOn)
		}},
		{Label: "Clear unit history", Detail: unit, Disabled: !clearable, Action: func() tea.Cmd {
			h.prompt = promptClear
			return nil
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu.SetItems(items)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (h *Screen) View(width, height int) string {
	cw := min(width-4, 64)
	var sections []string

	sections = append(sections, theme.Title.Render("Quizmate"))
	switch {
	case h.loading:
		sections = append(sections, theme.Hint.Render("Loading…"))
	case h.err != "":
		sections = append(sections, theme.Incorrect.Render("Could not load your data: "+h.err))
	default:
		sections = append(sections, h.renderStats(cw))
	}

	sections = append(sections, strings.TrimRight(h.menu.View(), "\n"))

	switch h.prompt {
	case promptRandom:
		sections = append(sections, h.count.View())
	case promptClear:
		unit, _ := h.clearableUnit()
		sections = append(sections, theme.Notice.Render(
			fmt.Sprintf("Clear every answer recorded for %s?\n\n", unit)+theme.Hint.Render("y to confirm, any other key to cancel")))
	}
	if h.status != "" {
		sections = append(sections, theme.Hint.Render(h.status))
	}

	body := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (h *Screen) renderStats(cw int) string {
	answered, correct := 0, 0
	for _, rec := range h.data.LastChoice {
		answered++
		if rec.Correct {
			correct++
		}
	}
	line := fmt.Sprintf("Answered %d  ·  Correct %d  ·  Wrong list %d  ·  Starred %d",
		answered, correct, h.data.Global.Wrong.Len(), h.data.Global.Star.Len())
	return theme.Card.Width(cw).Render(theme.Body.Render(line))
}
