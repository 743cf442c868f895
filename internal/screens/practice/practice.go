// Package practice is the quiz screen: one question at a time from the
// active progression, with a list grid of every question's status.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizmate/internal/checkpoint"
	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/quiz"
	"github.com/abhisek/quizmate/internal/screen"
	sess "github.com/abhisek/quizmate/internal/session"
	"github.com/abhisek/quizmate/internal/ui/components"
	"github.com/abhisek/quizmate/internal/ui/layout"
)

// Screen implements screen.Screen for a quiz session.
type Screen struct {
	backend gateway.Gateway
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	saver   *checkpoint.Service

	session *sess.Session
	view    *sess.QuestionView
	loading bool

	cursor int
	picks  map[string]bool

	submitting bool
	jumping    bool
	jump       components.NumberInput

	// notice blocks the screen until a key is pressed.
	notice string
	status string
	errMsg string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New creates a quiz screen for the progression the backend reports as
// current.
func New(backend gateway.Gateway, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		backend: backend,
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
		saver:   checkpoint.NewService(backend, checkpoint.WithLogger(logger)),
		picks:   make(map[string]bool),
		loading: true,
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.openSession()
}

func (s *Screen) Title() string {
	return "Quiz"
}

// Close stops pending requests and flushes queued position saves.
func (s *Screen) Close() {
	s.cancel()
	s.saver.Close()
}

func (s *Screen) CapturingInput() bool {
	return s.jumping || s.notice != ""
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.notice != "" || s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.jumping:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{{Key: "1-9", Description: "Answer"}}
	if s.view != nil && s.view.Question.Type == quiz.MultiSelect {
		hints = append(hints,
			layout.KeyHint{Key: "Space", Description: "Toggle"},
			layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	return append(hints,
		layout.KeyHint{Key: "←→", Description: "Prev/Next"},
		layout.KeyHint{Key: "g", Description: "Go to"},
		layout.KeyHint{Key: "s", Description: "Star"},
		layout.KeyHint{Key: "Esc", Description: "Menu"},
	)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		return s.handleOpened(msg)
	case loadedMsg:
		return s.handleLoaded(msg)
	case submittedMsg:
		return s.handleSubmitted(msg)
	case starredMsg:
		return s.handleStarred(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.jumping {
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) openSession() tea.Cmd {
	ctx, backend, saver, log := s.ctx, s.backend, s.saver, s.log
	return func() tea.Msg {
		se, err := sess.Open(ctx, backend, saver, sess.WithLogger(log))
		return openedMsg{Session: se, Err: err}
	}
}

func (s *Screen) loadQuestion() tea.Cmd {
	if s.session == nil || s.session.Finished() {
		s.loading = false
		s.view = nil
		return nil
	}
	s.loading = true
	ctx, se, pos := s.ctx, s.session, s.session.Position()
	return func() tea.Msg {
		v, err := se.LoadQuestion(ctx)
		return loadedMsg{Pos: pos, View: v, Err: err}
	}
}

func (s *Screen) handleOpened(msg openedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.loading = false
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.session = msg.Session
	if s.session.Len() == 0 {
		s.loading = false
		return s, nil
	}
	return s, s.loadQuestion()
}

func (s *Screen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if s.session == nil || msg.Pos != s.session.Position() || errors.Is(msg.Err, sess.ErrStale) {
		// The learner moved on while this was loading.
		return s, nil
	}
	s.loading = false
	if msg.Err != nil {
		s.view = nil
		s.status = "load failed: " + msg.Err.Error()
		return s, nil
	}
	s.view = msg.View
	s.cursor = 0
	s.picks = make(map[string]bool)
	return s, nil
}

func (s *Screen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	switch {
	case errors.Is(msg.Err, sess.ErrAlreadyAnswered):
		s.notice = alreadyAnsweredNotice(msg.Err)
	case errors.Is(msg.Err, sess.ErrInFlight):
		s.status = "still submitting the previous answer"
	case errors.Is(msg.Err, sess.ErrInvalidSelection):
		s.status = "pick at least one option"
	case msg.Err != nil:
		s.status = "submit failed: " + msg.Err.Error()
		s.refresh()
	default:
		s.status = ""
		if s.view != nil && s.view.Question.ID == msg.ID {
			s.view = msg.View
		}
		s.picks = make(map[string]bool)
	}
	return s, nil
}

func (s *Screen) handleStarred(msg starredMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.status = "star failed: " + msg.Err.Error()
		return s, nil
	}
	if msg.Starred {
		s.status = "starred"
	} else {
		s.status = "star removed"
	}
	s.refresh()
	return s, nil
}

// refresh rebuilds the view of the loaded question from session state.
func (s *Screen) refresh() {
	if s.session == nil || s.view == nil {
		return
	}
	if v, err := s.session.Current(); err == nil && v.Question.ID == s.view.Question.ID {
		s.view = v
	}
}

func alreadyAnsweredNotice(err error) string {
	var ae *sess.AlreadyAnsweredError
	if errors.As(err, &ae) && ae.Scope == sess.ScopeEphemeral {
		return "You already answered this question in this review."
	}
	return "You already answered this question.\nClear the unit's history from the menu to answer it again."
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.notice != "" {
		s.notice = ""
		return s, nil
	}
	if s.errMsg != "" || s.session == nil {
		return s, nil
	}
	if s.jumping {
		return s.handleJumpKey(msg)
	}

	switch key {
	case "left", "h":
		s.status = ""
		s.session.Prev()
		return s, s.loadQuestion()
	case "right", "l":
		if s.session.Position() == s.session.Len()-1 {
			s.status = "this is the last question"
			return s, nil
		}
		s.status = ""
		s.session.Next()
		return s, s.loadQuestion()
	case "g":
		s.jumping = true
		s.jump = components.NewNumberInput("Go to question: ", len(fmt.Sprint(s.session.Len())))
		return s, s.jump.Focus()
	}

	if s.view == nil || s.loading {
		return s, nil
	}
	opts := s.view.Options
	multi := s.view.Question.Type == quiz.MultiSelect

	switch key {
	case "s":
		return s, s.toggleStar(s.view.Question.ID)
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
		return s, nil
	case "down", "j":
		s.cursor = min(s.cursor+1, len(opts)-1)
		return s, nil
	case "space":
		if multi && s.cursor < len(opts) {
			s.togglePick(opts[s.cursor].Key)
		}
		return s, nil
	case "enter":
		if multi {
			return s, s.submit(s.pickedSelection())
		}
		if s.cursor < len(opts) {
			return s, s.submit(quiz.Single(opts[s.cursor].Key))
		}
		return s, nil
	}

	if i, ok := optionIndex(key, opts); ok {
		s.cursor = i
		if multi {
			s.togglePick(opts[i].Key)
			return s, nil
		}
		return s, s.submit(quiz.Single(opts[i].Key))
	}
	return s, nil
}

func (s *Screen) handleJumpKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.jumping = false
		return s, nil
	case "enter":
		s.jumping = false
		n, ok := s.jump.Value()
		if !ok {
			return s, nil
		}
		if err := s.session.Jump(n - 1); err != nil {
			s.status = fmt.Sprintf("no question %d (1-%d)", n, s.session.Len())
			return s, nil
		}
		s.status = ""
		return s, s.loadQuestion()
	}
	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

// optionIndex maps a digit or an option letter to an option.
func optionIndex(key string, opts []sess.OptionView) (int, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		return i, i < len(opts)
	}
	for i, o := range opts {
		if strings.EqualFold(o.Key, key) {
			return i, true
		}
	}
	return 0, false
}

func (s *Screen) togglePick(key string) {
	if !s.view.Interactive() {
		return
	}
	s.picks[key] = !s.picks[key]
}

func (s *Screen) pickedSelection() quiz.Selection {
	var keys []string
	for _, o := range s.view.Options {
		if s.picks[o.Key] {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) == 0 {
		return quiz.Selection{}
	}
	return quiz.Multi(keys...)
}

func (s *Screen) submit(sel quiz.Selection) tea.Cmd {
	v := s.view
	if v.Reveal && !v.Answered() {
		s.status = "answers are shown in reveal mode"
		return nil
	}
	s.submitting = !v.Answered()
	ctx, se, id := s.ctx, s.session, v.Question.ID
	return func() tea.Msg {
		nv, err := se.Submit(ctx, id, sel)
		return submittedMsg{ID: id, View: nv, Err: err}
	}
}

func (s *Screen) toggleStar(id quiz.QuestionID) tea.Cmd {
	ctx, se := s.ctx, s.session
	return func() tea.Msg {
		starred, err := se.ToggleStar(ctx, id)
		return starredMsg{ID: id, Starred: starred, Err: err}
	}
}
