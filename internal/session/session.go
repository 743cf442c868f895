// Package session implements the quiz session state machine: which
// progression is active, when answer history is visible, how answers are
// recorded at most once, and how stars and positions reach the gateway.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/mirror"
	"github.com/abhisek/quizmate/internal/progression"
	"github.com/abhisek/quizmate/internal/quiz"
)

// Saver checkpoints a progression position. Save must not block and must
// not report failures; see package checkpoint.
type Saver interface {
	Save(key quiz.ProgressionKey, pos int)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session owns the learner state of one session entry. It is safe for
// concurrent use. The mutex is never held across a gateway call.
type Session struct {
	gw    gateway.Gateway
	saver Saver
	log   *slog.Logger

	mu       sync.Mutex
	res      progression.Resolved
	mirror   *mirror.Mirror
	ledger   *mirror.Ledger
	gate     *Gate
	flags    quiz.Flags
	pos      int
	inflight map[quiz.QuestionID]bool

	// Last loaded question and what its load observed.
	current    *quiz.Question
	suppressed bool
}

// Open fetches the learner state, resolves the active progression and
// returns a session positioned at its stored cursor.
func Open(ctx context.Context, gw gateway.Gateway, saver Saver, opts ...Option) (*Session, error) {
	ud, err := gw.FetchUserData(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s := &Session{
		gw:       gw,
		saver:    saver,
		log:      slog.New(slog.DiscardHandler),
		inflight: make(map[quiz.QuestionID]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	flags, err := gw.FetchFlags(ctx)
	if err != nil {
		s.log.Warn("fetch flags failed, using stored flags", "err", err)
		flags = ud.Flags
	}

	s.res = progression.Resolve(ud)
	s.mirror = mirror.New(ud)
	if s.res.Ephemeral {
		s.ledger = mirror.NewLedger(s.res.Key)
	}
	s.gate = NewGate(s.res.Ephemeral)
	s.flags = flags
	s.pos = s.res.Position
	return s, nil
}

// Mode describes the active progression for the presentation layer.
type Mode struct {
	Key       quiz.ProgressionKey
	Ephemeral bool
	Reveal    bool
	Explain   bool
}

// Mode returns the mode flags of the session.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Mode{
		Key:       s.res.Key,
		Ephemeral: s.res.Ephemeral,
		Reveal:    s.res.Reveal,
		Explain:   s.flags.ShowExplanations,
	}
}

// SetFlags replaces the display flags, e.g. after the learner toggled
// explanations through the catalog.
func (s *Session) SetFlags(f quiz.Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = f
}

// Position returns the cursor index.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Len returns the number of questions in the active progression.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.res.List)
}

// Finished reports whether the cursor is past the last question.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos >= len(s.res.List)
}

// Ledger returns the transient ledger, or nil in a durable progression.
func (s *Session) Ledger() *mirror.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// Mirror returns the durable mirror. Callers must not mutate it while the
// session is in use.
func (s *Session) Mirror() *mirror.Mirror {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror
}

// Next moves the cursor forward, stopping at the last question.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.res.List); n > 0 {
		s.pos = min(s.pos+1, n-1)
	}
	s.checkpoint()
	return s.pos
}

// Prev moves the cursor back, stopping at the first question.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.res.List) > 0 {
		s.pos = max(min(s.pos-1, len(s.res.List)-1), 0)
	}
	s.checkpoint()
	return s.pos
}

// Jump moves the cursor to index.
func (s *Session) Jump(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.res.List) {
		return fmt.Errorf("jump to %d of %d: %w", index+1, len(s.res.List), ErrOutOfRange)
	}
	s.pos = index
	s.checkpoint()
	return nil
}

// ToggleStar flips the star of id on the gateway and converges the local
// star set to the returned state. Stars are allowed in every mode and are
// never blocked by answer records.
func (s *Session) ToggleStar(ctx context.Context, id quiz.QuestionID) (bool, error) {
	res, err := s.gw.ToggleStar(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle star: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror.SetStarred(id, res.Starred)
	s.checkpoint()
	return res.Starred, nil
}

// checkpoint hands the cursor to the saver. Callers hold mu.
func (s *Session) checkpoint() {
	if !s.res.HasKey() {
		return
	}
	s.mirror.SetPosition(s.res.Key, s.pos)
	if s.saver != nil {
		s.saver.Save(s.res.Key, s.pos)
	}
}

// record returns the answer record that governs submissions for id in the
// active progression. Callers hold mu.
func (s *Session) record(id quiz.QuestionID) (quiz.AnswerRecord, bool) {
	if s.res.Ephemeral {
		return s.ledger.Get(id)
	}
	return s.mirror.LastChoice(id)
}
