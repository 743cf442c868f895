// Package checkpoint saves progression positions to the gateway in the
// background. Saves are best-effort: they run in call order on a single
// worker, are never retried, and failures are only logged.
package checkpoint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/quizmate/internal/quiz"
)

// QueueSize is the number of saves that may wait for the worker.
const QueueSize = 32

// DefaultTimeout bounds a single save request.
const DefaultTimeout = 5 * time.Second

// Target is the gateway operation the service calls.
type Target interface {
	SaveProgress(ctx context.Context, key quiz.ProgressionKey, pos int) error
}

// Service is a fire-and-forget position saver.
type Service struct {
	target  Target
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	pending chan saveJob
	done    chan struct{}
}

type saveJob struct {
	key quiz.ProgressionKey
	pos int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for dropped and failed saves.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService starts the worker.
func NewService(target Target, opts ...Option) *Service {
	s := &Service{
		target:  target,
		log:     slog.New(slog.DiscardHandler),
		timeout: DefaultTimeout,
		pending: make(chan saveJob, QueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.processLoop()
	return s
}

// Save queues a position save and returns immediately. Empty keys are
// ignored. When the queue is full the oldest queued save is dropped, so the
// latest position always reaches the gateway.
func (s *Service) Save(key quiz.ProgressionKey, pos int) {
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn("checkpoint after close dropped", "key", key, "pos", pos)
		return
	}

	job := saveJob{key: key, pos: pos}
	for {
		select {
		case s.pending <- job:
			return
		default:
		}
		select {
		case old := <-s.pending:
			s.log.Warn("checkpoint queue full, oldest save dropped", "key", old.key, "pos", old.pos)
		default:
		}
	}
}

func (s *Service) processLoop() {
	defer close(s.done)
	for job := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.target.SaveProgress(ctx, job.key, job.pos)
		cancel()
		if err != nil {
			s.log.Warn("save progress failed", "key", job.key, "pos", job.pos, "err", err)
		}
	}
}

// Close stops accepting saves and waits until the queued ones ran.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.pending)
	}
	s.mu.Unlock()
	<-s.done
}
