// Package explain generates short answer explanations for a course with
// an LLM and keeps them in explanation files.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/llm"
	"github.com/abhisek/quizmate/internal/quiz"
)

// Purpose tags the llm_requests events written by the generator.
const Purpose = "explanation"

// Config tunes a generation run.
type Config struct {
	// Concurrency is the number of requests in flight.
	Concurrency int

	// Delay is the pause a worker takes after each request.
	Delay time.Duration

	// Timeout bounds one request, retries included.
	Timeout time.Duration

	MaxTokens   int
	Temperature float64

	// Force regenerates questions that already have an explanation.
	Force bool
}

// DefaultConfig returns the settings used by "quizmate explain".
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		Delay:       time.Second,
		Timeout:     30 * time.Second,
		MaxTokens:   150,
		Temperature: 0.7,
	}
}

// Outcome reports one finished question to Generator.OnResult.
type Outcome struct {
	ID          quiz.QuestionID
	Explanation string
	Err         error
}

// Result summarizes a run.
type Result struct {
	Total     int
	Generated int
	Kept      int
	Failed    []Outcome

	// Explanations holds kept and generated texts.
	Explanations map[quiz.QuestionID]string
}

// Generator asks an LLM for one explanation per question.
type Generator struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger

	// OnResult, when set, is called once per requested question. Calls are
	// serialized.
	OnResult func(Outcome)
}

// NewGenerator creates a generator.
func NewGenerator(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{provider: provider, cfg: cfg, log: logger}
}

// Run explains every question of course. Entries of existing are kept
// unless Force is set. A failed question is reported in Result.Failed and
// does not stop the run; only cancellation of ctx does.
func (g *Generator) Run(ctx context.Context, course *bank.Course, existing map[quiz.QuestionID]string) (*Result, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	res := &Result{Explanations: make(map[quiz.QuestionID]string, course.Len())}
	var todo []*quiz.Question
	for _, id := range course.IDs() {
		res.Total++
		if text, ok := existing[id]; ok && text != "" && !g.cfg.Force {
			res.Explanations[id] = text
			res.Kept++
			continue
		}
		q, _ := course.Question(id)
		todo = append(todo, q)
	}

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for _, q := range todo {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			text, err := g.Explain(ctx, q)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out := Outcome{ID: q.ID, Explanation: text, Err: err}

			mu.Lock()
			if err != nil {
				g.log.Warn("explain question", "uid", q.ID, "error", err)
				res.Failed = append(res.Failed, out)
			} else {
				res.Explanations[q.ID] = text
				res.Generated++
			}
			if g.OnResult != nil {
				g.OnResult(out)
			}
			mu.Unlock()

			return sleep(ctx, g.cfg.Delay)
		})
	}
	if err := eg.Wait(); err != nil {
		return res, fmt.Errorf("generate explanations: %w", err)
	}
	return res, nil
}

// Explain asks for the explanation of a single question.
func (g *Generator) Explain(ctx context.Context, q *quiz.Question) (string, error) {
	if !q.Disclosed() {
		return "", fmt.Errorf("question %s has no answer", q.ID)
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(q)}},
		Schema:      Schema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", q.ID, err)
	}

	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse explanation for %s: %w", q.ID, err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", fmt.Errorf("empty explanation for %s", q.ID)
	}
	return text, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
