package gateway

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/quizmate/internal/quiz"
)

// RetryConfig controls the read retry behavior.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns sensible defaults for an interactive client.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryGateway retries idempotent reads that failed transiently. Writes
// pass through untouched: a repeated SubmitAnswer or ToggleStar could apply
// twice.
type RetryGateway struct {
	Gateway
	config RetryConfig
}

// WithRetry wraps g with read retries.
func WithRetry(g Gateway, cfg RetryConfig) *RetryGateway {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryGateway{Gateway: g, config: cfg}
}

func (r *RetryGateway) FetchUserData(ctx context.Context) (*quiz.UserData, error) {
	return retryRead(ctx, r, func() (*quiz.UserData, error) {
		return r.Gateway.FetchUserData(ctx)
	})
}

func (r *RetryGateway) FetchFlags(ctx context.Context) (quiz.Flags, error) {
	return retryRead(ctx, r, func() (quiz.Flags, error) {
		return r.Gateway.FetchFlags(ctx)
	})
}

func (r *RetryGateway) FetchQuestion(ctx context.Context, id quiz.QuestionID, reveal bool) (*quiz.Question, error) {
	return retryRead(ctx, r, func() (*quiz.Question, error) {
		return r.Gateway.FetchQuestion(ctx, id, reveal)
	})
}

func retryRead[T any](ctx context.Context, r *RetryGateway, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := range r.config.MaxAttempts {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return zero, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
	return zero, lastErr
}

func (r *RetryGateway) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
