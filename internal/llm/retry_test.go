package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry(p Provider) (*RetryProvider, *[]time.Duration) {
	r := WithRetry(p, RetryConfig{
		MaxAttempts: 3,
		InitialWait: 10 * time.Millisecond,
		MaxWait:     15 * time.Millisecond,
		Multiplier:  2.0,
	})
	var waits []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: 2 * time.Second}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	r, waits := fastRetry(mock)

	resp, err := r.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("calls = %d, want 3", mock.CallCount())
	}
	if len(*waits) != 2 {
		t.Fatalf("waits = %v", *waits)
	}
	if w := (*waits)[0]; w < 8*time.Millisecond || w > 12*time.Millisecond {
		t.Fatalf("first backoff = %v, want 10ms ±20%%", w)
	}
	if (*waits)[1] != 2*time.Second {
		t.Fatalf("rate limit wait = %v, want RetryAfter", (*waits)[1])
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{}}
	mock := NewMockProvider(down, down, down, down)
	r, waits := fastRetry(mock)

	_, err := r.Generate(context.Background(), Request{})
	var un *ErrProviderUnavailable
	if !errors.As(err, &un) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 3 || len(*waits) != 2 {
		t.Fatalf("calls = %d, waits = %d", mock.CallCount(), len(*waits))
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}}
	mock := NewMockProvider(bad, bad, MockResponse{Content: json.RawMessage(`{}`)})
	r, _ := fastRetry(mock)

	_, err := r.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetry_PermanentErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"max tokens", &ErrMaxTokensExceeded{}},
		{"rejected", errors.New("provider rejected request")},
		{"cancelled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockResponse{Content: json.RawMessage(`{}`)})
			r, _ := fastRetry(mock)
			_, err := r.Generate(context.Background(), Request{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if mock.CallCount() != 1 {
				t.Fatalf("calls = %d, want 1", mock.CallCount())
			}
		})
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, MockResponse{Content: json.RawMessage(`{}`)})
	r := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := r.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
