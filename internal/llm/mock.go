package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted responses in order and records requests.
// When the script runs out it answers with Fallback, if set, or with
// ErrProviderUnavailable.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	calls    []Request
	Fallback func(Request) MockResponse
}

// NewMockProvider creates a provider with the given script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, req)
	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Fallback != nil:
		next = m.Fallback(req)
	default:
		next = MockResponse{Err: &ErrProviderUnavailable{}}
	}
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	if err := validateResponse(req.Schema, next.Content); err != nil {
		return nil, err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

// Push appends responses to the script.
func (m *MockProvider) Push(rs ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, rs...)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// CallCount returns the number of Generate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
