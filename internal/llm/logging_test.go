package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/quizmate/internal/store"
)

func openEventStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st := openEventStore(t)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"explanation":"ok"}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	p := WithLogging(mock, ProviderDeepSeek, st.EventRepo(), nil)
	ctx := WithPurpose(context.Background(), "explanation")

	req := UserPrompt("why B?")
	req.System = "Be brief."
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error")
	}

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{Purpose: "explanation"})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("newest event = %+v, want the failure", failed)
	}
	if !ok.Success || ok.Provider != ProviderDeepSeek || ok.Model != "mock" {
		t.Fatalf("first event = %+v", ok)
	}
	if ok.InputTokens != 7 || ok.OutputTokens != 3 {
		t.Fatalf("tokens = %d/%d", ok.InputTokens, ok.OutputTokens)
	}
	if ok.ResponseBody != `{"explanation":"ok"}` {
		t.Fatalf("response body = %q", ok.ResponseBody)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nBe brief.") || !strings.Contains(ok.RequestBody, "[user]\nwhy B?") {
		t.Fatalf("request body = %q", ok.RequestBody)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	st := openEventStore(t)
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock

	p, err := NewProvider(context.Background(), cfg, st.EventRepo(), nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	cfg.Provider = ProviderDeepSeek
	cfg.APIKey = ""
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}
