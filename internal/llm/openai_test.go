package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type chatCapture struct {
	body map[string]any
}

func chatServer(t *testing.T, capture *chatCapture, status int, content, finish string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(&capture.body)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "nope", "type": "server_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestDeepSeekProvider_JSONObjectMode(t *testing.T) {
	var capture chatCapture
	url := chatServer(t, &capture, http.StatusOK, `{"explanation":"ok"}`, "stop")

	p, err := NewDeepSeekProvider(Config{Provider: ProviderDeepSeek, APIKey: "k", BaseURL: url})
	if err != nil {
		t.Fatalf("NewDeepSeekProvider: %v", err)
	}
	if p.ModelID() != "deepseek-chat" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	req := UserPrompt("explain")
	req.System = "Be brief."
	req.Schema = explanationTestSchema
	req.MaxTokens = 150
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"explanation":"ok"}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("usage = %+v", resp.Usage)
	}

	rf, _ := capture.body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format = %v, want json_object", capture.body["response_format"])
	}
	if capture.body["max_tokens"] != float64(150) {
		t.Fatalf("max_tokens = %v", capture.body["max_tokens"])
	}
	msgs, _ := capture.body["messages"].([]any)
	sys, _ := msgs[0].(map[string]any)
	if !strings.Contains(sys["content"].(string), "json object") || !strings.HasPrefix(sys["content"].(string), "Be brief.") {
		t.Fatalf("system prompt = %q", sys["content"])
	}
}

func TestOpenAIProvider_StrictSchema(t *testing.T) {
	var capture chatCapture
	url := chatServer(t, &capture, http.StatusOK, `{"explanation":"ok"}`, "stop")

	p, err := NewOpenAIProvider(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: url})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	req := UserPrompt("explain")
	req.Schema = explanationTestSchema
	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	rf, _ := capture.body["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("response_format = %v, want json_schema", rf)
	}
}

func TestChatProvider_PlainText(t *testing.T) {
	url := chatServer(t, nil, http.StatusOK, "just words", "stop")
	p, _ := NewDeepSeekProvider(Config{Provider: ProviderDeepSeek, APIKey: "k", BaseURL: url})

	resp, err := p.Generate(context.Background(), UserPrompt("hi"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var s string
	if err := json.Unmarshal(resp.Content, &s); err != nil || s != "just words" {
		t.Fatalf("content = %s (%v)", resp.Content, err)
	}
}

func TestChatProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var un *ErrProviderUnavailable
			return errors.As(err, &un)
		}},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			return err != nil && !IsRetryable(err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := chatServer(t, nil, tt.status, "", "")
			p, _ := NewDeepSeekProvider(Config{Provider: ProviderDeepSeek, APIKey: "k", BaseURL: url})
			_, err := p.Generate(context.Background(), UserPrompt("x"))
			if !tt.check(err) {
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}
}

func TestChatProvider_TruncatedStructuredOutput(t *testing.T) {
	url := chatServer(t, nil, http.StatusOK, `{"explanation":"cut`, "length")
	p, _ := NewDeepSeekProvider(Config{Provider: ProviderDeepSeek, APIKey: "k", BaseURL: url})

	req := UserPrompt("x")
	req.Schema = explanationTestSchema
	_, err := p.Generate(context.Background(), req)
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}
}
