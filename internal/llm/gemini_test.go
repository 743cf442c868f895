package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiProvider_Generate(t *testing.T) {
	var path string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"explanation":"ok"}`}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 4, "totalTokenCount": 16},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), Config{Provider: ProviderGemini, APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	if p.ModelID() != "gemini-2.0-flash" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	req := UserPrompt("explain")
	req.System = "Be brief."
	req.Schema = explanationTestSchema
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"explanation":"ok"}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if !strings.Contains(path, "gemini-2.0-flash:generateContent") {
		t.Fatalf("path = %q", path)
	}
	gc, _ := body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" {
		t.Fatalf("generationConfig = %v", gc)
	}
}
