package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// schemaMode is how a chat-completions endpoint is asked for JSON.
type schemaMode int

const (
	// schemaStrict sends the schema as a json_schema response format.
	schemaStrict schemaMode = iota

	// schemaInPrompt asks for a json_object and appends the schema to the
	// system prompt, for endpoints without json_schema support.
	schemaInPrompt
)

// ChatProvider talks to OpenAI or an OpenAI-compatible chat-completions API.
type ChatProvider struct {
	name   string
	client *openai.Client
	model  string
	mode   schemaMode
}

// NewOpenAIProvider creates a provider for the OpenAI API. BaseURL may point
// at any compatible endpoint.
func NewOpenAIProvider(cfg Config) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &ChatProvider{
		name:   ProviderOpenAI,
		client: openai.NewClientWithConfig(oc),
		model:  cfg.ModelName(),
		mode:   schemaStrict,
	}, nil
}

func (p *ChatProvider) ModelID() string {
	return p.model
}

func (p *ChatProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	system := req.System
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: float32(req.Temperature),
	}
	if p.mode == schemaStrict {
		chatReq.MaxCompletionTokens = req.MaxTokens
	} else {
		chatReq.MaxTokens = req.MaxTokens
	}

	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		switch p.mode {
		case schemaStrict:
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   req.Schema.Name,
					Schema: json.RawMessage(def),
					Strict: true,
				},
			}
		case schemaInPrompt:
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
			system = appendSchemaHint(system, req.Schema, def)
		}
	}
	chatReq.Messages = chatMessages(system, req.Messages)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s returned no choices", p.name)}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Message.Content)
	if req.Schema == nil {
		content, _ = json.Marshal(choice.Message.Content)
	}
	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
		if req.Schema != nil {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: stop,
	}, nil
}

func chatMessages(system string, msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// appendSchemaHint tells a json_object endpoint which shape to produce.
// Those endpoints require the word "json" to appear in the prompt.
func appendSchemaHint(system string, s *Schema, def []byte) string {
	hint := fmt.Sprintf("Reply with a single json object matching this JSON Schema (%s):\n%s", s.Name, def)
	if system == "" {
		return hint
	}
	return system + "\n\n" + hint
}

func (p *ChatProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
