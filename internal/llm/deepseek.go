package llm

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

// NewDeepSeekProvider creates a provider for the DeepSeek chat API, which
// speaks the OpenAI protocol but only supports json_object output.
func NewDeepSeekProvider(cfg Config) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = defaultDeepSeekBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &ChatProvider{
		name:   ProviderDeepSeek,
		client: openai.NewClientWithConfig(oc),
		model:  cfg.ModelName(),
		mode:   schemaInPrompt,
	}, nil
}
