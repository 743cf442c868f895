package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/quizmate/internal/store"
)

// NewProvider builds the configured provider. Calls go through retry, then
// event logging, then the provider itself, so every attempt is recorded.
// A nil events repo disables event logging.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderDeepSeek:
		base, err = NewDeepSeekProvider(cfg)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	if events != nil {
		base = WithLogging(base, cfg.Provider, events, logger)
	}
	return WithRetry(base, cfg.Retry), nil
}
