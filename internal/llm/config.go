package llm

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// defaultModels is the model used when Config.Model is empty.
var defaultModels = map[string]string{
	ProviderDeepSeek:  "deepseek-chat",
	ProviderAnthropic: "claude-haiku",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-flash",
	ProviderMock:      "mock",
}

// Providers lists the supported provider names.
func Providers() []string {
	out := make([]string, 0, len(defaultModels))
	for p := range defaultModels {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Config selects and configures one LLM provider.
type Config struct {
	Provider string

	// Model is a provider model ID or one of the short aliases such as
	// "claude-haiku". Empty selects the provider default.
	Model string

	// BaseURL overrides the API endpoint of OpenAI-compatible providers.
	BaseURL string

	// APIKey is read from the environment only; see KeyEnv.
	APIKey string

	Retry RetryConfig

	// Timeout bounds one Generate call including retries. Default: 30s.
	Timeout time.Duration
}

// RetryConfig configures retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the DeepSeek configuration used for explanations.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderDeepSeek,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// KeyEnv returns the environment variable holding the API key of provider,
// e.g. QUIZMATE_DEEPSEEK_API_KEY.
func KeyEnv(provider string) string {
	return "QUIZMATE_" + strings.ToUpper(provider) + "_API_KEY"
}

// ApplyEnv overrides c from QUIZMATE_LLM_PROVIDER, QUIZMATE_LLM_MODEL and
// QUIZMATE_LLM_BASE_URL, then loads the API key of the selected provider.
func (c *Config) ApplyEnv() {
	if p := os.Getenv("QUIZMATE_LLM_PROVIDER"); p != "" {
		c.Provider = p
	}
	if m := os.Getenv("QUIZMATE_LLM_MODEL"); m != "" {
		c.Model = m
	}
	if u := os.Getenv("QUIZMATE_LLM_BASE_URL"); u != "" {
		c.BaseURL = u
	}
	if k := os.Getenv(KeyEnv(c.Provider)); k != "" {
		c.APIKey = k
	}
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks that the provider is known and has its API key.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider %q (want one of %s)", c.Provider, strings.Join(Providers(), ", "))
	}
	if c.Provider != ProviderMock && c.APIKey == "" {
		return fmt.Errorf("%s is required for the %s provider", KeyEnv(c.Provider), c.Provider)
	}
	return nil
}
