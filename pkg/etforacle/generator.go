package etforacle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generation is the provider-neutral shape of one text generation.
// Sources keep whatever the provider returned; empty titles or URIs are
// defaulted later by the insight client.
type Generation struct {
	Text    string
	Model   string
	Sources []Source
}

// Generator produces grounded text for a prompt. Implementations enable the
// provider's web-search tool and never request a structured-output schema.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// Provider names a generation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const (
	defaultGeminiModel    = "gemini-3-flash-preview"
	defaultOpenAIModel    = "gpt-4o-search-preview"
	defaultAnthropicModel = "claude-sonnet-4-5"
)

// GeneratorConfig selects and configures a backend.
type GeneratorConfig struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	Logger   *slog.Logger
}

// ParseProvider normalizes a provider name; empty means Gemini.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	}
	return "", NewError(ErrCodeUnsupported, fmt.Sprintf("unsupported ai provider %q", raw))
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	default:
		return defaultGeminiModel
	}
}

// NewGenerator builds the backend named by cfg.Provider. The API key is
// passed through as given, empty included.
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	provider, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel(provider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)

	switch provider {
	case ProviderOpenAI:
		return newOpenAIGenerator(cfg.APIKey, model, baseURL, logger), nil
	case ProviderAnthropic:
		return newAnthropicGenerator(cfg.APIKey, model, baseURL, logger), nil
	default:
		return newGeminiGenerator(cfg.APIKey, model, baseURL, logger), nil
	}
}

func logPromptDebug(logger *slog.Logger, provider Provider, model, prompt string) {
	if logger == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	logger.Debug("ai generate: prompt", "provider", string(provider), "model", model, "prompt", prompt)
}
