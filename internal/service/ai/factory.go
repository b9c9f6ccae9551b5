package ai

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/liflo-ai/liflo/internal/config"
)

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

// NewProvider creates an AI provider based on configuration
func NewProvider(cfg *config.Config) (Provider, error) {
	provider := cfg.AIProvider

	slog.Info("initializing ai provider", "provider", provider)

	switch provider {
	case "", ProviderMock:
		return NewMockProvider(), nil

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when using OpenAI provider")
		}
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, &http.Client{Timeout: cfg.AITimeout}), nil

	default:
		return nil, fmt.Errorf("unknown ai provider: %s (supported: mock, openai)", provider)
	}
}
