package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance based on provider and configuration.
// Recognised config keys are "api_key" and "model".
func (f *Factory) CreateLLM(ctx context.Context, provider Provider, config map[string]string) (LLM, error) {
	switch Provider(strings.ToLower(string(provider))) {
	case ProviderGemini, "":
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		if model := config["model"]; model != "" {
			return NewGeminiWithModel(ctx, apiKey, model)
		}
		return NewGemini(ctx, apiKey)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: %s)", provider, ProviderGemini)
	}
}

// GetAvailableProviders returns a list of available LLM providers.
// Only providers that can ground answers in web search are listed.
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGemini}
}
