package generator

import (
	"context"

	"github.com/pkg/errors"
)

// LLMClient abstracts the model backend so it can be mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings configures a concrete client.
type LLMSettings struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// NewLLMFromConfig picks the client for cfg.Provider: "openai" (the
// default) or "mock".
func NewLLMFromConfig(cfg *LLMSettings) (LLMClient, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAILLMFromConfig(cfg)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, errors.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
