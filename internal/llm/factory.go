package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"autodoc/internal/config"
)

// Provider identifies a completion backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// NewClientFromConfig creates a completion client from resolved configuration.
// Empty model and base URL fields fall back to each provider's defaults.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Client, error) {
	llmCfg := cfg.LLM
	if llmCfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	switch Provider(llmCfg.Provider) {
	case ProviderAnthropic, "":
		clientCfg := DefaultAnthropicConfig(llmCfg.APIKey)
		clientCfg.Timeout = cfg.GetLLMTimeout()
		clientCfg.Logger = logger
		if llmCfg.BaseURL != "" {
			clientCfg.BaseURL = llmCfg.BaseURL
		}
		if llmCfg.Model != "" {
			clientCfg.Model = llmCfg.Model
		}
		return NewAnthropicClientWithConfig(clientCfg), nil

	case ProviderOpenAI:
		clientCfg := DefaultOpenAIConfig(llmCfg.APIKey)
		clientCfg.Timeout = cfg.GetLLMTimeout()
		clientCfg.Logger = logger
		if llmCfg.BaseURL != "" {
			clientCfg.BaseURL = llmCfg.BaseURL
		}
		if llmCfg.Model != "" {
			clientCfg.Model = llmCfg.Model
		}
		return NewOpenAIClientWithConfig(clientCfg), nil

	case ProviderGemini:
		clientCfg := DefaultGeminiConfig(llmCfg.APIKey)
		clientCfg.Timeout = cfg.GetLLMTimeout()
		clientCfg.Logger = logger
		if llmCfg.BaseURL != "" {
			clientCfg.BaseURL = llmCfg.BaseURL
		}
		if llmCfg.Model != "" {
			clientCfg.Model = llmCfg.Model
		}
		return NewGeminiClientWithConfig(ctx, clientCfg)

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: anthropic, openai, gemini)", llmCfg.Provider)
	}
}
