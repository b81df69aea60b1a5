package factory

import (
	"fmt"

	"pushpilot-be/pkg/llm"
	"pushpilot-be/pkg/llm/ollama"
	"pushpilot-be/pkg/llm/openai"
)

type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openai", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM provider %q requires an API key", cfg.Provider)
		}
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
