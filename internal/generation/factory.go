package generation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsmith/internal/config"
)

// NewFromConfig builds a Generator for the configured provider.
// Provider "auto" probes the local Ollama server first and picks its
// first model; it falls back to Gemini when nothing local is running.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := cfg.Provider
	model := cfg.Model

	if provider == "auto" {
		if local := ListOllamaModels(ctx, cfg.OllamaURL); len(local) > 0 {
			provider = "ollama"
			if model == "" {
				model = local[0]
			}
			logger.Info("auto-detected local ollama model",
				zap.String("model", model), zap.Int("available", len(local)))
		} else {
			provider = "gemini"
			logger.Info("no local ollama models, falling back to gemini")
		}
	}

	switch provider {
	case "ollama":
		if model == "" {
			model = config.DefaultOllamaModel
		}
		return NewOllamaGenerator(cfg.OllamaURL, model, *cfg.Temperature), nil

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		if cfg.OpenAIBaseURL != "" {
			return NewOpenAICompatGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model, *cfg.Temperature), nil
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, model, *cfg.Temperature), nil

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		if model == "" {
			model = config.DefaultGeminiModel
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, model, *cfg.Temperature)

	default:
		return nil, fmt.Errorf("unknown provider: %q (valid: gemini, openai, ollama, auto)", provider)
	}
}
