package generation

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator produces documentation via any OpenAI-compatible
// chat-completions endpoint. With the base URL pointed at a local
// Ollama server's /v1 path it runs fully offline.
type OpenAIGenerator struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
}

// NewOpenAIGenerator creates an OpenAI-backed generator.
func NewOpenAIGenerator(apiKey, model string, temperature float64) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		provider:    "openai",
		model:       model,
		temperature: float32(temperature),
	}
}

// NewOpenAICompatGenerator creates a generator against a custom
// OpenAI-compatible base URL.
func NewOpenAICompatGenerator(apiKey, baseURL, model string, temperature float64) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		provider:    "openai",
		model:       model,
		temperature: float32(temperature),
	}
}

// NewOllamaGenerator creates a generator backed by a local Ollama
// server through its OpenAI-compatible endpoint.
func NewOllamaGenerator(baseURL, model string, temperature float64) *OpenAIGenerator {
	// Ollama ignores the key but the client requires one.
	g := NewOpenAICompatGenerator("ollama", strings.TrimSuffix(baseURL, "/")+"/v1", model, temperature)
	g.provider = "ollama"
	return g
}

// Generate sends one chat completion and returns the raw output.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(req.Style)},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(req)},
		},
	})
	if err != nil {
		return "", &TransportError{Provider: g.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &TransportError{Provider: g.Name(), Err: fmt.Errorf("no completion returned")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name identifies the provider and model.
func (g *OpenAIGenerator) Name() string {
	return fmt.Sprintf("%s:%s", g.provider, g.model)
}
