package generation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator produces documentation via the Google Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a Gemini-backed generator. An empty model
// selects the default.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Generate sends one request and returns the raw model output. Every
// call-level failure surfaces as a TransportError: quota, timeout, and
// network faults are all properties of the transport, not the content.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		SystemInstruction: genai.NewContentFromText(SystemPrompt(req.Style), genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(UserPrompt(req)), cfg)
	if err != nil {
		return "", &TransportError{Provider: g.Name(), Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &TransportError{Provider: g.Name(), Err: fmt.Errorf("empty response")}
	}
	return text, nil
}

// Name identifies the provider and model.
func (g *GeminiGenerator) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}
