package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// discoveryTimeout bounds the local-server probe so auto-detection
// stays fast when no Ollama server is running.
const discoveryTimeout = 3 * time.Second

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListOllamaModels queries a local Ollama server for its available
// model tags. An unreachable server yields an empty list, not an
// error: absence of a local server is an expected state during
// provider auto-detection.
func ListOllamaModels(ctx context.Context, baseURL string) []string {
	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

// PingOllama reports whether a local Ollama server responds at baseURL.
func PingOllama(ctx context.Context, baseURL string) error {
	if models := ListOllamaModels(ctx, baseURL); models == nil {
		return fmt.Errorf("ollama server unreachable at %s", baseURL)
	}
	return nil
}
