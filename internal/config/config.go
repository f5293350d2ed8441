// Package config loads docsmith configuration from .docsmith/config.json
// with environment-variable fallback. The config file wins over the
// environment; both are optional and every field has a usable default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when neither config file nor environment specify a value.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOllamaModel = "llama3.2"
	DefaultTemperature = 0.1

	// DefaultMaxCorrectionPasses bounds re-generation after the initial
	// attempt: 2 correction passes means at most 3 generations per
	// declaration.
	DefaultMaxCorrectionPasses = 2

	// DefaultMaxConcurrentCalls is the size of the generation gate shared
	// across a batch. Generation endpoints are the scarce resource;
	// file-level workers can be more numerous.
	DefaultMaxConcurrentCalls = 4
	DefaultJobs               = 4
)

// Config holds all docsmith settings.
type Config struct {
	// Provider selection: "gemini", "openai", "ollama", or "auto".
	// Auto probes the local Ollama server first and falls back to Gemini.
	Provider string `json:"provider,omitempty"`

	// Optional model override for the chosen provider.
	Model string `json:"model,omitempty"`

	// API keys per provider.
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// OpenAIBaseURL overrides the OpenAI endpoint. Pointing it at an
	// Ollama server's /v1 path turns the OpenAI provider into a local one.
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`

	// OllamaURL is the base URL of the local Ollama server.
	OllamaURL string `json:"ollama_url,omitempty"`

	// Temperature is a pointer so an explicit 0 in the config file is
	// distinguishable from an absent key.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxCorrectionPasses is the retry ceiling beyond the first attempt.
	MaxCorrectionPasses int `json:"max_correction_passes,omitempty"`

	// MaxConcurrentCalls bounds simultaneous generation requests.
	MaxConcurrentCalls int `json:"max_concurrent_calls,omitempty"`

	// Jobs bounds concurrent source units in a directory batch.
	Jobs int `json:"jobs,omitempty"`

	// RecognizersPath points at an optional YAML file extending the
	// implied-raise recognizer table.
	RecognizersPath string `json:"recognizers_path,omitempty"`

	// LedgerPath is the SQLite run-ledger location. Empty disables the
	// ledger.
	LedgerPath string `json:"ledger_path,omitempty"`
}

// DefaultPath returns the default config file location relative to the
// working directory.
func DefaultPath() string {
	return filepath.Join(".docsmith", "config.json")
}

// Load reads the config file at path, falling back to defaults and
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file; environment and defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OllamaURL == "" {
		c.OllamaURL = os.Getenv("DOCSMITH_OLLAMA_URL")
	}
	if c.Provider == "" {
		c.Provider = os.Getenv("DOCSMITH_PROVIDER")
	}
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "auto"
	}
	if c.OllamaURL == "" {
		c.OllamaURL = DefaultOllamaURL
	}
	if c.Temperature == nil {
		v := float64(DefaultTemperature)
		c.Temperature = &v
	}
	if c.MaxCorrectionPasses == 0 {
		c.MaxCorrectionPasses = DefaultMaxCorrectionPasses
	}
	if c.MaxConcurrentCalls == 0 {
		c.MaxConcurrentCalls = DefaultMaxConcurrentCalls
	}
	if c.Jobs == 0 {
		c.Jobs = DefaultJobs
	}
	if c.LedgerPath == "" {
		c.LedgerPath = filepath.Join(".docsmith", "runs.db")
	}
}
