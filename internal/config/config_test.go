package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DOCSMITH_PROVIDER", "")
	t.Setenv("DOCSMITH_OLLAMA_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Provider)
	assert.Equal(t, DefaultOllamaURL, cfg.OllamaURL)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float64(DefaultTemperature), *cfg.Temperature)
	assert.Equal(t, DefaultMaxCorrectionPasses, cfg.MaxCorrectionPasses)
	assert.Equal(t, DefaultMaxConcurrentCalls, cfg.MaxConcurrentCalls)
	assert.Equal(t, DefaultJobs, cfg.Jobs)
}

func TestLoadFileWinsOverEnvironment(t *testing.T) {
	t.Setenv("DOCSMITH_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"provider": "ollama",
		"model": "codellama",
		"temperature": 0.5,
		"jobs": 2
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "codellama", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.5, *cfg.Temperature)
	assert.Equal(t, 2, cfg.Jobs)
	// Env still fills fields the file leaves empty.
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
}

func TestLoadEnvironmentFallback(t *testing.T) {
	t.Setenv("DOCSMITH_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DOCSMITH_OLLAMA_URL", "http://ollama.internal:11434")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "http://ollama.internal:11434", cfg.OllamaURL)
}

func TestLoadZeroTemperatureIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"temperature": 0}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// An explicit 0 is a deliberate setting, not an absent key.
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.0, *cfg.Temperature)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
