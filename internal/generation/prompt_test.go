package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"docsmith/internal/analysis"
	"docsmith/internal/conformance"
)

func TestUserPromptFirstAttempt(t *testing.T) {
	prompt := UserPrompt(Request{
		Source: "def load(path):\n    return open(path).read()",
		Kind:   analysis.KindFunction,
		Fingerprint: analysis.Fingerprint{
			ImpliedRaises: []analysis.ErrorKind{"FileNotFoundError", "PermissionError"},
			Params:        []analysis.Param{{Name: "path"}},
			ReturnsValue:  true,
		},
	})

	assert.Contains(t, prompt, "```python\ndef load(path):")
	assert.Contains(t, prompt, "Parameters: path")
	assert.Contains(t, prompt, "FileNotFoundError, PermissionError")
	assert.NotContains(t, prompt, "previous docstring")
}

func TestUserPromptRetryLeadsWithViolations(t *testing.T) {
	prompt := UserPrompt(Request{
		Source: "def f():\n    return 1",
		Kind:   analysis.KindFunction,
		PriorViolations: []conformance.Violation{
			{Kind: conformance.MissingReturnsSection},
		},
	})

	idx := strings.Index(prompt, "previous docstring")
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, strings.Index(prompt, "```python"))
}

func TestUserPromptGeneratorAndAsyncHints(t *testing.T) {
	prompt := UserPrompt(Request{
		Source: "async def gen():\n    yield 1",
		Kind:   analysis.KindAsyncFunction,
		Fingerprint: analysis.Fingerprint{
			IsAsync:      true,
			IsGenerator:  true,
			ReturnsValue: true,
		},
	})

	assert.Contains(t, prompt, "GENERATOR")
	assert.Contains(t, prompt, "ASYNC")
}

func TestUserPromptNoExceptionsHint(t *testing.T) {
	prompt := UserPrompt(Request{
		Source: "def f():\n    return 1",
		Kind:   analysis.KindFunction,
	})

	assert.Contains(t, prompt, "do NOT include a Raises section")
}

func TestUserPromptMutableDefaultHint(t *testing.T) {
	prompt := UserPrompt(Request{
		Source: "def f(items=[]):\n    return items",
		Kind:   analysis.KindFunction,
		Fingerprint: analysis.Fingerprint{
			MutableDefaults: []string{"items"},
			Params:          []analysis.Param{{Name: "items", HasDefault: true, MutableDefault: true}},
		},
	})

	assert.Contains(t, prompt, "Mutable defaults on: items")
}

func TestSystemPromptPinsFormat(t *testing.T) {
	sys := SystemPrompt(StyleGoogle)
	assert.Contains(t, sys, "Google-style")
	assert.Contains(t, sys, "Raises: None")
}

func TestTransportErrorWrapping(t *testing.T) {
	inner := assert.AnError
	err := &TransportError{Provider: "gemini", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.True(t, IsTransport(err))
	assert.False(t, IsTransport(inner))
}
