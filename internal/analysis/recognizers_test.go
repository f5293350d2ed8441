package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecognizersMissingFileUsesBuiltin(t *testing.T) {
	table, err := LoadRecognizers(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRecognizers(), table)
}

func TestLoadRecognizersMergesOverBuiltin(t *testing.T) {
	ext := `calls:
  json.loads:
    - JSONDecodeError
  open:
    - OSError
operators:
  "@":
    - TypeError
`
	path := filepath.Join(t.TempDir(), "recognizers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ext), 0o644))

	table, err := LoadRecognizers(path)
	require.NoError(t, err)

	// New entries extend the table; entries for known operations replace
	// the built-in kinds.
	assert.Equal(t, []ErrorKind{"JSONDecodeError"}, table.Calls["json.loads"])
	assert.Equal(t, []ErrorKind{"OSError"}, table.Calls["open"])
	assert.Equal(t, []ErrorKind{"TypeError"}, table.Operators["@"])
	assert.Equal(t, []ErrorKind{"ValueError"}, table.Calls["int"])
	assert.Equal(t, []ErrorKind{"IndexError"}, table.SubscriptIndex)
}

func TestLoadRecognizersRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recognizers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calls: [not: a: map"), 0o644))

	_, err := LoadRecognizers(path)
	assert.Error(t, err)
}

func TestExtendedRecognizerFlowsToExtraction(t *testing.T) {
	ext := `calls:
  json.loads:
    - JSONDecodeError
`
	path := filepath.Join(t.TempDir(), "recognizers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ext), 0o644))

	table, err := LoadRecognizers(path)
	require.NoError(t, err)

	src := `def parse(raw):
    return json.loads(raw)
`
	unit := mustParse(t, src)
	fp, err := NewExtractor(table).Extract(declByName(t, unit, "parse"))
	require.NoError(t, err)
	assert.True(t, fp.HasRaise("JSONDecodeError"))
}
