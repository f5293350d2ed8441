package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlockSummaryAndSections(t *testing.T) {
	block := ParseBlock(`Load a config file from disk.

Args:
    path: Filesystem path to the config file.
    strict: Whether unknown keys are rejected.

Returns:
    The parsed configuration mapping.

Raises:
    FileNotFoundError: If the path does not exist.
    PermissionError: If the file cannot be read.
`)

	assert.Equal(t, "Load a config file from disk.", block.Summary)
	assert.True(t, block.Has(SectionArgs))
	assert.True(t, block.Has(SectionReturns))
	assert.True(t, block.Has(SectionRaises))
	assert.False(t, block.Has(SectionYields))

	args := block.Section(SectionArgs)
	require.Len(t, args, 2)
	assert.Equal(t, "path", args[0].Name)
	assert.Equal(t, "strict", args[1].Name)

	raises := block.Section(SectionRaises)
	require.Len(t, raises, 2)
	assert.Equal(t, "FileNotFoundError", raises[0].Name)
	assert.Equal(t, "If the path does not exist.", raises[0].Text)
}

func TestParseBlockContinuationLines(t *testing.T) {
	block := ParseBlock(`Do a thing.

Args:
    payload: The request body, which may span
        multiple lines of description.
`)

	args := block.Section(SectionArgs)
	require.Len(t, args, 1)
	assert.Equal(t, "The request body, which may span multiple lines of description.", args[0].Text)
}

func TestParseBlockSectionAliases(t *testing.T) {
	block := ParseBlock(`Summary.

Warnings:
    Mutating the default is shared across calls.

Notes:
    This is a coroutine.
`)

	assert.True(t, block.Has(SectionWarning))
	assert.True(t, block.Has(SectionNote))
}

func TestParseBlockEmptySectionStillPresent(t *testing.T) {
	block := ParseBlock("Summary.\n\nReturns:\n")

	assert.True(t, block.Has(SectionReturns))
	assert.Empty(t, block.Section(SectionReturns))
}

func TestParseBlockFreeTextInReturns(t *testing.T) {
	block := ParseBlock(`Summary.

Returns:
    A list of matched records.
`)

	entries := block.Section(SectionReturns)
	require.Len(t, entries, 1)
	assert.Equal(t, "A list of matched records.", entries[0].Text)
}

func TestParseBlockSplatAndDottedEntryNames(t *testing.T) {
	block := ParseBlock(`Summary.

Args:
    *args: Extra positional values.
    **kwargs: Extra keyword values.

Raises:
    json.JSONDecodeError: On malformed input.
`)

	args := block.Section(SectionArgs)
	require.Len(t, args, 2)
	assert.Equal(t, "*args", args[0].Name)
	assert.Equal(t, "**kwargs", args[1].Name)

	raises := block.Section(SectionRaises)
	require.Len(t, raises, 1)
	assert.Equal(t, "json.JSONDecodeError", raises[0].Name)
}

func TestParseBlockInlineSectionHeaders(t *testing.T) {
	block := ParseBlock(`Compute the result.

Returns: the computed value.
Raises: ValueError: if the input is negative.
`)

	require.True(t, block.Has(SectionReturns))
	ret := block.Section(SectionReturns)
	require.Len(t, ret, 1)
	assert.Equal(t, "the computed value.", ret[0].Text)

	require.True(t, block.Has(SectionRaises))
	raises := block.Section(SectionRaises)
	require.Len(t, raises, 1)
	assert.Equal(t, "ValueError", raises[0].Name)
	assert.Equal(t, "if the input is negative.", raises[0].Text)
}

func TestNilBlockAccessorsAreSafe(t *testing.T) {
	var block *Block
	assert.False(t, block.Has(SectionArgs))
	assert.Nil(t, block.Section(SectionRaises))
	assert.Equal(t, "", block.Text())
}
