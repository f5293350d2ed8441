package correction

import (
	"regexp"
	"strings"
)

var (
	tripleDouble = regexp.MustCompile(`(?s)"""(.*?)"""`)
	tripleSingle = regexp.MustCompile(`(?s)'''(.*?)'''`)
)

// ExtractDocstring pulls a triple-quoted docstring out of raw model
// output. Models occasionally wrap the block in code fences or return
// it bare; the fallbacks mirror what they actually produce.
func ExtractDocstring(raw string) (string, bool) {
	if m := tripleDouble.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := tripleSingle.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	// Bare multi-line text without quotes is accepted as a block.
	stripped := strings.TrimSpace(raw)
	stripped = strings.TrimPrefix(stripped, "```python")
	stripped = strings.TrimPrefix(stripped, "```")
	stripped = strings.TrimSuffix(stripped, "```")
	stripped = strings.Trim(strings.TrimSpace(stripped), `"'`)
	stripped = strings.TrimSpace(stripped)
	if stripped != "" && strings.Contains(stripped, "\n") {
		return stripped, true
	}

	return "", false
}
