// Package insertion splices an accepted documentation block back into
// source text. It never touches decorators or signatures and expands
// single-line definitions into multi-line form first. Callers splice
// bottom-up so earlier declaration spans stay valid.
package insertion

import (
	"fmt"
	"strings"

	"docsmith/internal/analysis"
)

const indentStep = 4

// Splice returns a new line slice with the block inserted as the first
// body statement of the declaration. The input slice is not modified.
func Splice(lines []string, decl analysis.Declaration, block string) ([]string, error) {
	out := make([]string, len(lines))
	copy(out, lines)

	defIdx := decl.DefLine - 1
	bodyIdx := decl.BodyLine - 1
	if defIdx < 0 || defIdx >= len(out) || bodyIdx < defIdx || bodyIdx >= len(out) {
		return nil, fmt.Errorf("declaration %s spans lines outside the source", decl.QualifiedName)
	}

	// Single-line definitions (def f(): pass) put the body on the def
	// line; split them into signature + indented body first.
	if bodyIdx == defIdx {
		var err error
		out, bodyIdx, err = expandSingleLine(out, defIdx)
		if err != nil {
			return nil, err
		}
	}

	bodyLine := out[bodyIdx]
	indent := strings.Repeat(" ", len(bodyLine)-len(strings.TrimLeft(bodyLine, " \t")))

	formatted := formatBlock(block, indent)
	result := make([]string, 0, len(out)+len(formatted))
	result = append(result, out[:bodyIdx]...)
	result = append(result, formatted...)
	result = append(result, out[bodyIdx:]...)
	return result, nil
}

// expandSingleLine rewrites `def f(): pass` into two lines and returns
// the updated slice plus the new body line index.
func expandSingleLine(lines []string, defIdx int) ([]string, int, error) {
	raw := lines[defIdx]

	colon := closingColon(raw)
	if colon < 0 {
		return nil, 0, fmt.Errorf("cannot locate signature colon in %q", strings.TrimSpace(raw))
	}

	sig := raw[:colon+1]
	body := strings.TrimSpace(raw[colon+1:])
	defIndent := len(raw) - len(strings.TrimLeft(raw, " \t"))
	bodyIndent := strings.Repeat(" ", defIndent+indentStep)

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:defIdx]...)
	out = append(out, sig, bodyIndent+body)
	out = append(out, lines[defIdx+1:]...)
	return out, defIdx + 1, nil
}

// closingColon finds the colon that ends a def/class signature,
// skipping colons nested in the parameter parentheses (default dict
// literals, annotations inside brackets).
func closingColon(line string) int {
	depth := 0
	start := strings.Index(line, "def ")
	if start < 0 {
		start = strings.Index(line, "class ")
	}
	if start < 0 {
		return -1
	}
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// formatBlock renders docstring text as indented triple-quoted lines.
func formatBlock(block string, indent string) []string {
	blockLines := strings.Split(block, "\n")
	if len(blockLines) == 1 {
		return []string{fmt.Sprintf(`%s"""%s"""`, indent, blockLines[0])}
	}

	out := make([]string, 0, len(blockLines)+1)
	out = append(out, indent+`"""`+blockLines[0])
	for _, bl := range blockLines[1:] {
		if strings.TrimSpace(bl) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+strings.TrimRight(bl, " \t"))
	}
	out = append(out, indent+`"""`)
	return out
}
