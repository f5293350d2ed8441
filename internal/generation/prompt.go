package generation

import (
	"fmt"
	"strings"

	"docsmith/internal/analysis"
	"docsmith/internal/conformance"
)

// systemPrompt pins the collaborator to the structural rules the
// validator will enforce. Keeping the rules in the prompt reduces
// correction passes; the validator remains the authority either way.
const systemPrompt = `You are a Python docstring generation expert. Your ONLY job is to produce
Google-style docstrings for the function or class you are given.

STRICT RULES - violating ANY of these rules is a critical failure:

1. OUTPUT ONLY THE DOCSTRING - start with triple quotes and end with triple quotes.
   Do NOT include the function signature, body, or any code outside the docstring.
2. Use Google-style format with sections: Summary, Args, Returns/Yields, Raises,
   Warning (for mutable defaults), Note (for async/coroutine).
3. ONLY document behaviour that is EXPLICITLY present in the source code.
4. For the Raises section, ONLY list exceptions that appear in explicit raise
   statements or are implied by recognized builtins (e.g. open, dict[key], int()).
5. NEVER include "Raises: None" or invent exceptions not in the code.
6. NEVER narrow types when the code has no type hints. If a parameter has no
   annotation, describe it by its usage, not by an assumed type.
7. If the function is a GENERATOR (contains yield), use "Yields:" NOT "Returns:".
8. If the function is ASYNC, mention that it is a coroutine in the summary or
   in a Note section.
9. If a parameter has a MUTABLE DEFAULT (list, dict, set), add a Warning section.
10. Keep the summary line concise.
11. Use triple double quotes.`

// SystemPrompt returns the fixed system instruction for a style policy.
func SystemPrompt(style StylePolicy) string {
	// Only Google style ships today; the enum keeps the boundary stable.
	return systemPrompt
}

// UserPrompt renders one request into the collaborator's user message.
// First attempts describe the declaration and its fingerprint; retries
// lead with the violations to fix.
func UserPrompt(req Request) string {
	var b strings.Builder

	if len(req.PriorViolations) > 0 {
		b.WriteString("Your previous docstring had the following violations:\n\n")
		b.WriteString(conformance.FeedbackText(req.PriorViolations))
		b.WriteString("\nRegenerate the docstring fixing ALL violations.\n\n")
	}

	kind := "function"
	if req.Kind == analysis.KindClass {
		kind = "class"
	}
	fmt.Fprintf(&b, "Generate a Google-style docstring for the following Python %s:\n\n", kind)
	fmt.Fprintf(&b, "```python\n%s\n```\n\n", req.Source)

	b.WriteString("Static analysis results:\n")
	writeFingerprint(&b, req.Fingerprint)

	b.WriteString("\nOutput ONLY the docstring (triple-quoted). Nothing else.")
	return b.String()
}

func writeFingerprint(b *strings.Builder, fp analysis.Fingerprint) {
	if len(fp.Params) > 0 {
		names := make([]string, len(fp.Params))
		for i, p := range fp.Params {
			names[i] = p.Name
			if p.Annotation != "" {
				names[i] += ": " + p.Annotation
			}
		}
		fmt.Fprintf(b, "  Parameters: %s\n", strings.Join(names, ", "))
	}
	if fp.IsAsync {
		b.WriteString("  This is an ASYNC function - mention coroutine behaviour.\n")
	}
	if fp.IsGenerator {
		b.WriteString("  This is a GENERATOR - use 'Yields:' NOT 'Returns:'.\n")
	}
	if len(fp.ExplicitRaises) > 0 {
		fmt.Fprintf(b, "  Explicit raises: %s\n", joinKinds(fp.ExplicitRaises))
	}
	if len(fp.ImpliedRaises) > 0 {
		fmt.Fprintf(b, "  Implied exception risks: %s\n", joinKinds(fp.ImpliedRaises))
	}
	if len(fp.MutableDefaults) > 0 {
		fmt.Fprintf(b, "  Mutable defaults on: %s - add a Warning section.\n",
			strings.Join(fp.MutableDefaults, ", "))
	}
	if len(fp.ExplicitRaises) == 0 && len(fp.ImpliedRaises) == 0 {
		b.WriteString("  No exceptions detected - do NOT include a Raises section.\n")
	}
}

func joinKinds(kinds []analysis.ErrorKind) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return strings.Join(out, ", ")
}
