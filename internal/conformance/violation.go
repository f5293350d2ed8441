// Package conformance checks a candidate documentation block against a
// declaration's fingerprint. Validation is purely structural: presence,
// absence, and surplus of required sections and claims. Free-text prose
// quality never enters the acceptance decision.
package conformance

import "fmt"

// ViolationKind names one class of mismatch between a documentation
// block and a fingerprint.
type ViolationKind string

const (
	MissingYieldsSection         ViolationKind = "missing_yields_section"
	MissingReturnsSection        ViolationKind = "missing_returns_section"
	SpuriousReturnsSection       ViolationKind = "spurious_returns_section"
	UndeclaredRaise              ViolationKind = "undeclared_raise"
	HallucinatedRaise            ViolationKind = "hallucinated_raise"
	MissingMutableDefaultWarning ViolationKind = "missing_mutable_default_warning"
	MissingCoroutineNote         ViolationKind = "missing_coroutine_note"
	MissingArgDoc                ViolationKind = "missing_arg_doc"
)

// Violation describes one mismatch. Detail carries the error kind or
// parameter name where the kind is parameterized.
type Violation struct {
	Kind   ViolationKind
	Detail string
}

// String renders a human-readable instruction suitable for corrective
// feedback to the generation collaborator.
func (v Violation) String() string {
	switch v.Kind {
	case MissingYieldsSection:
		return "generator function must document a 'Yields:' section"
	case MissingReturnsSection:
		return "function returns a value but has no 'Returns:' section"
	case SpuriousReturnsSection:
		return "generator function must use 'Yields:' instead of 'Returns:'"
	case UndeclaredRaise:
		return fmt.Sprintf("exception %q is raised by the code but missing from the 'Raises:' section", v.Detail)
	case HallucinatedRaise:
		return fmt.Sprintf("documented exception %q does not occur in the code; remove it", v.Detail)
	case MissingMutableDefaultWarning:
		return fmt.Sprintf("parameter %q has a mutable default; add a 'Warning:' section mentioning it", v.Detail)
	case MissingCoroutineNote:
		return "async function must mention coroutine behaviour in the summary or a Note section"
	case MissingArgDoc:
		return fmt.Sprintf("parameter %q is missing from the 'Args:' section", v.Detail)
	default:
		return string(v.Kind)
	}
}

// FeedbackText renders a violation list as corrective feedback, one
// bullet per violation. Pure formatting; the correction state machine
// never inspects the resulting text.
func FeedbackText(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	out := ""
	for _, v := range violations {
		out += "  - " + v.String() + "\n"
	}
	return out
}
