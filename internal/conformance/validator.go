package conformance

import (
	"strings"

	"docsmith/internal/analysis"
)

// Validate compares a candidate block against a fingerprint and returns
// the ordered list of violations. Every rule is evaluated independently;
// none short-circuits. Pure function, no side effects. A nil block is
// treated as an empty one, so absence reports every applicable gap.
func Validate(block *Block, fp analysis.Fingerprint) []Violation {
	var violations []Violation

	// Generators document via Yields, everything else via Returns.
	if fp.IsGenerator && !block.Has(SectionYields) {
		violations = append(violations, Violation{Kind: MissingYieldsSection})
	}
	if !fp.IsGenerator && fp.ReturnsValue && !block.Has(SectionReturns) {
		violations = append(violations, Violation{Kind: MissingReturnsSection})
	}
	if fp.IsGenerator && block.Has(SectionReturns) {
		violations = append(violations, Violation{Kind: SpuriousReturnsSection})
	}

	// Raise coverage: the union of explicit and implied kinds must be
	// documented, and nothing beyond it may be. The surplus check is
	// the anti-hallucination rule and weighs the same as a missing one.
	documented := documentedRaises(block)
	for _, kind := range fp.RaiseUnion() {
		if _, ok := documented[string(kind)]; !ok {
			violations = append(violations, Violation{Kind: UndeclaredRaise, Detail: string(kind)})
		}
	}
	for _, name := range raiseOrder(block) {
		if !fp.HasRaise(analysis.ErrorKind(name)) {
			violations = append(violations, Violation{Kind: HallucinatedRaise, Detail: name})
		}
	}

	// Mutable defaults need a Warning section naming the parameter.
	if len(fp.MutableDefaults) > 0 {
		warning := sectionText(block, SectionWarning)
		for _, param := range fp.MutableDefaults {
			if !strings.Contains(warning, param) {
				violations = append(violations, Violation{Kind: MissingMutableDefaultWarning, Detail: param})
			}
		}
	}

	// Coroutines must be called out somewhere in the block text.
	if fp.IsAsync && !strings.Contains(strings.ToLower(block.Text()), "coroutine") {
		violations = append(violations, Violation{Kind: MissingCoroutineNote})
	}

	// Every declared parameter needs an Args entry.
	if len(fp.Params) > 0 {
		args := make(map[string]struct{})
		for _, e := range block.Section(SectionArgs) {
			args[strings.TrimLeft(e.Name, "*")] = struct{}{}
		}
		for _, p := range fp.Params {
			if _, ok := args[strings.TrimLeft(p.Name, "*")]; !ok {
				violations = append(violations, Violation{Kind: MissingArgDoc, Detail: p.Name})
			}
		}
	}

	return violations
}

// documentedRaises collects the set of kinds named in the Raises
// section.
func documentedRaises(block *Block) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range block.Section(SectionRaises) {
		if e.Name != "" {
			out[e.Name] = struct{}{}
		}
	}
	return out
}

// raiseOrder lists documented raise kinds in block order, deduplicated.
func raiseOrder(block *Block) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range block.Section(SectionRaises) {
		if e.Name == "" && strings.EqualFold(strings.TrimSpace(e.Text), "none") {
			// "Raises: None" is itself a claim the code never makes.
			e.Name = "None"
		}
		if e.Name == "" {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	return out
}

func sectionText(block *Block, s Section) string {
	var parts []string
	for _, e := range block.Section(s) {
		if e.Name != "" {
			parts = append(parts, e.Name)
		}
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, " ")
}
