package analysis

import (
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNotADeclaration reports a contract violation: the input is not a
// valid declaration node. This is caller error, not a runtime fault.
var ErrNotADeclaration = errors.New("input is not a valid declaration")

// Extractor derives Fingerprints from declarations. It is stateless
// apart from the recognizer table and safe for concurrent use.
type Extractor struct {
	table *RecognizerTable
}

// NewExtractor creates an Extractor. A nil table selects the built-in
// recognizers.
func NewExtractor(table *RecognizerTable) *Extractor {
	if table == nil {
		table = DefaultRecognizers()
	}
	return &Extractor{table: table}
}

// Extract computes the Fingerprint for one declaration. Deterministic,
// no side effects, no external calls. A declaration with an empty body
// still receives a Fingerprint with all booleans false and empty sets.
func (e *Extractor) Extract(d Declaration) (Fingerprint, error) {
	if d.node == nil {
		return Fingerprint{}, ErrNotADeclaration
	}
	switch d.node.Type() {
	case nodeFunctionDef, nodeClassDef:
	default:
		return Fingerprint{}, ErrNotADeclaration
	}

	fp := Fingerprint{}
	if d.node.Type() == nodeClassDef {
		// Classes carry no behavioral fingerprint of their own; they are
		// still eligible for documentation like any other declaration.
		return fp, nil
	}

	fp.IsAsync = sourceIsAsync(d.Source)
	fp.Params = d.Params
	for _, p := range d.Params {
		if p.MutableDefault {
			fp.MutableDefaults = append(fp.MutableDefaults, p.Name)
		}
	}

	body := d.node.ChildByFieldName("body")
	if body == nil {
		return fp, nil
	}

	explicit := make(map[ErrorKind]struct{})
	implied := make(map[ErrorKind]struct{})

	walkNamed(body, func(n *sitter.Node) {
		switch n.Type() {
		case nodeYield:
			fp.IsGenerator = true
			if n.NamedChildCount() > 0 {
				fp.ReturnsValue = true
			}

		case nodeReturnStatement:
			if n.NamedChildCount() > 0 {
				fp.ReturnsValue = true
			}

		case nodeRaiseStatement:
			if n.NamedChildCount() == 0 {
				return // bare re-raise carries no kind
			}
			if kind := raisedKind(n.NamedChild(0), d.content); kind != "" {
				explicit[kind] = struct{}{}
			}

		case nodeCall:
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			for _, kind := range e.table.Calls[fn.Content(d.content)] {
				implied[kind] = struct{}{}
			}

		case nodeSubscript:
			kinds := e.table.SubscriptKey
			if idx := n.ChildByFieldName("subscript"); idx != nil && idx.Type() == nodeInteger {
				kinds = e.table.SubscriptIndex
			}
			for _, kind := range kinds {
				implied[kind] = struct{}{}
			}

		case nodeBinaryOperator:
			op := operatorToken(n, d.content)
			for _, kind := range e.table.Operators[op] {
				implied[kind] = struct{}{}
			}
		}
	})

	fp.ExplicitRaises = sortedKinds(explicit)
	fp.ImpliedRaises = sortedKinds(implied)
	return fp, nil
}

// raisedKind resolves the error kind of a raise expression. Calls use
// their callee name, names and dotted attributes are taken verbatim.
// Unresolved names are opaque kinds, not an error.
func raisedKind(n *sitter.Node, content []byte) ErrorKind {
	switch n.Type() {
	case nodeCall:
		if fn := n.ChildByFieldName("function"); fn != nil {
			return ErrorKind(fn.Content(content))
		}
		return ""
	case nodeIdentifier, nodeAttribute:
		return ErrorKind(n.Content(content))
	default:
		return ""
	}
}

// operatorToken returns the operator text of a binary_operator node.
func operatorToken(n *sitter.Node, content []byte) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Content(content)
	}
	// Fallback: the operator sits between the two operands.
	if n.ChildCount() >= 3 {
		return n.Child(1).Content(content)
	}
	return ""
}

// containsYield reports a yielding construct anywhere in the body,
// not only at top level. Nested function bodies are scanned too,
// matching a full syntax-tree walk of the declaration.
func containsYield(def *sitter.Node) bool {
	found := false
	walkNamed(def, func(n *sitter.Node) {
		if n.Type() == nodeYield {
			found = true
		}
	})
	return found
}

// sourceIsAsync checks the first def line of dedented declaration
// source for the async marker, skipping decorator lines.
func sourceIsAsync(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") || trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "async def")
	}
	return false
}

// walkNamed visits every named descendant of n in depth-first order,
// including n itself.
func walkNamed(n *sitter.Node, fn func(*sitter.Node)) {
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkNamed(n.NamedChild(i), fn)
	}
}
