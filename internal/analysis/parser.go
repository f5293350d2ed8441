package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type nodeHandle = *sitter.Node

// ErrUnitParse marks a source unit that is not syntactically valid.
// The whole unit is rejected before any declaration is visited.
var ErrUnitParse = errors.New("source unit failed to parse")

// Unit is one parsed Python source file. Declarations keep references
// into the underlying tree, so the Unit must stay open while they are
// in use.
type Unit struct {
	tree    *sitter.Tree
	content []byte
	lines   []string
	decls   []Declaration
}

// ParseUnit parses Python source and discovers every function and class
// declaration, top-level and nested. Returns ErrUnitParse when the
// source is not syntactically valid.
func ParseUnit(ctx context.Context, content []byte) (*Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnitParse, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w: syntax error", ErrUnitParse)
	}

	u := &Unit{
		tree:    tree,
		content: content,
		lines:   strings.Split(string(content), "\n"),
	}
	u.walk(root, "")
	return u, nil
}

// Declarations returns discovered declarations in source order.
func (u *Unit) Declarations() []Declaration {
	return u.decls
}

// Lines returns the unit's source split by line.
func (u *Unit) Lines() []string {
	return u.lines
}

// Close releases the underlying syntax tree. Declarations must not be
// fingerprinted afterwards.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// walk recursively discovers declarations. parent carries the dotted
// path of enclosing declarations for qualified names.
func (u *Unit) walk(node *sitter.Node, parent string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case nodeClassDef, nodeFunctionDef:
			u.collect(child, child, parent)

		case nodeDecoratedDef:
			// The definition node carries the semantics; the decorated
			// wrapper only extends the source span.
			for j := 0; j < int(child.NamedChildCount()); j++ {
				inner := child.NamedChild(j)
				if inner.Type() == nodeClassDef || inner.Type() == nodeFunctionDef {
					u.collect(inner, child, parent)
				}
			}

		default:
			// Recurse into compound statements (if/for/try/with bodies)
			// so declarations nested in them are still discovered.
			u.walk(child, parent)
		}
	}
}

// collect builds a Declaration for def (a function or class definition
// node). span is the node whose lines delimit the declaration's source
// text, i.e. the decorated_definition wrapper when decorators are present.
func (u *Unit) collect(def, span *sitter.Node, parent string) {
	nameNode := def.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(u.content)

	qualified := name
	if parent != "" {
		qualified = parent + "." + name
	}

	startLine := int(span.StartPoint().Row) + 1
	defLine := int(def.StartPoint().Row) + 1
	endLine := int(def.EndPoint().Row) + 1
	indent := int(def.StartPoint().Column)

	d := Declaration{
		QualifiedName: qualified,
		Name:          name,
		Kind:          classifyKind(def, u.content, u.lines),
		StartLine:     startLine,
		DefLine:       defLine,
		BodyLine:      defLine,
		EndLine:       endLine,
		Indent:        indent,
		Source:        dedent(extractLines(u.lines, startLine, endLine)),
		node:          def,
		content:       u.content,
	}

	if span != def {
		d.Decorators = extractDecorators(span, u.content)
	}

	body := def.ChildByFieldName("body")
	if body != nil {
		d.BodyLine = int(body.StartPoint().Row) + 1
		d.HasDocstring = hasDocstring(body)
	}

	if def.Type() == nodeFunctionDef {
		d.Params = extractParams(def, u.content)
	}

	u.decls = append(u.decls, d)

	// Recurse for methods and nested declarations.
	if body != nil {
		u.walk(body, qualified)
	}
}

// classifyKind determines the declaration kind by syntactic marker.
// A declaration that both yields and returns a value is a generator:
// generator semantics dominate for documentation purposes.
func classifyKind(def *sitter.Node, content []byte, lines []string) DeclKind {
	if def.Type() == nodeClassDef {
		return KindClass
	}
	if containsYield(def) {
		return KindGenerator
	}
	if isAsyncDef(def, lines) {
		return KindAsyncFunction
	}
	return KindFunction
}

// isAsyncDef checks the def line for the async marker. Matching the
// source text keeps this independent of grammar-version differences in
// how the async keyword is attached to the node.
func isAsyncDef(def *sitter.Node, lines []string) bool {
	row := int(def.StartPoint().Row)
	if row < 0 || row >= len(lines) {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(lines[row]), "async def")
}

// hasDocstring reports whether a body block starts with a string
// expression statement.
func hasDocstring(body *sitter.Node) bool {
	if body.NamedChildCount() == 0 {
		return false
	}
	first := body.NamedChild(0)
	if first.Type() != nodeExpressionStatement || first.NamedChildCount() == 0 {
		return false
	}
	return first.NamedChild(0).Type() == nodeString
}

// extractParams pulls the parameter list in positional order,
// skipping self and cls.
func extractParams(def *sitter.Node, content []byte) []Param {
	paramsNode := def.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}

	var params []Param
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		child := paramsNode.NamedChild(i)
		var p Param

		switch child.Type() {
		case nodeIdentifier:
			p.Name = child.Content(content)

		case nodeTypedParameter:
			// First named child is the pattern, the type field carries
			// the annotation.
			if child.NamedChildCount() == 0 {
				continue
			}
			p.Name = splatName(child.NamedChild(0), content)
			if t := child.ChildByFieldName("type"); t != nil {
				p.Annotation = t.Content(content)
			}

		case nodeDefaultParameter:
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			p.Name = nameNode.Content(content)
			p.HasDefault = true
			if v := child.ChildByFieldName("value"); v != nil {
				p.MutableDefault = isMutableDefault(v, content)
			}

		case nodeTypedDefaultParameter:
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			p.Name = nameNode.Content(content)
			p.HasDefault = true
			if t := child.ChildByFieldName("type"); t != nil {
				p.Annotation = t.Content(content)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.MutableDefault = isMutableDefault(v, content)
			}

		case nodeListSplat:
			p.Name = "*" + innerName(child, content)

		case nodeDictSplat:
			p.Name = "**" + innerName(child, content)

		default:
			continue
		}

		if p.Name == "" || p.Name == "self" || p.Name == "cls" {
			continue
		}
		params = append(params, p)
	}
	return params
}

// splatName renders an identifier or splat pattern as a parameter name.
func splatName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case nodeListSplat:
		return "*" + innerName(n, content)
	case nodeDictSplat:
		return "**" + innerName(n, content)
	default:
		return n.Content(content)
	}
}

func innerName(n *sitter.Node, content []byte) string {
	if n.NamedChildCount() > 0 {
		return n.NamedChild(0).Content(content)
	}
	return n.Content(content)
}

// isMutableDefault flags list/dict/set literals and bare
// list()/dict()/set() constructor calls. Other calls, sentinels, and
// immutable literals are not flagged.
func isMutableDefault(v *sitter.Node, content []byte) bool {
	switch v.Type() {
	case nodeList, nodeDictionary, nodeSet, nodeListComprehension, nodeDictComprehension:
		return true
	case nodeCall:
		fn := v.ChildByFieldName("function")
		if fn == nil {
			return false
		}
		switch fn.Content(content) {
		case "list", "dict", "set":
			return true
		}
	}
	return false
}

// extractDecorators lists decorator expressions from a
// decorated_definition wrapper.
func extractDecorators(span *sitter.Node, content []byte) []string {
	var decs []string
	for i := 0; i < int(span.NamedChildCount()); i++ {
		child := span.NamedChild(i)
		if child.Type() == nodeDecorator {
			decs = append(decs, strings.TrimPrefix(strings.TrimSpace(child.Content(content)), "@"))
		}
	}
	return decs
}

// extractLines returns source lines start..end inclusive (1-based).
func extractLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// dedent strips the common leading whitespace from every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
