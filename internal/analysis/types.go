package analysis

// DeclKind classifies a discovered declaration.
type DeclKind string

const (
	KindFunction      DeclKind = "function"
	KindAsyncFunction DeclKind = "async_function"
	KindGenerator     DeclKind = "generator"
	KindClass         DeclKind = "class"
)

// ErrorKind names a raised or implied exception class, e.g.
// "FileNotFoundError". Unresolved names from explicit raise statements
// are carried as opaque kinds.
type ErrorKind string

// Param describes one declared parameter in positional order.
type Param struct {
	Name       string
	Annotation string // declared type annotation, empty when absent
	HasDefault bool

	// MutableDefault marks a default whose syntactic literal is a
	// known-mutable container (list/dict/set literal or bare
	// list()/dict()/set() call).
	MutableDefault bool
}

// Declaration is one function or class found in a source unit.
// Immutable after discovery.
type Declaration struct {
	// QualifiedName includes the enclosing class for methods,
	// e.g. "Config.reload".
	QualifiedName string
	Name          string
	Kind          DeclKind

	// StartLine is the first line of the declaration including
	// decorators. DefLine is the def/class line itself; BodyLine the
	// first body statement. All 1-based. For a single-line definition
	// DefLine == BodyLine.
	StartLine int
	DefLine   int
	BodyLine  int
	EndLine   int

	// Indent is the column of the def/class keyword.
	Indent int

	Params       []Param
	HasDocstring bool

	// Source is the dedented declaration text handed to the generation
	// collaborator.
	Source string

	Decorators []string

	// node is the backing syntax-tree node; valid until the owning
	// Unit is closed.
	node    nodeHandle
	content []byte
}

// Fingerprint is the derived, read-only snapshot of a declaration's
// mechanically observable behavior. Computed once, never mutated.
type Fingerprint struct {
	IsGenerator bool
	IsAsync     bool

	// ExplicitRaises come from raise statements; ImpliedRaises from
	// the recognizer table. A kind may appear in both; downstream
	// consumers use the union.
	ExplicitRaises []ErrorKind
	ImpliedRaises  []ErrorKind

	// MutableDefaults lists parameter names flagged for mutable
	// default values.
	MutableDefaults []string

	// Params carry over from the declaration in positional order.
	// Order matters for documentation sections, not for equality.
	Params []Param

	// ReturnsValue reports a non-empty return or yield-value path.
	ReturnsValue bool
}

// RaiseUnion returns explicit and implied raises merged, sorted, and
// deduplicated. This union, not the partition, is what validation
// compares against.
func (f Fingerprint) RaiseUnion() []ErrorKind {
	seen := make(map[ErrorKind]struct{}, len(f.ExplicitRaises)+len(f.ImpliedRaises))
	for _, k := range f.ExplicitRaises {
		seen[k] = struct{}{}
	}
	for _, k := range f.ImpliedRaises {
		seen[k] = struct{}{}
	}
	return sortedKinds(seen)
}

// HasRaise reports whether kind is in the raise union.
func (f Fingerprint) HasRaise(kind ErrorKind) bool {
	for _, k := range f.ExplicitRaises {
		if k == kind {
			return true
		}
	}
	for _, k := range f.ImpliedRaises {
		if k == kind {
			return true
		}
	}
	return false
}
