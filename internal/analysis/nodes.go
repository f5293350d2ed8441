package analysis

// Tree-sitter node types used for Python traversal. They match the node
// types defined in tree-sitter-python's grammar.
const (
	nodeFunctionDef         = "function_definition"
	nodeClassDef            = "class_definition"
	nodeDecoratedDef        = "decorated_definition"
	nodeDecorator           = "decorator"
	nodeExpressionStatement = "expression_statement"
	nodeString              = "string"
	nodeIdentifier          = "identifier"
	nodeAttribute           = "attribute"

	// Parameters
	nodeTypedParameter        = "typed_parameter"
	nodeDefaultParameter      = "default_parameter"
	nodeTypedDefaultParameter = "typed_default_parameter"
	nodeListSplat             = "list_splat_pattern"
	nodeDictSplat             = "dictionary_splat_pattern"

	// Control flow
	nodeRaiseStatement  = "raise_statement"
	nodeReturnStatement = "return_statement"
	nodeYield           = "yield"

	// Expressions inspected by the recognizer table
	nodeCall           = "call"
	nodeSubscript      = "subscript"
	nodeBinaryOperator = "binary_operator"
	nodeInteger        = "integer"

	// Mutable container literals
	nodeList              = "list"
	nodeDictionary        = "dictionary"
	nodeSet               = "set"
	nodeListComprehension = "list_comprehension"
	nodeDictComprehension = "dictionary_comprehension"
)
