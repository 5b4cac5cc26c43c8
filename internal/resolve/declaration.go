package resolve

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/RBusarow/Doks/internal/lang"
)

// Kind classifies a syntax node into the declaration shapes doks understands.
type Kind int

const (
	// KindOther covers nodes that are not declarations themselves but may
	// still contain named declarations (bodies, call expressions, statements).
	KindOther Kind = iota
	KindClass
	KindProperty
	KindFunction
	// KindAnonymous covers lambda literals and anonymous functions. They have
	// no name of their own; declarations inside them inherit the qualified
	// name of the nearest enclosing named declaration.
	KindAnonymous
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindProperty:
		return "property"
	case KindFunction:
		return "function"
	case KindAnonymous:
		return "anonymous"
	default:
		return "other"
	}
}

// Declaration is one named (or anonymous) syntactic unit resolved from a
// source file. It is valid only for the lifetime of the Index that owns it.
type Declaration struct {
	Kind Kind
	// Name is the declared simple identifier. Empty for anonymous blocks.
	Name string
	// Identifying is the display text used as the declaration's segment in
	// its fully-qualified name. It differs from Name for extension functions
	// ("fun Foo.bar" yields the segment "Foo.bar").
	Identifying string
	// FqName is the computed fully-qualified name. Stable for the lifetime
	// of the parse.
	FqName string
	// Parent is the nearest enclosing named declaration, nil at top level.
	// It is a back reference for name resolution only.
	Parent *Declaration

	node   *sitter.Node
	source []byte
}

// Node returns the underlying syntax node.
func (d *Declaration) Node() *sitter.Node { return d.node }

// Source returns the full source text of the file the declaration came from.
func (d *Declaration) Source() []byte { return d.source }

// Text returns the declaration's exact source text.
func (d *Declaration) Text() string {
	return lang.NodeText(d.node, d.source)
}

// StartByte returns the offset of the declaration within its source file.
func (d *Declaration) StartByte() uint32 { return d.node.StartByte() }

// EndByte returns the end offset of the declaration within its source file.
func (d *Declaration) EndByte() uint32 { return d.node.EndByte() }

// classify maps a tree-sitter node type to a declaration Kind.
func classify(nodeType string) Kind {
	switch nodeType {
	case "class_declaration", "object_declaration", "companion_object":
		return KindClass
	case "function_declaration":
		return KindFunction
	case "property_declaration":
		return KindProperty
	case "lambda_literal", "anonymous_function", "anonymous_initializer":
		return KindAnonymous
	default:
		return KindOther
	}
}

// leafTypes are node types that can never contain a named declaration.
var leafTypes = map[string]struct{}{
	"comment":                   {},
	"line_comment":              {},
	"multiline_comment":         {},
	"line_string_literal":       {},
	"multi_line_string_literal": {},
	"string_literal":            {},
	"character_literal":         {},
	"import_header":             {},
	"import_list":               {},
	"package_header":            {},
	"shebang_line":              {},
}

// canContainDeclarations reports whether a named declaration could be nested
// anywhere inside the node.
func canContainDeclarations(n *sitter.Node) bool {
	if n.ChildCount() == 0 {
		return false
	}
	_, leaf := leafTypes[n.Type()]
	return !leaf
}

// declaredName returns the simple identifier declared by a Class, Function or
// Property node, or "" if the node declares none.
func declaredName(n *sitter.Node, source []byte) string {
	switch n.Type() {
	case "class_declaration", "object_declaration":
		return childText(n, source, "type_identifier")
	case "companion_object":
		if name := childText(n, source, "type_identifier"); name != "" {
			return name
		}
		// An unnamed companion object is addressable as "Companion".
		return "Companion"
	case "function_declaration":
		return childText(n, source, "simple_identifier")
	case "property_declaration":
		if vd := childOfType(n, "variable_declaration"); vd != nil {
			return childText(vd, source, "simple_identifier")
		}
	}
	return ""
}

// identifyingText returns the FQN segment for a declaration. For extension
// functions the receiver type is prepended to the declared name; for
// everything else it is the declared name unchanged.
func identifyingText(n *sitter.Node, source []byte, name string) string {
	if n.Type() != "function_declaration" {
		return name
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "user_type", "nullable_type", "parenthesized_type":
			// Receiver type appears before the function's own identifier.
			return lang.NodeText(child, source) + "." + name
		case "simple_identifier":
			return name
		}
	}
	return name
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func childText(n *sitter.Node, source []byte, nodeType string) string {
	if child := childOfType(n, nodeType); child != nil {
		return lang.NodeText(child, source)
	}
	return ""
}
