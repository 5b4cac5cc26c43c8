// Package extract computes the sample text for a resolved declaration.
package extract

import (
	"errors"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/RBusarow/Doks/internal/lang"
	"github.com/RBusarow/Doks/internal/model"
	"github.com/RBusarow/Doks/internal/resolve"
)

// Sample returns the text to embed in documentation for a declaration.
//
// With bodyOnly false, classes and functions keep their first line as-is and
// have the remaining lines re-indented to column zero; properties are emitted
// verbatim. With bodyOnly true, classes and functions yield the text strictly
// between their block delimiters and properties yield the inner text of their
// string-literal initializer, in both cases with common indentation removed.
func Sample(d *resolve.Declaration, bodyOnly bool) (string, error) {
	switch d.Kind {
	case resolve.KindClass:
		if bodyOnly {
			return classBody(d)
		}
		return fullText(d), nil
	case resolve.KindFunction:
		if bodyOnly {
			return functionBody(d)
		}
		return fullText(d), nil
	case resolve.KindProperty:
		if bodyOnly {
			return propertyInitializer(d)
		}
		return d.Text(), nil
	default:
		return "", &UnsupportedKindError{FqName: d.FqName, Kind: d.Kind}
	}
}

// BuildSamples extracts every requested sample from the index. Lookup misses
// and extraction failures are collected across the whole batch and joined
// into the returned error; one bad request never masks another.
func BuildSamples(idx *resolve.Index, requests map[int]model.SampleRequest) (model.SampleMap, error) {
	ids := make([]int, 0, len(requests))
	for id := range requests {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make(model.SampleMap, len(requests))
	var errs []error

	for _, id := range ids {
		req := requests[id]
		d, ok := idx.Lookup(req.FqName)
		if !ok {
			errs = append(errs, &resolve.NotFoundError{FqName: req.FqName})
			continue
		}
		content, err := Sample(d, req.BodyOnly)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[id] = model.SampleResult{Request: req, Content: content}
	}

	return out, errors.Join(errs...)
}

func fullText(d *resolve.Declaration) string {
	return dedentAfterFirst(d.Text(), leadingIndent(d.Source(), d.StartByte()))
}

func classBody(d *resolve.Declaration) (string, error) {
	body := childOfType(d.Node(), "class_body")
	if body == nil {
		body = childOfType(d.Node(), "enum_class_body")
	}
	if body == nil {
		return "", &MissingBlockBodyError{FqName: d.FqName}
	}
	return betweenBraces(body, d.Source(), d.FqName)
}

func functionBody(d *resolve.Declaration) (string, error) {
	body := childOfType(d.Node(), "function_body")
	if body == nil {
		return "", &MissingBlockBodyError{FqName: d.FqName}
	}
	// An expression body ("= expr") has no block delimiters to strip.
	if first := body.Child(0); first != nil && first.Type() == "=" {
		return "", &MissingBlockBodyError{FqName: d.FqName}
	}
	return betweenBraces(body, d.Source(), d.FqName)
}

func propertyInitializer(d *resolve.Declaration) (string, error) {
	init := initializerOf(d.Node())
	if init == nil {
		return "", &MissingInitializerError{FqName: d.FqName}
	}
	lit := firstStringLiteral(init)
	if lit == nil {
		return "", &UnsupportedInitializerError{FqName: d.FqName}
	}
	inner, ok := stringLiteralInner(lit, d.Source())
	if !ok {
		return "", &UnsupportedInitializerError{FqName: d.FqName}
	}
	return stripCommonIndent(inner), nil
}

// betweenBraces returns the text strictly between a body node's opening and
// closing delimiters, with common indentation removed.
func betweenBraces(body *sitter.Node, source []byte, fqName string) (string, error) {
	open, closing := braceSpan(body)
	if open == nil || closing == nil {
		return "", &MissingBlockBodyError{FqName: fqName}
	}
	inner := string(source[open.EndByte():closing.StartByte()])
	return stripCommonIndent(inner), nil
}

// braceSpan finds the opening and closing brace tokens of a block, descending
// one wrapper level at a time for grammars that nest the block inside the
// body node.
func braceSpan(n *sitter.Node) (open, closing *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "{" && open == nil {
			open = child
		}
		if child.Type() == "}" {
			closing = child
		}
	}
	if open != nil && closing != nil {
		return open, closing
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if o, c := braceSpan(n.Child(i)); o != nil && c != nil {
			return o, c
		}
	}
	return nil, nil
}

// initializerOf returns the expression assigned to a property, or nil.
func initializerOf(prop *sitter.Node) *sitter.Node {
	seenEq := false
	for i := 0; i < int(prop.ChildCount()); i++ {
		child := prop.Child(i)
		if child.Type() == "=" {
			seenEq = true
			continue
		}
		if seenEq && child.IsNamed() {
			return child
		}
	}
	return nil
}

func isStringLiteral(nodeType string) bool {
	switch nodeType {
	case "string_literal", "line_string_literal", "multi_line_string_literal":
		return true
	}
	return false
}

// firstStringLiteral unwraps an initializer expression to the string literal
// it directly contains, following the leading operand through call chains
// like `"""...""".trimIndent()`.
func firstStringLiteral(n *sitter.Node) *sitter.Node {
	for cur := n; cur != nil; cur = cur.NamedChild(0) {
		if isStringLiteral(cur.Type()) {
			return cur
		}
		if cur.NamedChildCount() == 0 {
			return nil
		}
	}
	return nil
}

// stringLiteralInner strips the quote delimiters from a string literal's text.
func stringLiteralInner(lit *sitter.Node, source []byte) (string, bool) {
	text := lang.NodeText(lit, source)
	switch {
	case strings.HasPrefix(text, `"""`) && strings.HasSuffix(text, `"""`) && len(text) >= 6:
		return text[3 : len(text)-3], true
	case strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2:
		return text[1 : len(text)-1], true
	}
	return "", false
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}
