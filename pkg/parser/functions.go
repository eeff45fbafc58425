package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionNode represents a parsed function or async function definition.
type FunctionNode struct {
	Name          string
	QualifiedName string
	StartLine     uint32
	EndLine       uint32
	Async         bool
	Node          *sitter.Node
	Parameters    *sitter.Node
	Body          *sitter.Node
	Decorators    []*sitter.Node
}

// Lines returns the inclusive line span of the definition.
func (f FunctionNode) Lines() int {
	if f.EndLine < f.StartLine {
		return 1
	}
	return int(f.EndLine-f.StartLine) + 1
}

// Functions returns every function definition in the unit in source order,
// nested definitions included.
func Functions(u *Unit) []FunctionNode {
	var functions []FunctionNode
	collectFunctions(u.Root(), u.Source, nil, &functions)
	return functions
}

func collectFunctions(node *sitter.Node, source []byte, scope []string, out *[]FunctionNode) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		fn := extractFunction(node, source, scope)
		*out = append(*out, fn)
		scope = append(scope[:len(scope):len(scope)], fn.Name)
	case "class_definition":
		name := GetNodeText(node.ChildByFieldName("name"), source)
		scope = append(scope[:len(scope):len(scope)], name)
	}

	for i := range int(node.ChildCount()) {
		collectFunctions(node.Child(i), source, scope, out)
	}
}

func extractFunction(node *sitter.Node, source []byte, scope []string) FunctionNode {
	fn := FunctionNode{
		Name:       GetNodeText(node.ChildByFieldName("name"), source),
		StartLine:  node.StartPoint().Row + 1,
		EndLine:    lastCodeRow(node) + 1,
		Node:       node,
		Parameters: node.ChildByFieldName("parameters"),
		Body:       node.ChildByFieldName("body"),
	}
	fn.QualifiedName = strings.Join(append(scope[:len(scope):len(scope)], fn.Name), ".")

	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == "async" {
			fn.Async = true
			break
		}
	}

	if parent := node.Parent(); parent != nil && parent.Type() == "decorated_definition" {
		for i := range int(parent.NamedChildCount()) {
			if child := parent.NamedChild(i); child.Type() == "decorator" {
				fn.Decorators = append(fn.Decorators, child)
			}
		}
	}

	return fn
}

// lastCodeRow returns the zero-based row of the last non-comment token under n.
// Trailing comments belong to the enclosing block in tree-sitter but not to
// the function's line span.
func lastCodeRow(n *sitter.Node) uint32 {
	for {
		var next *sitter.Node
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if c := n.Child(i); c.Type() != "comment" {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		n = next
	}

	end := n.EndPoint()
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return end.Row - 1
	}
	return end.Row
}

// Statements returns the statements of the function body, comments excluded.
func (f FunctionNode) Statements() []*sitter.Node {
	if f.Body == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := range int(f.Body.NamedChildCount()) {
		if child := f.Body.NamedChild(i); child.Type() != "comment" {
			stmts = append(stmts, child)
		}
	}
	return stmts
}

// constantTypes are the expression nodes that evaluate to a constant.
var constantTypes = map[string]bool{
	"string":              true,
	"concatenated_string": true,
	"integer":             true,
	"float":               true,
	"true":                true,
	"false":               true,
	"none":                true,
	"ellipsis":            true,
}

// IsDocstring reports whether stmt is a bare constant expression statement,
// the shape a docstring takes when it opens a body. Parentheses around the
// constant do not matter; an f-string is never a constant, even without
// placeholders.
func IsDocstring(stmt *sitter.Node, source []byte) bool {
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	expr := Unparenthesize(stmt.NamedChild(0))
	if expr == nil || !constantTypes[expr.Type()] {
		return false
	}
	return !isFormatted(expr, source)
}

// Unparenthesize returns the expression inside any redundant parentheses
// around n, or n itself.
func Unparenthesize(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

func isFormatted(n *sitter.Node, source []byte) bool {
	found := false
	WalkTyped(n, source, func(node *sitter.Node, t string, src []byte) bool {
		switch {
		case t == "interpolation":
			found = true
		case t == "string_start", t == "string" && node.NamedChildCount() == 0:
			found = hasFormatPrefix(GetNodeText(node, src))
		}
		return !found
	})
	return found
}

func hasFormatPrefix(literal string) bool {
	end := strings.IndexAny(literal, `"'`)
	if end < 0 {
		return false
	}
	return strings.ContainsAny(literal[:end], "fF")
}
