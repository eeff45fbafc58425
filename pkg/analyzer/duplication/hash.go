package duplication

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/pylens/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// BodyStatements returns the statements that make up a function's
// implementation: the body minus a leading docstring and comments.
func BodyStatements(fn parser.FunctionNode, source []byte) []*sitter.Node {
	stmts := fn.Statements()
	if len(stmts) > 0 && parser.IsDocstring(stmts[0], source) {
		stmts = stmts[1:]
	}
	return stmts
}

// HashBody hashes the structure of a function body. Node kinds, operator
// tokens and identifier and literal text all contribute; positions,
// comments, redundant parentheses and string quote style do not, so renamed
// variables produce a different hash. ok is false for an empty or
// docstring-only body.
func HashBody(fn parser.FunctionNode, source []byte) (sum uint64, ok bool) {
	stmts := BodyStatements(fn, source)
	if len(stmts) == 0 {
		return 0, false
	}

	d := xxhash.New()
	for _, stmt := range stmts {
		writeStructure(d, stmt, source)
	}
	return d.Sum64(), true
}

// ShortHash is the hash as shown in reports.
func ShortHash(sum uint64) string {
	return fmt.Sprintf("%016x", sum)[:8]
}

// quoteTokens carry only the quote style of a string literal.
var quoteTokens = map[string]bool{
	"string_start": true,
	"string_end":   true,
}

func writeStructure(d *xxhash.Digest, n *sitter.Node, source []byte) {
	nodeType := n.Type()
	if nodeType == "comment" {
		return
	}
	if nodeType == "parenthesized_expression" {
		if inner := parser.Unparenthesize(n); inner != n {
			writeStructure(d, inner, source)
			return
		}
	}

	_, _ = d.WriteString("(")
	_, _ = d.WriteString(nodeType)
	count := int(n.ChildCount())
	switch {
	case count == 0 && n.IsNamed() && !quoteTokens[nodeType]:
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(parser.GetNodeText(n, source))
	case nodeType == "string" && n.NamedChildCount() == 0:
		// Grammars that hide string content expose only the delimiters.
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(stripQuotes(parser.GetNodeText(n, source)))
	}
	for i := range count {
		writeStructure(d, n.Child(i), source)
	}
	_, _ = d.WriteString(")")
}

func stripQuotes(literal string) string {
	body := strings.TrimLeft(literal, "rRbBuUfF")
	return strings.Trim(body, `"'`)
}
