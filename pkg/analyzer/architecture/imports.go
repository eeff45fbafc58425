package architecture

import (
	"fmt"
	"slices"
	"strings"

	"github.com/panbanda/pylens/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// RelativeMarker is recorded for a relative import with no module part,
// such as "from . import x". It never names a real module.
func RelativeMarker(level int) string {
	return fmt.Sprintf("__relative_%d__", level)
}

// ExtractImports returns the sorted, distinct top-level module names a file
// imports, from every import statement anywhere in the tree.
//
//	import a.b.c          -> a
//	from x.y import z     -> x
//	from .pkg.mod import z -> pkg
//	from .. import z      -> __relative_2__
func ExtractImports(u *parser.Unit) []string {
	seen := make(map[string]bool)
	parser.WalkTyped(u.Root(), u.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "import_statement":
			for i := range int(n.NamedChildCount()) {
				child := n.NamedChild(i)
				if child.Type() == "aliased_import" {
					child = child.ChildByFieldName("name")
				}
				if child != nil && child.Type() == "dotted_name" {
					seen[topSegment(parser.GetNodeText(child, src))] = true
				}
			}
			return false
		case "import_from_statement":
			if name := fromModule(n.ChildByFieldName("module_name"), src); name != "" {
				seen[name] = true
			}
			return false
		case "future_import_statement":
			seen["__future__"] = true
			return false
		}
		return true
	})

	imports := make([]string, 0, len(seen))
	for name := range seen {
		imports = append(imports, name)
	}
	slices.Sort(imports)
	return imports
}

func fromModule(module *sitter.Node, src []byte) string {
	if module == nil {
		return ""
	}
	switch module.Type() {
	case "dotted_name":
		return topSegment(parser.GetNodeText(module, src))
	case "relative_import":
		level := 0
		for i := range int(module.NamedChildCount()) {
			child := module.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				return topSegment(parser.GetNodeText(child, src))
			case "import_prefix":
				level = strings.Count(parser.GetNodeText(child, src), ".")
			}
		}
		if level > 0 {
			return RelativeMarker(level)
		}
	}
	return ""
}

func topSegment(dotted string) string {
	head, _, _ := strings.Cut(dotted, ".")
	return strings.TrimSpace(head)
}
