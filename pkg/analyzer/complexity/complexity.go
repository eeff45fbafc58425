// Package complexity scores Python functions by cyclomatic complexity,
// length, nesting depth and parameter count.
package complexity

import (
	"context"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/panbanda/pylens/pkg/report"
	"github.com/panbanda/pylens/pkg/source"
	sitter "github.com/smacker/go-tree-sitter"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// DefaultThreshold is the minimum score reported when none is configured.
const DefaultThreshold = 1

// Analyzer computes complexity metrics for every function in a file set.
type Analyzer struct {
	root        string
	threshold   int
	workers     int
	maxFileSize int64
	src         source.ContentSource
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRoot sets the path shown in the report title.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithThreshold sets the minimum score a function needs to be reported.
func WithThreshold(threshold int) Option {
	return func(a *Analyzer) {
		a.threshold = threshold
	}
}

// WithWorkers sets the number of parallel parse workers (0 = default).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithSource reads files through src instead of the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.src = src
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze measures all files in parallel. Unparsable files count toward the
// file total but contribute no functions. Results keep file order, then
// source order, before the stable sort by descending score.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, _, err := fileproc.MapUnits(ctx, files, func(u *parser.Unit) ([]FunctionResult, error) {
		return AnalyzeUnit(u), nil
	}, fileproc.WithWorkers(a.workers), fileproc.WithMaxFileSize(a.maxFileSize), fileproc.WithSource(a.src))
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Root:      a.root,
		Threshold: a.threshold,
		FileCount: len(files),
		Functions: []FunctionResult{},
	}
	for _, r := range results {
		if !r.OK() {
			analysis.Skipped = append(analysis.Skipped, r.Path)
			analysis.Failures = append(analysis.Failures, fileproc.ProcessingError{Path: r.Path, Err: r.Err})
			continue
		}
		analysis.FunctionCount += len(r.Value)
		for _, fn := range r.Value {
			if fn.Score >= a.threshold {
				analysis.Functions = append(analysis.Functions, fn)
			}
		}
	}

	slices.SortStableFunc(analysis.Functions, func(x, y FunctionResult) int {
		return y.Score - x.Score
	})
	return analysis, nil
}

// AnalyzeUnit measures every function in a parsed file, nested functions
// included, in source order.
func AnalyzeUnit(u *parser.Unit) []FunctionResult {
	fns := parser.Functions(u)
	results := make([]FunctionResult, 0, len(fns))
	file := filepath.Base(u.Path)

	for _, fn := range fns {
		m := Measure(fn)
		score := m.Score()
		results = append(results, FunctionResult{
			ID:            report.FindingID("complexity", u.Path, fn.QualifiedName, strconv.Itoa(int(fn.StartLine))),
			Name:          fn.Name,
			QualifiedName: fn.QualifiedName,
			File:          file,
			Line:          int(fn.StartLine),
			Async:         fn.Async,
			Metrics:       m,
			Score:         score,
			Severity:      report.SeverityFor(score),
			Issues:        m.Issues(),
		})
	}
	return results
}

// Measure computes the metrics for one function.
func Measure(fn parser.FunctionNode) Metrics {
	return Metrics{
		Cyclomatic: Cyclomatic(fn),
		Lines:      fn.Lines(),
		MaxDepth:   MaxDepth(fn.Node),
		Params:     CountParams(fn.Parameters),
	}
}

// decisionTypes add one path each. An elif is its own branch, and each
// comprehension contributes its for clause and every if filter. The if
// clause that guards a match case is not a filter and adds nothing.
var decisionTypes = map[string]bool{
	"if_statement":        true,
	"elif_clause":         true,
	"while_statement":     true,
	"for_statement":       true,
	"except_clause":       true,
	"except_group_clause": true,
	"for_in_clause":       true,
	"if_clause":           true,
	"assert_statement":    true,
}

// Cyclomatic returns 1 plus the decision points in the function's whole
// subtree, decorators and nested definitions included. Conditional
// expressions and match statements add nothing.
//
// A run of the same boolean operator (a and b and c) is one expression: it
// adds 1 for the operator plus 1 for every operand beyond the second.
func Cyclomatic(fn parser.FunctionNode) int {
	count := 1
	visit := func(n *sitter.Node, nodeType string, _ []byte) bool {
		switch {
		case decisionTypes[nodeType] && !isCaseGuard(n, nodeType):
			count++
		case nodeType == "boolean_operator" && !continuesChain(n):
			count += 1 + max(0, chainOperands(n, booleanOp(n))-2)
		}
		return true
	}
	for _, d := range fn.Decorators {
		parser.WalkTyped(d, nil, visit)
	}
	parser.WalkTyped(fn.Node, nil, visit)
	return count
}

func isCaseGuard(n *sitter.Node, nodeType string) bool {
	if nodeType != "if_clause" {
		return false
	}
	parent := n.Parent()
	return parent != nil && parent.Type() == "case_clause"
}

// booleanOp returns "and" or "or".
func booleanOp(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

// continuesChain reports whether n is an unparenthesized operand of a parent
// using the same operator, so it was already counted with that parent.
func continuesChain(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "boolean_operator" && booleanOp(parent) == booleanOp(n)
}

func chainOperands(n *sitter.Node, op string) int {
	if n == nil {
		return 0
	}
	if n.Type() != "boolean_operator" || booleanOp(n) != op {
		return 1
	}
	return chainOperands(n.ChildByFieldName("left"), op) + chainOperands(n.ChildByFieldName("right"), op)
}

// nestingTypes open a new nesting level for everything beneath them.
var nestingTypes = map[string]bool{
	"if_statement":        true,
	"for_statement":       true,
	"while_statement":     true,
	"with_statement":      true,
	"try_statement":       true,
	"except_clause":       true,
	"except_group_clause": true,
}

// MaxDepth returns the deepest nesting level reached under node, where node
// itself is level 0. The k-th elif of an if sits k levels below it, and a
// trailing else shares the level of the branch before it. The else and
// finally blocks of loops and try statements stay at the statement's level.
func MaxDepth(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return maxDepth(node, 0)
}

func maxDepth(node *sitter.Node, depth int) int {
	deepest := depth
	elifs := 0
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		var d int
		switch t := child.Type(); {
		case nestingTypes[t]:
			d = maxDepth(child, depth+1)
		case t == "elif_clause":
			elifs++
			d = maxDepth(child, depth+elifs)
		case t == "else_clause":
			d = maxDepth(child, depth+elifs)
		default:
			d = maxDepth(child, depth)
		}
		deepest = max(deepest, d)
	}
	return deepest
}

// paramTypes are the named parameters. Variadic *args and **kwargs and the
// bare / and * separators are not counted.
var paramTypes = map[string]bool{
	"identifier":              true,
	"default_parameter":       true,
	"typed_default_parameter": true,
}

// CountParams counts positional, positional-only and keyword-only parameters.
func CountParams(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		switch t := child.Type(); {
		case paramTypes[t]:
			count++
		case t == "typed_parameter":
			if inner := child.NamedChild(0); inner != nil && inner.Type() == "identifier" {
				count++
			}
		}
	}
	return count
}
