// Package naming checks Python function names against the language's
// naming conventions.
package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/panbanda/pylens/pkg/report"
	"github.com/panbanda/pylens/pkg/source"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Kind identifies a naming rule.
type Kind string

const (
	KindTooShort  Kind = "too_short"
	KindCamelCase Kind = "camel_case"
)

// String implements fmt.Stringer for TOON serialization.
func (k Kind) String() string {
	return string(k)
}

const tooShortSuggestion = "Use a descriptive name that explains the function's purpose"

var camelCasePattern = regexp.MustCompile(`^[a-z]+[A-Z]`)

// Issue is one naming convention violation.
type Issue struct {
	ID         string `json:"id" toon:"id"`
	Kind       Kind   `json:"kind" toon:"kind"`
	Name       string `json:"name" toon:"name"`
	File       string `json:"file" toon:"file"`
	Line       int    `json:"line" toon:"line"`
	Suggestion string `json:"suggestion" toon:"suggestion"`
}

// Analysis is the result of a naming run over a file set.
type Analysis struct {
	Root          string                     `json:"root" toon:"root"`
	FileCount     int                        `json:"file_count" toon:"file_count"`
	FunctionCount int                        `json:"function_count" toon:"function_count"`
	Issues        []Issue                    `json:"issues" toon:"issues"`
	Skipped       []string                   `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Failures      []fileproc.ProcessingError `json:"-" toon:"-"`
}

// Analyzer checks function names.
type Analyzer struct {
	root        string
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

// New creates a new naming analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type fileResult struct {
	functions int
	issues    []Issue
}

// Analyze checks every function in files. Issues are listed in file order,
// then source order.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, _, err := fileproc.MapUnits(ctx, files, func(u *parser.Unit) (fileResult, error) {
		fns := parser.Functions(u)
		return fileResult{functions: len(fns), issues: checkFunctions(u.Path, fns)}, nil
	}, fileproc.WithWorkers(a.workers), fileproc.WithMaxFileSize(a.maxFileSize), fileproc.WithSource(a.src))
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{Root: a.root, FileCount: len(files), Issues: []Issue{}}
	for _, r := range results {
		if !r.OK() {
			analysis.Skipped = append(analysis.Skipped, r.Path)
			analysis.Failures = append(analysis.Failures, fileproc.ProcessingError{Path: r.Path, Err: r.Err})
			continue
		}
		analysis.FunctionCount += r.Value.functions
		analysis.Issues = append(analysis.Issues, r.Value.issues...)
	}
	return analysis, nil
}

// AnalyzeUnit checks every function in a parsed file.
func AnalyzeUnit(u *parser.Unit) []Issue {
	return checkFunctions(u.Path, parser.Functions(u))
}

func checkFunctions(path string, fns []parser.FunctionNode) []Issue {
	var issues []Issue
	file := filepath.Base(path)
	for _, fn := range fns {
		for _, issue := range Check(fn.Name) {
			issue.File = file
			issue.Line = int(fn.StartLine)
			issue.ID = report.FindingID("naming", path, string(issue.Kind), fn.QualifiedName, strconv.Itoa(issue.Line))
			issues = append(issues, issue)
		}
	}
	return issues
}

// Check applies the naming rules to one function name. Dunder names are
// exempt. Each rule is checked independently.
func Check(name string) []Issue {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return nil
	}

	var issues []Issue
	if utf8.RuneCountInString(name) == 1 && name != "_" {
		issues = append(issues, Issue{Kind: KindTooShort, Name: name, Suggestion: tooShortSuggestion})
	}
	if camelCasePattern.MatchString(name) && !strings.Contains(name, "_") {
		issues = append(issues, Issue{
			Kind:       KindCamelCase,
			Name:       name,
			Suggestion: fmt.Sprintf("Use snake_case: %s", ToSnakeCase(name)),
		})
	}
	return issues
}

// ToSnakeCase inserts an underscore before every ASCII uppercase letter and
// lowercases the result.
func ToSnakeCase(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.TrimLeft(strings.ToLower(sb.String()), "_")
}
