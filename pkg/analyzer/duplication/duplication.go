// Package duplication finds Python functions whose bodies are structurally
// identical across files, and same-named functions that differ.
package duplication

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/panbanda/pylens/pkg/report"
	"github.com/panbanda/pylens/pkg/source"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Function is one function definition with its body fingerprint.
type Function struct {
	ID            string `json:"id" toon:"id"`
	Name          string `json:"name" toon:"name"`
	QualifiedName string `json:"qualified_name" toon:"qualified_name"`
	File          string `json:"file" toon:"file"`
	Path          string `json:"path" toon:"path"`
	Line          int    `json:"line" toon:"line"`
	Lines         int    `json:"lines" toon:"lines"`
	Async         bool   `json:"async" toon:"async"`
	Hash          string `json:"hash,omitempty" toon:"hash,omitempty"`

	sum       uint64
	hashed    bool
	fileIndex uint32
}

// DuplicateGroup is a set of functions in more than one file sharing a body.
type DuplicateGroup struct {
	Hash      string     `json:"hash" toon:"hash"`
	Files     int        `json:"files" toon:"files"`
	Functions []Function `json:"functions" toon:"functions"`
}

// NameGroup is a set of same-named functions in more than one file whose
// bodies are not already reported as duplicates.
type NameGroup struct {
	Name      string     `json:"name" toon:"name"`
	Files     int        `json:"files" toon:"files"`
	Functions []Function `json:"functions" toon:"functions"`
}

// Analysis is the result of a duplication run over a file set.
type Analysis struct {
	Root          string                     `json:"root" toon:"root"`
	FileCount     int                        `json:"file_count" toon:"file_count"`
	FunctionCount int                        `json:"function_count" toon:"function_count"`
	Duplicates    []DuplicateGroup           `json:"duplicates" toon:"duplicates"`
	SameName      []NameGroup                `json:"same_name" toon:"same_name"`
	Skipped       []string                   `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Failures      []fileproc.ProcessingError `json:"-" toon:"-"`
}

// Analyzer groups functions by body hash and by name.
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

// New creates a new duplication analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fingerprints every function in files and groups them.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, _, err := fileproc.MapUnits(ctx, files, func(u *parser.Unit) ([]Function, error) {
		return ExtractFunctions(u), nil
	}, fileproc.WithWorkers(a.workers), fileproc.WithMaxFileSize(a.maxFileSize), fileproc.WithSource(a.src))
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{Root: a.root, FileCount: len(files)}
	var all []Function
	for i, r := range results {
		if !r.OK() {
			analysis.Skipped = append(analysis.Skipped, r.Path)
			analysis.Failures = append(analysis.Failures, fileproc.ProcessingError{Path: r.Path, Err: r.Err})
			continue
		}
		for _, fn := range r.Value {
			fn.fileIndex = uint32(i)
			all = append(all, fn)
		}
	}

	analysis.FunctionCount = len(all)
	analysis.Duplicates = FindDuplicates(all)
	analysis.SameName = FindSameName(all, analysis.Duplicates)
	return analysis, nil
}

// ExtractFunctions fingerprints every function in a parsed file, nested and
// async definitions included, in source order.
func ExtractFunctions(u *parser.Unit) []Function {
	fns := parser.Functions(u)
	out := make([]Function, 0, len(fns))
	file := filepath.Base(u.Path)
	for _, fn := range fns {
		f := Function{
			ID:            report.FindingID("duplication", u.Path, fn.QualifiedName, strconv.Itoa(int(fn.StartLine))),
			Name:          fn.Name,
			QualifiedName: fn.QualifiedName,
			File:          file,
			Path:          u.Path,
			Line:          int(fn.StartLine),
			Lines:         fn.Lines(),
			Async:         fn.Async,
		}
		if sum, ok := HashBody(fn, u.Source); ok {
			f.sum = sum
			f.hashed = true
			f.Hash = ShortHash(sum)
		}
		out = append(out, f)
	}
	return out
}

// FindDuplicates groups hashed functions by body and keeps groups spanning
// more than one file. Groups are ordered by their first member.
func FindDuplicates(fns []Function) []DuplicateGroup {
	var order []uint64
	groups := make(map[uint64][]Function)
	for _, fn := range fns {
		if !fn.hashed {
			continue
		}
		if _, ok := groups[fn.sum]; !ok {
			order = append(order, fn.sum)
		}
		groups[fn.sum] = append(groups[fn.sum], fn)
	}

	duplicates := []DuplicateGroup{}
	for _, sum := range order {
		members := groups[sum]
		if files := distinctFiles(members); files > 1 {
			duplicates = append(duplicates, DuplicateGroup{Hash: ShortHash(sum), Files: files, Functions: members})
		}
	}
	return duplicates
}

// FindSameName groups functions by name and keeps groups spanning more than
// one file whose name does not already appear in a duplicate group.
func FindSameName(fns []Function, duplicates []DuplicateGroup) []NameGroup {
	covered := make(map[string]bool)
	for _, g := range duplicates {
		for _, fn := range g.Functions {
			covered[fn.Name] = true
		}
	}

	var order []string
	groups := make(map[string][]Function)
	for _, fn := range fns {
		if _, ok := groups[fn.Name]; !ok {
			order = append(order, fn.Name)
		}
		groups[fn.Name] = append(groups[fn.Name], fn)
	}

	sameName := []NameGroup{}
	for _, name := range order {
		if covered[name] {
			continue
		}
		members := groups[name]
		if files := distinctFiles(members); files > 1 {
			sameName = append(sameName, NameGroup{Name: name, Files: files, Functions: members})
		}
	}
	return sameName
}

func distinctFiles(fns []Function) int {
	files := roaring.New()
	for _, fn := range fns {
		files.Add(fn.fileIndex)
	}
	return int(files.GetCardinality())
}
