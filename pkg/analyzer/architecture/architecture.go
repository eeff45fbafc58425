// Package architecture builds the module dependency graph of a Python code
// base and reports import cycles and clean-architecture layer violations.
package architecture

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/panbanda/pylens/pkg/source"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer maps imports between the files of one code base.
type Analyzer struct {
	root        string
	workers     int
	maxFileSize int64
	src         source.ContentSource
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRoot sets the analysis root. It titles the report and is the base
// for module display names.
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

// New creates a new architecture analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts imports from every file and evaluates the graph.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, _, err := fileproc.MapUnits(ctx, files, func(u *parser.Unit) ([]string, error) {
		return ExtractImports(u), nil
	}, fileproc.WithWorkers(a.workers), fileproc.WithMaxFileSize(a.maxFileSize), fileproc.WithSource(a.src))
	if err != nil {
		return nil, err
	}

	base := baseDir(a.root)
	var parsed []Module
	var skipped []string
	var failures []fileproc.ProcessingError
	for _, r := range results {
		if !r.OK() {
			skipped = append(skipped, r.Path)
			failures = append(failures, fileproc.ProcessingError{Path: r.Path, Err: r.Err})
			continue
		}
		layer := LayerOf(r.Path)
		m := Module{
			Key:     stem(r.Path),
			Name:    displayName(base, r.Path),
			Path:    r.Path,
			Imports: r.Value,
			Layer:   layer,
		}
		if layer != NoLayer {
			m.LayerName = LayerName(layer)
		}
		parsed = append(parsed, m)
	}

	analysis := Evaluate(parsed)
	analysis.Root = a.root
	analysis.FileCount = len(files)
	analysis.Skipped = skipped
	analysis.Failures = failures
	return analysis, nil
}

// Evaluate keys modules by stem, builds the graph and finds cycles and
// violations. When two files share a stem the later one replaces the
// earlier, which keeps its original position.
func Evaluate(parsed []Module) *Analysis {
	modules := make([]Module, 0, len(parsed))
	index := make(map[string]int, len(parsed))
	for _, m := range parsed {
		if i, ok := index[m.Key]; ok {
			modules[i] = m
			continue
		}
		index[m.Key] = len(modules)
		modules = append(modules, m)
	}

	g := BuildGraph(modules)
	analysis := &Analysis{
		Modules:    modules,
		Graph:      g.Dependencies(),
		Cycles:     DistinctCycles(g.FindCycles()),
		Violations: []Violation{},
		Components: g.StronglyConnected(),
		Centrality: g.Centrality(),
	}
	if analysis.Cycles == nil {
		analysis.Cycles = [][]string{}
	}

	for _, m := range modules {
		if m.Layer == NoLayer {
			continue
		}
		for _, imported := range m.Imports {
			i, ok := index[imported]
			if !ok {
				continue
			}
			target := modules[i]
			if target.Layer != NoLayer && m.Layer < target.Layer {
				analysis.Violations = append(analysis.Violations, Violation{
					Importer:  m.Key,
					Imported:  imported,
					FromLayer: m.Layer,
					ToLayer:   target.Layer,
				})
			}
		}
	}
	return analysis
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// baseDir is the directory module names are relative to: the root itself,
// or its parent when the root is a single file.
func baseDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

func displayName(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || base == "" || strings.HasPrefix(rel, "..") {
		return stem(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}
