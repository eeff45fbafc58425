// Package analysis runs the Python analyzers over a path and assembles their
// reports, individually or combined into one document.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/internal/scanner"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/analyzer/architecture"
	"github.com/panbanda/pylens/pkg/analyzer/complexity"
	"github.com/panbanda/pylens/pkg/analyzer/duplication"
	"github.com/panbanda/pylens/pkg/analyzer/naming"
	"github.com/panbanda/pylens/pkg/config"
	"github.com/panbanda/pylens/pkg/source"
)

// Focus values selecting which analyzers Analyze runs.
const (
	FocusAll          = "all"
	FocusComplexity   = "complexity"
	FocusArchitecture = "architecture"
	FocusNaming       = "naming"
	FocusDuplication  = "duplication"
)

// Service orchestrates code analysis operations.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// Options configures a combined analysis.
type Options struct {
	// Focus selects the analyzers to run; empty uses the configured focus.
	Focus string
	// MinScore is the complexity threshold; 0 uses the configured value.
	MinScore int
}

// run holds the state shared by the analyzers of one call: the collected
// files and a content cache so each file is read once.
type run struct {
	path  string
	files []string
	src   source.ContentSource
}

// collect resolves path to its Python files. Input errors come back as a
// notice to be returned in place of a report.
func (s *Service) collect(path string) (*run, output.Renderable, error) {
	files, err := scanner.NewScanner(s.config).Collect(path)
	switch {
	case errors.Is(err, scanner.ErrPathNotFound):
		return nil, output.NewNotice("error", fmt.Sprintf("Error: Path not found: %s", path)), nil
	case errors.Is(err, scanner.ErrNoFiles):
		return nil, output.NewNotice("info", fmt.Sprintf("No Python files found in %s", path)), nil
	case err != nil:
		return nil, nil, err
	}
	return &run{
		path:  path,
		files: files,
		src:   source.NewCached(source.NewFilesystem(), len(files)),
	}, nil, nil
}

func (s *Service) threshold(minScore int) int {
	if minScore > 0 {
		return minScore
	}
	if s.config.Analysis.MinScore > 0 {
		return s.config.Analysis.MinScore
	}
	return complexity.DefaultThreshold
}

func (s *Service) complexity(ctx context.Context, r *run, minScore int) (*complexity.Analysis, error) {
	analyzer.SetStage(ctx, FocusComplexity)
	return complexity.New(
		complexity.WithRoot(r.path),
		complexity.WithThreshold(s.threshold(minScore)),
		complexity.WithWorkers(s.config.Analysis.Workers),
		complexity.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		complexity.WithSource(r.src),
	).Analyze(ctx, r.files)
}

func (s *Service) naming(ctx context.Context, r *run) (*naming.Analysis, error) {
	analyzer.SetStage(ctx, FocusNaming)
	return naming.New(
		naming.WithRoot(r.path),
		naming.WithWorkers(s.config.Analysis.Workers),
		naming.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		naming.WithSource(r.src),
	).Analyze(ctx, r.files)
}

func (s *Service) architecture(ctx context.Context, r *run) (*architecture.Analysis, error) {
	analyzer.SetStage(ctx, FocusArchitecture)
	return architecture.New(
		architecture.WithRoot(r.path),
		architecture.WithWorkers(s.config.Analysis.Workers),
		architecture.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		architecture.WithSource(r.src),
	).Analyze(ctx, r.files)
}

func (s *Service) duplication(ctx context.Context, r *run) (*duplication.Analysis, error) {
	analyzer.SetStage(ctx, FocusDuplication)
	return duplication.New(
		duplication.WithRoot(r.path),
		duplication.WithWorkers(s.config.Analysis.Workers),
		duplication.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		duplication.WithSource(r.src),
	).Analyze(ctx, r.files)
}

// Complexity reports function complexity under path. minScore <= 0 uses the
// configured threshold.
func (s *Service) Complexity(ctx context.Context, path string, minScore int) (output.Renderable, error) {
	r, notice, err := s.collect(path)
	if r == nil {
		return notice, err
	}
	return s.complexity(ctx, r, minScore)
}

// Naming reports function naming convention issues under path.
func (s *Service) Naming(ctx context.Context, path string) (output.Renderable, error) {
	r, notice, err := s.collect(path)
	if r == nil {
		return notice, err
	}
	return s.naming(ctx, r)
}

// Architecture reports import cycles and layer violations under path.
func (s *Service) Architecture(ctx context.Context, path string) (output.Renderable, error) {
	r, notice, err := s.collect(path)
	if r == nil {
		return notice, err
	}
	return s.architecture(ctx, r)
}

// Duplication reports duplicated and same-named functions under path.
func (s *Service) Duplication(ctx context.Context, path string) (output.Renderable, error) {
	r, notice, err := s.collect(path)
	if r == nil {
		return notice, err
	}
	return s.duplication(ctx, r)
}

// Analyze runs the analyzers selected by opts.Focus in a fixed order and
// combines their findings. An unknown focus runs nothing.
func (s *Service) Analyze(ctx context.Context, path string, opts Options) (output.Renderable, error) {
	focus := opts.Focus
	if focus == "" {
		focus = s.config.Analysis.Focus
	}
	if focus == "" {
		focus = FocusAll
	}

	r, notice, err := s.collect(path)
	if r == nil {
		return notice, err
	}

	rep := &Report{Root: path, Focus: focus, FileCount: len(r.files)}
	selected := func(name string) bool {
		return focus == FocusAll || focus == name
	}

	if selected(FocusComplexity) {
		if rep.Complexity, err = s.complexity(ctx, r, opts.MinScore); err != nil {
			return nil, err
		}
	}
	if selected(FocusArchitecture) {
		if rep.Architecture, err = s.architecture(ctx, r); err != nil {
			return nil, err
		}
	}
	if selected(FocusNaming) {
		if rep.Naming, err = s.naming(ctx, r); err != nil {
			return nil, err
		}
	}
	if selected(FocusDuplication) {
		if rep.Duplication, err = s.duplication(ctx, r); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// Markdown renders r in the markdown report format, without a trailing
// newline.
func Markdown(r output.Renderable) string {
	// Rendering into a strings.Builder cannot fail.
	s, _ := output.Render(r, output.FormatMarkdown)
	return s
}

// Skipped returns the files a result could not read or parse with the
// error for each, in discovery order and without repeats.
func Skipped(r output.Renderable) []fileproc.ProcessingError {
	var lists [][]fileproc.ProcessingError
	switch v := r.(type) {
	case *complexity.Analysis:
		lists = append(lists, v.Failures)
	case *naming.Analysis:
		lists = append(lists, v.Failures)
	case *architecture.Analysis:
		lists = append(lists, v.Failures)
	case *duplication.Analysis:
		lists = append(lists, v.Failures)
	case *Report:
		if v.Complexity != nil {
			lists = append(lists, v.Complexity.Failures)
		}
		if v.Architecture != nil {
			lists = append(lists, v.Architecture.Failures)
		}
		if v.Naming != nil {
			lists = append(lists, v.Naming.Failures)
		}
		if v.Duplication != nil {
			lists = append(lists, v.Duplication.Failures)
		}
	}

	var out []fileproc.ProcessingError
	for _, list := range lists {
		for _, f := range list {
			if !slices.ContainsFunc(out, func(o fileproc.ProcessingError) bool { return o.Path == f.Path }) {
				out = append(out, f)
			}
		}
	}
	return out
}
