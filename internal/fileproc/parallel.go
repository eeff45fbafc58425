// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/panbanda/pylens/pkg/source"
	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// Result is the outcome for one input file. Err is set when the file could
// not be read or parsed; Value is then the zero value.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// OK reports whether the file produced a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

type options struct {
	workers     int
	maxFileSize int64
	src         source.ContentSource
}

// Option configures a parallel map.
type Option func(*options)

// WithWorkers sets the worker count. Values <= 0 use 2x NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxFileSize rejects files larger than maxSize bytes as unparsable (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(o *options) {
		o.maxFileSize = maxSize
	}
}

// WithSource reads content from src instead of the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(o *options) {
		if src != nil {
			o.src = src
		}
	}
}

// MapUnits reads and parses every file in parallel, with a dedicated parser
// per task, and calls fn on each parsed unit. Results are returned in input
// order, one per file; files that fail to read or parse carry their error and
// are also recorded in the returned ProcessingErrors. Progress is tracked via
// context using analyzer.WithTracker.
//
// The only error returned is the context's, when it is cancelled.
func MapUnits[T any](ctx context.Context, files []string, fn func(*parser.Unit) (T, error), opts ...Option) ([]Result[T], *ProcessingErrors, error) {
	o := &options{src: source.NewFilesystem()}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]Result[T], len(files))
	errs := &ProcessingErrors{}
	if len(files) == 0 {
		return results, errs, ctx.Err()
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	p := pool.New().WithMaxGoroutines(o.workers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			results[i].Path = path
			defer func() {
				if tracker != nil {
					tracker.Tick(path)
				}
			}()

			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return ctx.Err()
			default:
			}

			value, err := processFile(ctx, o, path, fn)
			if err != nil {
				results[i].Err = err
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}
			results[i].Value = value
			return nil
		})
	}
	_ = p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errs, err
	}
	return results, errs, nil
}

func processFile[T any](ctx context.Context, o *options, path string, fn func(*parser.Unit) (T, error)) (T, error) {
	var zero T

	content, err := o.src.Read(path)
	if err != nil {
		return zero, fmt.Errorf("failed to read file: %w", err)
	}

	psr := parser.New(parser.WithMaxFileSize(o.maxFileSize))
	defer psr.Close()

	unit, err := psr.Parse(ctx, path, content)
	if err != nil {
		return zero, err
	}
	defer unit.Tree.Close()

	return fn(unit)
}
