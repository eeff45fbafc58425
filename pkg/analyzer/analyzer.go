// Package analyzer holds the contracts shared by the Python analyzers.
package analyzer

import "context"

// FileAnalyzer is the interface that all file-based analyzers implement.
// Files arrive in sorted discovery order and every list in the result keeps
// that order.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// Files that cannot be parsed are skipped but still counted. The only
	// error is the context's, when it is cancelled.
	Analyze(ctx context.Context, files []string) (T, error)
}
