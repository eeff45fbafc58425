package analyzer

import (
	"context"
	"sync"
	"sync/atomic"
)

// Progress is a snapshot passed to a ProgressFunc.
type Progress struct {
	Stage   string
	Current int
	Total   int
	Path    string
}

// ProgressFunc is called to report analysis progress.
type ProgressFunc func(Progress)

// Tracker tracks progress across one or more analysis stages.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	total    atomic.Int32
	current  atomic.Int32
	mu       sync.RWMutex
	stage    string
	callback ProgressFunc
}

// NewTracker creates a new progress tracker with the given callback.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Stage names the analysis currently running, e.g. "complexity".
func (t *Tracker) Stage(name string) {
	t.mu.Lock()
	t.stage = name
	t.mu.Unlock()
}

// Add increments the total count by n. Each analyzer pass adds its file count,
// so a combined run totals files x analyzers.
func (t *Tracker) Add(n int) {
	t.total.Add(int32(n))
}

// Tick marks one item as completed and invokes the callback if set.
func (t *Tracker) Tick(path string) {
	current := int(t.current.Add(1))
	if t.callback == nil {
		return
	}
	t.mu.RLock()
	stage := t.stage
	t.mu.RUnlock()
	t.callback(Progress{
		Stage:   stage,
		Current: current,
		Total:   int(t.total.Load()),
		Path:    path,
	})
}

// Current returns the current progress count.
func (t *Tracker) Current() int {
	return int(t.current.Load())
}

// Total returns the total count.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}

// SetStage sets the stage on the context's tracker, if any.
func SetStage(ctx context.Context, name string) {
	if t := TrackerFromContext(ctx); t != nil {
		t.Stage(name)
	}
}
