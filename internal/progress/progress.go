// Package progress draws the stderr progress bar fed by an analysis tracker.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Bar renders analysis progress. The total grows as each analyzer stage adds
// its files, and the description follows the running stage.
type Bar struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	stage string
}

// New creates a bar writing to stderr.
func New() *Bar {
	return NewWriter(os.Stderr)
}

// NewWriter creates a bar writing to w.
func NewWriter(w io.Writer) *Bar {
	bar := progressbar.NewOptions(0,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar}
}

// Update moves the bar to p. Safe for concurrent use.
func (b *Bar) Update(p analyzer.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.Total != b.bar.GetMax() {
		b.bar.ChangeMax(p.Total)
	}
	if p.Stage != b.stage {
		b.stage = p.Stage
		b.bar.Describe(p.Stage)
	}
	_ = b.bar.Set(p.Current)
}

// Tracker returns an analysis tracker that drives this bar.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(b.Update)
}

// Current returns the number of files processed so far.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.bar.State().CurrentNum)
}

// Stage returns the stage last shown.
func (b *Bar) Stage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stage
}

// Finish clears the bar from the terminal.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}
