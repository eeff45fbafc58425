package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panbanda/pylens/pkg/analyzer"
)

func TestBarFollowsTracker(t *testing.T) {
	var buf bytes.Buffer
	bar := NewWriter(&buf)
	tracker := bar.Tracker()

	tracker.Stage("complexity")
	tracker.Add(3)
	for _, path := range []string{"a.py", "b.py", "c.py"} {
		tracker.Tick(path)
	}

	assert.Equal(t, 3, bar.Current())
	assert.Equal(t, "complexity", bar.Stage())

	tracker.Stage("naming")
	tracker.Add(3)
	tracker.Tick("a.py")

	assert.Equal(t, 4, bar.Current())
	assert.Equal(t, "naming", bar.Stage())
	bar.Finish()
}

func TestBarConcurrentUpdates(t *testing.T) {
	bar := NewWriter(&bytes.Buffer{})
	tracker := bar.Tracker()
	tracker.Add(50)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick("x.py")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tracker.Current())
	assert.LessOrEqual(t, bar.Current(), 50)
	bar.Finish()
}

func TestUpdateDirect(t *testing.T) {
	bar := NewWriter(&bytes.Buffer{})
	bar.Update(analyzer.Progress{Stage: "architecture", Current: 2, Total: 5})
	assert.Equal(t, 2, bar.Current())
	assert.Equal(t, "architecture", bar.Stage())
}
