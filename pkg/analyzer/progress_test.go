package analyzer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAddAndTick(t *testing.T) {
	var calls []Progress
	var mu sync.Mutex

	tracker := NewTracker(func(p Progress) {
		mu.Lock()
		calls = append(calls, p)
		mu.Unlock()
	})

	tracker.Stage("complexity")
	tracker.Add(2)
	tracker.Tick("a.py")
	tracker.Tick("b.py")

	tracker.Stage("naming")
	tracker.Add(2)
	tracker.Tick("a.py")

	assert.Equal(t, 4, tracker.Total())
	assert.Equal(t, 3, tracker.Current())

	require.Len(t, calls, 3)
	assert.Equal(t, Progress{Stage: "complexity", Current: 1, Total: 2, Path: "a.py"}, calls[0])
	assert.Equal(t, Progress{Stage: "naming", Current: 3, Total: 4, Path: "a.py"}, calls[2])
}

func TestTrackerNilCallback(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Add(1)
	tracker.Tick("a.py")
	assert.Equal(t, 1, tracker.Current())
}

func TestTrackerConcurrentTicks(t *testing.T) {
	tracker := NewTracker(func(Progress) {})
	tracker.Add(100)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick("x.py")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, tracker.Current())
}

func TestTrackerContext(t *testing.T) {
	assert.Nil(t, TrackerFromContext(context.Background()))
	SetStage(context.Background(), "ignored")

	tracker := NewTracker(nil)
	ctx := WithTracker(context.Background(), tracker)
	assert.Same(t, tracker, TrackerFromContext(ctx))

	SetStage(ctx, "architecture")
	assert.Equal(t, "architecture", tracker.stage)
}
