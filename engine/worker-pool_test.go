package engine

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessBatch(t *testing.T) {
	items := make([]interface{}, 50)
	for i := range items {
		items[i] = i
	}

	results := ProcessBatch(4, items, func(job interface{}) interface{} {
		return job.(int) * 2
	}, nil)

	assert.Len(t, results, len(items))
	got := make([]int, len(results))
	for i, r := range results {
		got[i] = r.(int)
	}
	sort.Ints(got)
	for i, v := range got {
		assert.Equal(t, i*2, v)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	assert.Nil(t, ProcessBatch(4, nil, func(job interface{}) interface{} { return job }, nil))
}

func TestProgressTracker(t *testing.T) {
	tracker := NewProgressTracker(3, "test")
	tracker.Increment()
	tracker.Increment()

	processed, total, pct := tracker.GetProgress()
	assert.Equal(t, int64(2), processed)
	assert.Equal(t, int64(3), total)
	assert.InDelta(t, 66.6, pct, 1.0)

	tracker.Increment()
	processed, _, pct = tracker.GetProgress()
	assert.Equal(t, int64(3), processed)
	assert.InDelta(t, 100.0, pct, 0.01)
}

func TestProgressTrackerConcurrentIncrement(t *testing.T) {
	// Small totals report on every step, so each worker goroutine drives
	// the spinner; the race detector catches any unguarded frame advance.
	tracker := NewProgressTracker(64, "test")
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 8; i++ {
				tracker.Increment()
			}
		}()
	}
	wg.Wait()

	processed, total, pct := tracker.GetProgress()
	assert.Equal(t, int64(64), processed)
	assert.Equal(t, int64(64), total)
	assert.InDelta(t, 100.0, pct, 0.01)
}

func TestProgressTrackerZeroTotal(t *testing.T) {
	tracker := NewProgressTracker(0, "test")
	_, _, pct := tracker.GetProgress()
	assert.Zero(t, pct)
}
