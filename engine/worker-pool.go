package engine

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tj/go-spin"
)

// WorkerPool manages a pool of goroutines for the parallel join phase.
type WorkerPool struct {
	NumWorkers int
	JobQueue   chan interface{}
	Results    chan interface{}
	wg         sync.WaitGroup
	started    bool
	mu         sync.Mutex
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 means one per CPU.
func NewWorkerPool(numWorkers int, jobBufferSize int, resultBufferSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		NumWorkers: numWorkers,
		JobQueue:   make(chan interface{}, jobBufferSize),
		Results:    make(chan interface{}, resultBufferSize),
	}
}

// StartWorkers starts the worker goroutines with the given work function.
func (wp *WorkerPool) StartWorkers(workFunc func(interface{}) interface{}) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true
	wp.wg.Add(wp.NumWorkers)

	for i := 0; i < wp.NumWorkers; i++ {
		go wp.worker(workFunc)
	}
}

func (wp *WorkerPool) worker(workFunc func(interface{}) interface{}) {
	defer wp.wg.Done()
	for job := range wp.JobQueue {
		wp.Results <- workFunc(job)
	}
}

// SubmitJob adds a job to the job queue.
func (wp *WorkerPool) SubmitJob(job interface{}) {
	wp.JobQueue <- job
}

// ProcessBatch runs workFunc over every item on the pool and returns the
// results in completion order. Callers that need a deterministic order carry
// an index inside their result type and reassemble afterwards.
func ProcessBatch(numWorkers int, items []interface{},
	workFunc func(interface{}) interface{},
	tracker *ProgressTracker) []interface{} {

	if len(items) == 0 {
		return nil
	}

	wp := NewWorkerPool(numWorkers, len(items), len(items))
	wp.StartWorkers(func(job interface{}) interface{} {
		result := workFunc(job)
		if tracker != nil {
			tracker.Increment()
		}
		return result
	})

	for _, item := range items {
		wp.SubmitJob(item)
	}
	close(wp.JobQueue)

	results := make([]interface{}, 0, len(items))
	for i := 0; i < len(items); i++ {
		results = append(results, <-wp.Results)
	}

	wp.wg.Wait()
	close(wp.Results)
	return results
}

// ProgressTracker prints join progress on stdout while records accumulate.
type ProgressTracker struct {
	Total     int64
	Processed int64
	StartTime time.Time
	Name      string

	spinner   *spin.Spinner
	spinnerMu sync.Mutex
	every     int64
}

// NewProgressTracker creates a tracker that reports roughly every hundred
// items (every item for small batches).
func NewProgressTracker(total int64, name string) *ProgressTracker {
	every := int64(100)
	if total < 200 {
		every = 1
	}
	return &ProgressTracker{
		Total:     total,
		StartTime: time.Now(),
		Name:      name,
		spinner:   spin.New(),
		every:     every,
	}
}

// Increment bumps the processed count atomically and reprints the progress
// line when a reporting step or the end is reached.
func (pt *ProgressTracker) Increment() {
	processed := atomic.AddInt64(&pt.Processed, 1)
	if processed%pt.every != 0 && processed != pt.Total {
		return
	}

	elapsed := time.Since(pt.StartTime)
	rate := float64(processed) / elapsed.Seconds()
	percentage := percent(processed, pt.Total)

	// The spinner keeps its own frame counter, so concurrent workers must
	// not advance it at the same time.
	pt.spinnerMu.Lock()
	frame := pt.spinner.Next()
	pt.spinnerMu.Unlock()

	fmt.Printf("\r%s %s: %d/%d (%.1f%%) - %.1f items/sec",
		frame, pt.Name, processed, pt.Total, percentage, rate)
	if processed == pt.Total {
		fmt.Println()
	}
}

// GetProgress returns the current processed count, total, and percentage.
func (pt *ProgressTracker) GetProgress() (int64, int64, float64) {
	processed := atomic.LoadInt64(&pt.Processed)
	return processed, pt.Total, percent(processed, pt.Total)
}

func percent(processed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(processed) / float64(total) * 100
}
