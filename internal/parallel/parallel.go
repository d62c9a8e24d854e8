package parallel

import (
	"runtime"
	"sync"
)

// DefaultMinCostPerTask is the smallest amount of estimated work worth
// handing to its own goroutine. Below this, fan-out overhead dominates
// and the loop runs inline on the calling goroutine.
const DefaultMinCostPerTask = 16384.0

// Pool dispatches elementwise loops over a bounded number of goroutines.
// It carries no state between calls; the struct only fixes the fan-out
// limits so every kernel in a run splits work the same way.
type Pool struct {
	workers        int
	minCostPerTask float64
}

// New returns a pool that fans out over at most workers goroutines.
// workers <= 0 selects runtime.NumCPU().
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers, minCostPerTask: DefaultMinCostPerTask}
}

// NewWithGrain returns a pool with an explicit per-task cost floor.
// minCostPerTask <= 0 selects the default.
func NewWithGrain(workers int, minCostPerTask float64) *Pool {
	p := New(workers)
	if minCostPerTask > 0 {
		p.minCostPerTask = minCostPerTask
	}
	return p
}

// Workers reports the fan-out limit.
func (p *Pool) Workers() int {
	return p.workers
}

// For partitions [0, n) into contiguous, non-overlapping chunks and calls
// fn(begin, end) once per chunk, covering every index exactly once. The
// chunk count is a cost decision: given costPerItem, the range is split
// into at most Workers() chunks, each carrying at least the per-task cost
// floor. Small or cheap ranges run inline as a single fn(0, n) call.
//
// fn instances for different chunks may run concurrently; they must touch
// only their own sub-range. For blocks until every chunk has returned.
func (p *Pool) For(n int, costPerItem float64, fn func(begin, end int)) {
	if n <= 0 {
		return
	}

	tasks := p.workers
	if maxTasks := int(float64(n) * costPerItem / p.minCostPerTask); maxTasks < tasks {
		tasks = maxTasks
	}
	if tasks <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + tasks - 1) / tasks
	var wg sync.WaitGroup
	for begin := 0; begin < n; begin += chunk {
		end := begin + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(b, e int) {
			defer wg.Done()
			fn(b, e)
		}(begin, end)
	}
	wg.Wait()
}
