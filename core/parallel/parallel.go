// Package parallel provides chunked parallel-for helpers used in estimator
// hot paths.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits [0, items) into one chunk per available CPU core and
// runs fn(start, end) on each chunk concurrently. It returns after every
// chunk has finished. fn must not assume any chunk ordering.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so the last chunk absorbs the remainder.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items is at or
// below threshold, and falls back to Parallelize above it. Goroutine overhead
// dominates on small inputs.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}
