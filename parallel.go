package cluster

import (
	"runtime"
	"sync"
)

// parallelRows splits [0, n) into contiguous blocks, one per worker, and
// calls fn on each block in its own goroutine. With workers <= 1 (or n <= 1)
// fn runs inline on the whole range. fn must only write state owned by its
// block.
func parallelRows(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	for start := 0; start < n; start += rowsPerWorker {
		end := min(start+rowsPerWorker, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}

	wg.Wait()
}

// defaultWorkers resolves a Workers setting: 0 means one per CPU.
func defaultWorkers(w int) int {
	if w == 0 {
		return runtime.NumCPU()
	}
	return w
}
