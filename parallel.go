package filecrypt

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// MaxWorkers bounds the batch worker pool
const MaxWorkers = 1024

// DefaultWorkers returns a worker count suited to the current machine
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// runJobs calls job(i) for every i in [0, n) on at most workers goroutines
// and returns the per-index errors. A panicking job is reported as an error
// for its index. Once ctx is done no new index is dispatched; the indices
// left over get ctx.Err().
func runJobs(ctx context.Context, n, workers int, job func(i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}

	run := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				errs[i] = fmt.Errorf("panic in batch worker: %v", r)
			}
		}()
		errs[i] = job(i)
	}

	// Sequential processing
	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			run(i)
		}
		return errs
	}

	// Parallel processing
	var wg sync.WaitGroup
	jobChan := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				run(idx)
			}
		}()
	}

	next := 0
dispatch:
	for ; next < n; next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobChan <- next:
		}
	}
	close(jobChan)
	wg.Wait()

	for i := next; i < n; i++ {
		errs[i] = ctx.Err()
	}
	return errs
}
