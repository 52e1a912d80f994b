// Package parallel fans row-indexed work out over a bounded number of
// goroutines. Each task owns a disjoint half-open row range [lo, hi), so
// callers can write per-row results into pre-sized slices without locking.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunksPerWorker oversubscribes workers so uneven rows (e.g. the shrinking
// upper triangle of a symmetric matrix) still balance.
const chunksPerWorker = 4

// DefaultWorkers returns the worker count used when callers pass n <= 0.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ForRows calls fn over consecutive row ranges covering [0, n).
// With workers <= 0 the default worker count is used; with one worker (or a
// single chunk) fn runs on the calling goroutine. The first error returned
// by any fn is returned; remaining chunks are still allowed to finish.
func ForRows(n, workers int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers == 1 {
		return fn(0, n)
	}

	chunk := (n + workers*chunksPerWorker - 1) / (workers * chunksPerWorker)
	if chunk < 1 {
		chunk = 1
	}
	if chunk >= n {
		return fn(0, n)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error { return fn(lo, hi) })
	}

	return g.Wait()
}
