package internal

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers sizes pools to the available hardware concurrency
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// RunPool runs job for indices 0..n-1 on at most workers goroutines.
// Results are stored by index, so output order never depends on scheduling.
func RunPool[R any](ctx context.Context, workers, n int, job func(ctx context.Context, i int) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	results := make([]R, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := job(gctx, i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// chunkBounds splits n items into at most chunks contiguous [start, end) ranges
func chunkBounds(n, chunks int) [][2]int {
	if n == 0 {
		return nil
	}
	if chunks <= 0 {
		chunks = 1
	}
	if chunks > n {
		chunks = n
	}
	size := (n + chunks - 1) / chunks
	bounds := make([][2]int, 0, chunks)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
