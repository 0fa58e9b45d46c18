package utils

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// IndexedFunc is for RunIndexedInParallel.
type IndexedFunc func(ctx context.Context, i int) error

// RunIndexedInParallel calls f once for every index in [0, n), with at most ParallelFactor calls
// running at once. The first error cancels the context handed to the remaining calls and is returned.
// A panic inside f is returned as an error.
func RunIndexedInParallel(ctx context.Context, n int, f IndexedFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ParallelFactor)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = fmt.Errorf("got panic running something in parallel: %v", thePanic)
				}
			}()
			return f(ctx, i)
		})
	}
	return g.Wait()
}
