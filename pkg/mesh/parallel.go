package mesh

import "golang.org/x/sync/errgroup"

// minParallelItems is the loop size below which goroutine startup costs more
// than it saves.
const minParallelItems = 64

// parallelFor calls body over disjoint [lo, hi) ranges covering [0, n).
// Ranges run on at most workers goroutines and parallelFor returns after all
// of them finish. body must only write state owned by its range.
func parallelFor(n, workers int, body func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n < minParallelItems {
		body(0, n)
		return
	}

	// Several chunks per worker keep the load even when faces differ in size.
	chunks := workers * 4
	size := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		lo := lo
		hi := min(lo+size, n)
		g.Go(func() error {
			body(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
