package pool

import (
	"context"
	"sync"
)

// Pool runs a fixed number of Workers concurrently against a shared Queue
// and collects each one's Result once it returns.
type Pool struct {
	workers []*Worker
}

// New builds a Pool of n workers using factory to construct each one (the
// factory receives the worker's 0-based index so callers can label it).
func New(n int, factory func(id int) *Worker) *Pool {
	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		workers[i] = factory(i)
	}
	return &Pool{workers: workers}
}

// Run starts every worker and blocks until all have returned, in whatever
// order they individually decide the run is over.
func (p *Pool) Run(ctx context.Context) []Result {
	results := make([]Result, len(p.workers))

	var wg sync.WaitGroup
	wg.Add(len(p.workers))
	for i, w := range p.workers {
		go func(i int, w *Worker) {
			defer wg.Done()
			results[i] = w.Run(ctx)
		}(i, w)
	}
	wg.Wait()

	return results
}
