package worker

import (
	"context"
	"sync"
)

// Job is a unit of batch work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	GetError() error
}

// Pool runs a fixed batch of jobs on a bounded number of goroutines. It
// exists for batch entity enrichment, where many lookups run concurrently
// but the number of in-flight external calls must stay capped.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every job and returns one result per job, in submission
// order. The caller's context is handed to each job; once it is cancelled
// the jobs not yet started are skipped and their results stay nil.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]Result, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if ctx.Err() != nil {
					continue
				}
				results[idx] = jobs[idx].Execute(ctx)
			}
		}()
	}

	for idx := range jobs {
		indexes <- idx
	}
	close(indexes)
	wg.Wait()

	return results
}
