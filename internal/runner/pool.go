package runner

import (
	"context"
	"fmt"
	"sync"
)

// Job is one named unit of work, e.g. rendering a single chart.
type Job struct {
	Name string
	Run  func() error
}

// RunPool executes jobs with at most maxWorkers concurrently and returns
// every failure wrapped with its job name. Jobs not yet started when ctx
// is done are reported as cancelled.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	record := func(name string, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		mu.Unlock()
	}
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			record(job.Name, err)
			continue
		}
		select {
		case <-ctx.Done():
			record(job.Name, ctx.Err())
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := j.Run(); err != nil {
				record(j.Name, err)
			}
		}(job)
	}
	wg.Wait()
	return errs
}
