package fetch

import (
	"context"
	"sync"
	"time"

	applogger "HashArb/pkg/logger"
)

// Job fetches one data category and normalizes it to algorithm -> value.
type Job struct {
	Category string
	Run      func(ctx context.Context) (map[string]float64, error)
}

// Result carries the outcome of one category fetch.
type Result struct {
	Category string
	Data     map[string]float64
	Err      error
}

type task struct {
	ctx context.Context
	job Job
	out chan<- Result
}

// Coordinator runs category fetches on a fixed worker pool.
type Coordinator struct {
	logger  *applogger.Logger
	tasks   chan task
	wg      sync.WaitGroup
	timeout time.Duration
	once    sync.Once
}

func NewCoordinator(workers int, timeout time.Duration, l *applogger.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	c := &Coordinator{
		logger:  l,
		tasks:   make(chan task),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

func (c *Coordinator) worker() {
	defer c.wg.Done()
	for t := range c.tasks {
		data, err := t.job.Run(t.ctx)
		t.out <- Result{Category: t.job.Category, Data: data, Err: err}
	}
}

// FetchAll runs all jobs concurrently and returns one result per category.
// A failed category carries its error; the others are unaffected. The whole
// batch is bounded by the coordinator timeout.
func (c *Coordinator) FetchAll(ctx context.Context, jobs []Job) map[string]Result {
	if len(jobs) == 0 {
		return map[string]Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := make(chan Result, len(jobs))
	submitted := 0
	for _, job := range jobs {
		select {
		case c.tasks <- task{ctx: ctx, job: job, out: out}:
			submitted++
		case <-ctx.Done():
		}
	}

	results := make(map[string]Result, len(jobs))
	for i := 0; i < submitted; i++ {
		r := <-out
		if r.Err != nil {
			c.logger.Warn("category fetch failed",
				applogger.String("category", r.Category),
				applogger.Error(r.Err),
			)
		}
		results[r.Category] = r
	}

	// Categories that never got submitted count as failed.
	for _, job := range jobs {
		if _, ok := results[job.Category]; !ok {
			results[job.Category] = Result{Category: job.Category, Err: ctx.Err()}
		}
	}
	return results
}

// Close drains the worker pool. FetchAll must not be called afterwards.
func (c *Coordinator) Close() {
	c.once.Do(func() {
		close(c.tasks)
	})
	c.wg.Wait()
}
