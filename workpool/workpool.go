/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package workpool is the fork-join scheduler that archive decoding and
// the consumer pass run under; the resolution pass runs sequentially. It mirrors jacobin's LoaderChannel/LoaderWg pattern: a fixed
// worker count, a channel of jobs, and a WaitGroup join -- no cooperative
// suspension, no cancellation, first error wins.
package workpool

import (
	"sync"

	"github.com/B4ckslash/jar-verifier/trace"
)

// Pool runs jobs with a bounded, pre-configured worker count.
type Pool struct {
	workers int
}

// New constructs a Pool. workers < 1 is clamped to 1 (fully sequential).
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers reports the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Job is one unit of work submitted to Run.
type Job func() error

// Run fans jobs out across the pool's worker count and joins on
// completion. Per spec.md §5, no ordering is promised between jobs; on
// the first error encountered, Run still waits for every already-started
// job to finish (it does not cancel in-flight work) and then returns that
// first error. threads=1 runs every job sequentially on the calling
// goroutine, with no channel or goroutine overhead.
func (p *Pool) Run(jobs []Job) error {
	if p.workers == 1 || len(jobs) <= 1 {
		return runSequential(jobs)
	}

	jobCh := make(chan Job)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := job(); err != nil {
					trace.Log("worker job failed", trace.FINE)
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	return firstErr
}

func runSequential(jobs []Job) error {
	var firstErr error
	for _, job := range jobs {
		if err := job(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunCollect is Run's counterpart for jobs that produce a value: each job
// at index i writes its result into results[i], and the first error
// (if any) is returned after every job has had a chance to run.
func RunCollect[T any](p *Pool, n int, job func(i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = func() error {
			v, err := job(i)
			results[i] = v
			return err
		}
	}

	firstErr := p.Run(jobs)
	return results, firstErr
}
