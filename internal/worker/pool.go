// Package worker provides a bounded goroutine pool. The same pool shape
// serves both parallelism regimes of the pipeline: CPU-bound matching and
// I/O-bound inference fan-out, differing only in worker count.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work returning a result value. Jobs receive immutable
// inputs via closure and must not share mutable state.
type Job[T any] func(ctx context.Context) T

// Pool executes jobs on a fixed number of workers and collects results in
// completion order. Results are drained continuously, so any number of jobs
// may be submitted before Wait.
type Pool[T any] struct {
	workers  int
	jobQueue chan Job[T]
	results  chan T
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	collected []T
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool creates a pool with the specified number of workers.
func NewPool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool[T]{
		workers:  workers,
		jobQueue: make(chan Job[T], workers*2), // buffered to keep workers fed
		results:  make(chan T, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the workers and the result collector.
func (p *Pool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go func() {
		for result := range p.results {
			p.collected = append(p.collected, result)
		}
		close(p.done)
	}()
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job for execution.
func (p *Pool[T]) Submit(job Job[T]) {
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for all submitted jobs and returns their
// results. No ordering guarantee.
func (p *Pool[T]) Wait() []T {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.done
	return p.collected
}

// Shutdown cancels outstanding work immediately.
func (p *Pool[T]) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	<-p.done
}

func (p *Pool[T]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
