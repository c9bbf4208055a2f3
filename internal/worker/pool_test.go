package worker

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool[int](4)
	pool.Start()

	for i := 0; i < 100; i++ {
		pool.Submit(func(ctx context.Context) int {
			return i * 2
		})
	}

	results := pool.Wait()
	if len(results) != 100 {
		t.Fatalf("got %d results, want 100", len(results))
	}

	sort.Ints(results)
	for i, r := range results {
		if r != i*2 {
			t.Fatalf("results[%d] = %d, want %d", i, r, i*2)
		}
	}
}

func TestPoolMoreJobsThanBuffer(t *testing.T) {
	// Far more jobs than workers*2; submission must not block forever.
	pool := NewPool[int](1)
	pool.Start()

	const n = 500
	done := make(chan []int)
	go func() {
		for i := 0; i < n; i++ {
			pool.Submit(func(ctx context.Context) int { return 1 })
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != n {
			t.Fatalf("got %d results, want %d", len(results), n)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pool deadlocked under load")
	}
}

func TestPoolClampsWorkerCount(t *testing.T) {
	pool := NewPool[string](0)
	pool.Start()
	pool.Submit(func(ctx context.Context) string { return "ok" })

	results := pool.Wait()
	if len(results) != 1 || results[0] != "ok" {
		t.Fatalf("results = %v", results)
	}
}

func TestPoolWaitWithNoJobs(t *testing.T) {
	pool := NewPool[int](2)
	pool.Start()
	if results := pool.Wait(); len(results) != 0 {
		t.Fatalf("results = %v, want empty", results)
	}
}

func TestPoolShutdownStopsWork(t *testing.T) {
	pool := NewPool[int](2)
	pool.Start()

	var started atomic.Int32
	block := make(chan struct{})
	for i := 0; i < 4; i++ {
		pool.Submit(func(ctx context.Context) int {
			started.Add(1)
			select {
			case <-block:
			case <-ctx.Done():
			}
			return 0
		})
	}

	for started.Load() < 2 {
		time.Sleep(time.Millisecond)
	}
	pool.Shutdown()
	close(block)
}
