// Package dispatch fans inference calls out over a pool of backends.
// Backends are served round-robin; each logical call retries individual
// attempts until a bounded window of consecutive failures is exhausted.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/marklabz/LeanRAG/internal/cache"
	"github.com/marklabz/LeanRAG/internal/llm"
)

// ErrExhausted is returned by Infer once the consecutive-failure budget for
// a single logical call is spent. It degrades that call only; sibling work
// keeps running.
var ErrExhausted = errors.New("inference retry budget exhausted")

// Metrics counts dispatcher activity. Owned by the Dispatcher and mutated
// under its lock; read a copy via Dispatcher.Metrics.
type Metrics struct {
	Calls        int64 // attempts issued (cache hits included)
	Failures     int64 // attempts that returned an error
	CacheHits    int64
	PromptTokens int64 // as reported by backends
}

// Dispatcher load-balances calls across backends and enforces the retry
// budget. Safe for concurrent use; no lock is held across a network call.
type Dispatcher struct {
	backends []llm.Backend
	limiter  *Limiter
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
	timeout  time.Duration
	maxError int

	mu      sync.Mutex
	next    int
	metrics Metrics
}

// Options configures a Dispatcher.
type Options struct {
	// Timeout applies per attempt (zero means no per-attempt deadline
	// beyond the caller's context)
	Timeout time.Duration

	// MaxError is the consecutive-failure budget per logical call
	MaxError int

	// Cache holds previously answered prompts (optional)
	Cache    cache.Cache
	CacheTTL time.Duration

	// RateLimit is requests per second per backend (0 = unlimited)
	RateLimit float64
}

// New creates a Dispatcher over the given backend pool.
func New(backends []llm.Backend, opts Options) (*Dispatcher, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one backend is required")
	}
	maxError := opts.MaxError
	if maxError <= 0 {
		maxError = 3
	}
	return &Dispatcher{
		backends: backends,
		limiter:  NewLimiter(opts.RateLimit, 1),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.Timeout,
		maxError: maxError,
	}, nil
}

// pick returns the next backend in round-robin order.
func (d *Dispatcher) pick() llm.Backend {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.backends[d.next]
	d.next = (d.next + 1) % len(d.backends)
	return b
}

// Call issues a single attempt: select a backend, apply the per-request
// timeout, unwrap the reply to plain text and normalize underscores to
// spaces. Entity fidelity depends on that normalization being applied to
// every reply, cached or fresh.
func (d *Dispatcher) Call(ctx context.Context, prompt string, structured bool) (string, error) {
	d.mu.Lock()
	d.metrics.Calls++
	d.mu.Unlock()

	key := cache.Key(prompt, structured)
	if d.cache != nil {
		if data, found := d.cache.Get(key); found {
			d.mu.Lock()
			d.metrics.CacheHits++
			d.mu.Unlock()
			return string(data), nil
		}
	}

	backend := d.pick()
	if err := d.limiter.Wait(ctx, backend.Addr()); err != nil {
		d.recordFailure()
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	resp, err := backend.Generate(callCtx, llm.GenerateRequest{
		Prompt:     prompt,
		JSONOutput: structured,
	})
	if err != nil {
		d.recordFailure()
		return "", fmt.Errorf("backend %s: %w", backend.Addr(), err)
	}

	text := strings.ReplaceAll(resp.Text, "_", " ")

	d.mu.Lock()
	d.metrics.PromptTokens += int64(resp.PromptTokens)
	d.mu.Unlock()

	if d.cache != nil {
		_ = d.cache.Set(key, []byte(text), d.cacheTTL)
	}
	return text, nil
}

// Infer retries Call until it succeeds or the last maxError attempts all
// failed, then gives up with ErrExhausted. There is no cap on total
// attempts; the window is an availability brake, not a counter.
func (d *Dispatcher) Infer(ctx context.Context, prompt string, structured bool) (string, error) {
	window := newErrorWindow(d.maxError)
	for !window.exhausted() {
		text, err := d.Call(ctx, prompt, structured)
		if err == nil {
			return text, nil
		}
		window.record(true)
	}
	return "", ErrExhausted
}

// Metrics returns a snapshot of dispatcher counters.
func (d *Dispatcher) Metrics() Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metrics
}

func (d *Dispatcher) recordFailure() {
	d.mu.Lock()
	d.metrics.Failures++
	d.mu.Unlock()
}
