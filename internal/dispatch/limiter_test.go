package dispatch

import (
	"context"
	"testing"
	"time"
)

func TestLimiterDisabledNeverBlocks(t *testing.T) {
	l := NewLimiter(0, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx, "http://b0"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
}

func TestLimiterNilReceiver(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background(), "http://b0"); err != nil {
		t.Fatalf("nil limiter must be a no-op, got %v", err)
	}
}

func TestLimiterThrottlesPerBackend(t *testing.T) {
	l := NewLimiter(50, 1)

	// Separate backends get separate buckets: the first call on each is
	// immediate.
	start := time.Now()
	for _, addr := range []string{"http://b0", "http://b1", "http://b2"} {
		if err := l.Wait(context.Background(), addr); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 15*time.Millisecond {
		t.Errorf("first calls per backend should not throttle, took %v", elapsed)
	}

	// A second call on the same backend waits for the bucket to refill.
	start = time.Now()
	if err := l.Wait(context.Background(), "http://b0"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("second call on one backend should throttle, took %v", elapsed)
	}
}

func TestLimiterRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)

	if err := l.Wait(context.Background(), "http://b0"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "http://b0"); err == nil {
		t.Error("expected context deadline error while throttled")
	}
}
