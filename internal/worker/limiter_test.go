package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	limiter := NewLimiter(100, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "https://example.com/page"); err != nil {
			t.Fatalf("Expected clearance within burst, got %v", err)
		}
	}
}

func TestLimiter_HostsThrottledIndependently(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetHostRate("fast.example.com", 1000, 100)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// The slow host's burst is spent after one request.
	if err := limiter.Wait(ctx, "https://slow.example.com/a"); err != nil {
		t.Fatalf("Expected first request through, got %v", err)
	}

	// A different host is not affected by it.
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "https://fast.example.com/a"); err != nil {
			t.Fatalf("Expected fast host unaffected, got %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Expected fast host to clear quickly, took %v", elapsed)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 10)

	ctx := context.Background()
	start := time.Now()
	if err := limiter.WaitWithDelay(ctx, "https://example.com/a", 50*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected the crawl delay honored, waited only %v", elapsed)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())

	// Spend the burst.
	if err := limiter.Wait(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("Expected first request through, got %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := limiter.Wait(ctx, "https://example.com/b"); err == nil {
		t.Error("Expected an error once the context was cancelled")
	}
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewLimiter(1000, 100)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Wait(ctx, "https://example.com/shared")
		}()
	}
	wg.Wait()
}

func TestLimiter_BadURL(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if err := limiter.Wait(context.Background(), "://not-a-url"); err == nil {
		t.Error("Expected an error for an unparseable URL")
	}
}
