package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avolkov/byline/internal/cache"
)

type countingEmbedder struct {
	calls int32
	err   error
	delay time.Duration
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&e.calls, 1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 2, 3}, nil
}

func TestCachedEmbedder_CachesRepeatedText(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		vector, err := cached.Embed(ctx, "same query text")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(vector) != 3 {
			t.Fatalf("Expected 3-dim vector, got %d", len(vector))
		}
	}

	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("Expected 1 provider call for repeated text, got %d", got)
	}

	if _, err := cached.Embed(ctx, "different text"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&inner.calls); got != 2 {
		t.Errorf("Expected a second call for new text, got %d", got)
	}
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("provider down")}
	cached := NewCachedEmbedder(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	ctx := context.Background()
	if _, err := cached.Embed(ctx, "q"); err == nil {
		t.Fatal("Expected an error")
	}

	inner.err = nil
	if _, err := cached.Embed(ctx, "q"); err != nil {
		t.Fatalf("Expected recovery after the provider came back, got %v", err)
	}
	if got := atomic.LoadInt32(&inner.calls); got != 2 {
		t.Errorf("Expected 2 provider calls, got %d", got)
	}
}

func TestCachedEmbedder_ConcurrentCallsCollapse(t *testing.T) {
	inner := &countingEmbedder{delay: 30 * time.Millisecond}
	cached := NewCachedEmbedder(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.Embed(ctx, "hot query"); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("Expected concurrent identical calls collapsed to 1, got %d", got)
	}
}

func TestCachedEmbedder_CorruptEntryReembeds(t *testing.T) {
	inner := &countingEmbedder{}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	cached := NewCachedEmbedder(inner, store, time.Minute)

	_ = store.Set(cache.Key("embed", "q"), []byte("not json"), time.Minute)

	vector, err := cached.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("Expected a fresh embed past the corrupt entry, got %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("Expected a real vector, got %v", vector)
	}
	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("Expected 1 provider call, got %d", got)
	}
}
