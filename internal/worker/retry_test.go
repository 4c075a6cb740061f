package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_StopsAtBudget(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return Transient(errors.New("still failing"))
	})

	if err == nil {
		t.Fatal("Expected an error")
	}
	// Initial attempt plus two retries.
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if !IsTransient(err) {
		t.Error("Expected the transient error surfaced")
	}
}

func TestRetry_DeterministicErrorReturnsImmediately(t *testing.T) {
	calls := 0
	wantErr := errors.New("bad request")
	err := Retry(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected no retries for a deterministic error, got %d calls", calls)
	}
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 2, time.Millisecond, func(ctx context.Context) error {
		t.Error("Expected op never called with a cancelled context")
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRetry_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, 3, time.Hour, func(ctx context.Context) error {
			calls++
			return Transient(errors.New("slow provider"))
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected retry to abort the backoff wait")
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 call before cancel, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(errors.New("plain")) {
		t.Error("Expected plain error not transient")
	}
	if !IsTransient(Transient(errors.New("wrapped"))) {
		t.Error("Expected wrapped error transient")
	}

	// Wrapping survives fmt-style chains.
	chained := Transient(errors.New("inner"))
	if !IsTransient(chained) {
		t.Error("Expected transient detection through wrapping")
	}
	if Transient(nil) != nil {
		t.Error("Expected Transient(nil) to stay nil")
	}
}
