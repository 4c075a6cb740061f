// Package worker holds the shared machinery for calling rate-limited,
// fallible external collaborators: bounded retry, per-host rate limiting and
// a pool for batch runs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TransientError marks a failure worth retrying, such as a rate limit or a
// momentary network error. Deterministic failures (bad request, bad query)
// must not be wrapped.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err (or anything it wraps) is retryable
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Retry runs op, retrying transient failures up to maxRetries times with
// exponential backoff: base, 2*base, 4*base... Deterministic errors return
// immediately. A cancelled context aborts the wait and returns ctx.Err().
func Retry(ctx context.Context, maxRetries int, base time.Duration, op func(context.Context) error) error {
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var err error
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt >= maxRetries {
			return err
		}

		backoff := base << attempt
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
