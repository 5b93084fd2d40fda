// Package retry implements a bounded exponential-backoff retry policy.
package retry

import (
	"context"
	"time"
)

// Policy controls how an operation is retried. The delay before attempt
// n+1 is BaseDelay * 2^(n-1), so with BaseDelay of one second the waits
// are 1s, 2s, 4s.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether a failure is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
	// sleep is swapped out in tests.
	sleep func(context.Context, time.Duration) error
}

// Do runs fn until it succeeds, a non-retryable error occurs, attempts
// are exhausted, or ctx is done. The last error is returned as-is so
// callers can classify it.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt >= attempts {
			return err
		}
		if serr := sleep(ctx, delay); serr != nil {
			return err
		}
		delay *= 2
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
