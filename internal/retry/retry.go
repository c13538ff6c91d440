// Package retry wraps remote calls in bounded exponential backoff.
package retry

import (
	"context"
	"time"
)

// Policy controls how many times an operation is retried and how long to wait
// between attempts. The zero value is not useful; start from Default().
type Policy struct {
	Retries    int           // Additional attempts after the first call.
	Factor     float64       // Backoff multiplier applied per attempt.
	MinTimeout time.Duration // Delay before the first retry.

	// Retryable decides whether an error is worth another attempt.
	// Nil retries every failure.
	Retryable func(error) bool

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default returns the policy used for every remote store call.
func Default() Policy {
	return Policy{Retries: 3, Factor: 2, MinTimeout: 250 * time.Millisecond}
}

// Delay returns the wait before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.MinTimeout)
	for i := 0; i < attempt; i++ {
		d *= p.Factor
	}
	return time.Duration(d)
}

// Do invokes op until it succeeds or the policy gives up, returning the last error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Value(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= p.Retries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == p.Retries {
			break
		}
		if p.Retryable != nil && !p.Retryable(err) {
			break
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
