package objstore

import (
	"context"
	"time"

	"github.com/deltakit/deltakit/internal/errors"
)

// RetryPolicy mirrors the teacher's RetryConfig (server/metadata/iceberg/retry.go),
// bounded per spec.md §4.1: "capped at 5 attempts and 30s total".
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	TotalBudget   time.Duration
}

// DefaultRetryPolicy returns the spec's default bound.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   5,
		BaseDelay:     200 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		TotalBudget:   30 * time.Second,
	}
}

// isTransient reports whether err is retriable: timeout, 5xx, throttling.
// Non-transient failures (not-found, forbidden, malformed URI) are
// propagated on the first attempt, per spec.md §4.1.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNetwork)
}

// withRetry executes op with exponential backoff, never exceeding
// r.retry.MaxAttempts or r.retry.TotalBudget, and checking ctx for
// cancellation before every attempt (spec.md §5's cancellation contract).
func (r *Reader) withRetry(ctx context.Context, op func(context.Context) error) error {
	policy := r.retry
	deadline := time.Now().Add(policy.TotalBudget)
	delay := policy.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return errors.New(errors.CommonCancelled, "operation cancelled", ctx.Err())
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err) {
			return err
		}
		if attempt == policy.MaxAttempts || time.Now().Add(delay).After(deadline) {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.New(errors.CommonCancelled, "operation cancelled", ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * policy.BackoffFactor)
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return lastErr
}
