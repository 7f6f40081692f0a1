// Package retry provides the single retry policy used by read paths. The
// reference behavior scattered ad hoc retry loops through individual queries;
// here every read that wants resilience goes through one Policy so attempts
// and backoff are tuned in one place. Writes are never retried.
package retry

import (
	"context"
	"time"
)

// Policy describes bounded retries with exponential backoff.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the delay after the first failure; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff curve.
	MaxDelay time.Duration
	// RetryIf decides whether an error is worth another attempt. Nil retries
	// every error.
	RetryIf func(error) bool
}

// DefaultReads is the policy applied to lookup and aggregation queries.
var DefaultReads = Policy{
	MaxAttempts: 3,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// Do runs fn until it succeeds, the attempts are exhausted, or the context is
// cancelled. The last error is returned unwrapped so callers can still match
// sentinels and codes.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.RetryIf != nil && !p.RetryIf(err) {
			return err
		}
	}
	return err
}

// Value runs a value-returning read through the policy.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		out, innerErr = fn(ctx)
		return innerErr
	})
	return out, err
}
