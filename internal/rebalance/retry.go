package rebalance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEndpointsExhausted wraps the last failure once every attempt of a
// retriable call has been spent.
var ErrEndpointsExhausted = errors.New("all rpc attempts exhausted")

// Policy bounds one retriable external call: a deadline per attempt, a fixed
// pause between attempts, and an endpoint rotation after every failure.
type Policy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	Backoff        time.Duration
}

// DefaultPolicy is the operational default: three attempts of fifteen
// seconds each, one second apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		AttemptTimeout: 15 * time.Second,
		Backoff:        time.Second,
	}
}

// withRetry runs fn under the policy. rotate, when non-nil, is invoked after
// each failed attempt so the next one lands on the next endpoint. The pause
// between attempts is fixed, not exponential: failover already changes the
// target, so backing off further only delays recovery.
func withRetry(ctx context.Context, policy Policy, rotate func(), fn func(context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rotate != nil {
			rotate()
		}
		if attempt < policy.MaxAttempts && policy.Backoff > 0 {
			timer := time.NewTimer(policy.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrEndpointsExhausted, policy.MaxAttempts, lastErr)
}
