// Package dispatch wraps failure-prone operations with bounded
// retry-with-backoff. It is policy-free: callers decide what is retryable,
// typically via apperrors.IsRetryable.
package dispatch

import (
	"context"
	"math"
	"time"
)

// RetryConfig is a pure value describing a retry policy.
type RetryConfig struct {
	// MaxAttempts bounds the number of invocations, not the number of
	// retries: MaxAttempts of 3 means at most 3 calls and 2 waits.
	MaxAttempts int
	// InitialDelay is the wait after the first failed attempt.
	InitialDelay time.Duration
	// MaxDelay caps the grown delay.
	MaxDelay time.Duration
	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64
	// IsRetryable decides whether an error is worth another attempt.
	// nil retries every error.
	IsRetryable func(error) bool
}

// DefaultRetryConfig returns the policy used when callers have no opinion:
// three attempts, one second growing twofold, capped at ten seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}
}

// Delay returns the wait after the given 1-indexed failed attempt:
// InitialDelay grown by BackoffFactor per preceding attempt, capped at
// MaxDelay.
func (c RetryConfig) Delay(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// WithRetry runs op until it succeeds, the policy gives up, or ctx is
// canceled during a wait. The returned error is the most recent operation
// error exactly as op returned it; WithRetry never wraps or replaces it.
// Waits suspend only the calling goroutine. Concurrent dispatches are not
// deduplicated; callers that need single-flight behavior arrange it
// themselves.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if cfg.IsRetryable != nil && !cfg.IsRetryable(err) {
			break
		}
		if !wait(ctx, cfg.Delay(attempt)) {
			// Canceled mid-backoff; the operation error is still the
			// more useful one to surface.
			break
		}
	}
	return zero, lastErr
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
