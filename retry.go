package kvload

import (
	"context"
	"time"
)

// Do runs attempt up to MaxAttempts times with a fixed delay between
// attempts, stopping early on success or context cancellation. The attempt
// callback receives the 1-based attempt number for logging.
func (r RetryConfig) Do(ctx context.Context, attempt func(ctx context.Context, n int) error) error {
	var last error
	for n := 1; n <= r.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = attempt(ctx, n)
		if last == nil {
			return nil
		}
		if n == r.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Delay):
		}
	}
	return &ExhaustedError{Attempts: r.MaxAttempts, Last: last}
}
