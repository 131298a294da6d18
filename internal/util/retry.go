package util

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds, sleeping between attempts with a delay
// that starts at baseDelay and doubles each round. After maxAttempts
// failures the last error is returned. Cancelling ctx aborts the backoff
// sleep; it does not interrupt a running fn.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	delay := baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
