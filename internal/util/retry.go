package util

import (
	"context"
	"fmt"
	"time"
)

// Retry runs op up to maxAttempts times, doubling the wait between attempts
// starting from baseDelay. The first success wins. Once the attempts are
// exhausted the last error is returned, wrapped with the attempt count.
// Cancelling the context aborts the wait between attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func() error) error {
	delay := baseDelay

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if last = op(); last == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, last)
}
