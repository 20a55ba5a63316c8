package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between attempts.
// It stops early when ctx is cancelled.
func Retry(ctx context.Context, op string, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		slog.Warn("Operation failed, will retry.",
			"operation", op,
			"attempt", i+1,
			"maxAttempts", attempts,
			"delay", delay.String(),
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
