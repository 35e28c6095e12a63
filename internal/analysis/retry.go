package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/quillvault/quill/internal/metrics"
)

// RetryPolicy retries a transient operation with exponential backoff. The
// default schedule is 3 attempts with delays of 1s and 2s between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy matches the model-acquisition schedule: up to 3
// attempts, waiting 1s then 2s (a third wait of 4s would apply with a larger
// budget).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// Do runs fn until it succeeds or the attempt budget is exhausted. Context
// cancellation during a backoff wait counts as the final failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		metrics.ModelLoadRetries.Inc()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after attempt %d: %w", attempt, ctx.Err())
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
