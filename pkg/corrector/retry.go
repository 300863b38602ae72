package corrector

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds correction retries. Backoff doubles per attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration

	// Sleep is injectable for tests. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return nil
	}
}

// Retry calls the provider until it returns a result or the attempt
// budget is exhausted. Transport errors and malformed responses are
// both transient; context cancellation is not.
func Retry(ctx context.Context, provider Provider, text string, policy RetryPolicy) (*Result, error) {
	attempts := max(policy.Attempts, 1)

	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := policy.Backoff << (attempt - 1)

			if err := policy.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		result, err := provider.Correct(ctx, text)

		if err == nil {
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
	}

	return nil, fmt.Errorf("correction failed after %d attempts: %w", attempts, lastErr)
}
