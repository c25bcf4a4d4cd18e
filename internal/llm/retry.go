package llm

import (
	"context"
	"time"
)

// DefaultMaxRetries is the retry ceiling applied when a caller passes 0.
const DefaultMaxRetries = 3

// DefaultBaseDelay is the backoff unit applied when a caller passes 0.
const DefaultBaseDelay = time.Second

// Retry invokes fn up to maxRetries+1 times, sleeping baseDelay × 2^attempt
// between attempts. Every error is retried the same way regardless of kind,
// and the last error is returned unchanged; callers distinguish retryable
// intent themselves via errors.Is. No jitter.
func Retry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	var result T
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt < maxRetries {
			time.Sleep(baseDelay * (1 << attempt))
		}
	}
	return result, err
}
