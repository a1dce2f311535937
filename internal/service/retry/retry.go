package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Executor retries an operation with exponential backoff between attempts.
// The first retry waits backoff^0 seconds, the second backoff^1, and so on.
type Executor struct {
	maxAttempts   int
	backoffFactor float64
}

func New(maxAttempts int, backoffFactor float64) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoffFactor < 1 {
		backoffFactor = 1
	}
	return &Executor{maxAttempts: maxAttempts, backoffFactor: backoffFactor}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is cancelled.
// The last error is returned when all attempts fail.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}

		if attempt == e.maxAttempts-1 {
			break
		}

		wait := time.Duration(math.Pow(e.backoffFactor, float64(attempt)) * float64(time.Second))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", e.maxAttempts, err)
}
