package retry

import (
	"context"
	"time"
)

const (
	readAttempts = 3
	baseDelay    = 100 * time.Millisecond
)

// Read runs a store read up to three times with a short linear backoff
// between attempts. Snapshot reads hit a store that occasionally blips;
// a couple of retries absorb the blip, and the last error is returned
// once the attempts are exhausted so callers can surface a visible
// unavailable error instead of a generic failure. A cancelled context
// cuts the wait short.
func Read[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var lastErr error

	for attempt := 1; attempt <= readAttempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == readAttempts {
			break
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}

	var zero T
	return zero, lastErr
}
