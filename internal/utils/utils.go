package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor pauses for d unless the context is canceled first. It is the
// throttle between externally rate-limited calls, not a correctness
// mechanism.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
