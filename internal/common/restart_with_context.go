package common

import (
	"context"
)

// RestartWithContext keeps calling handler, running afterLoop between successive calls,
// until handler fails or ctx is done. The outcome is sent to result exactly once:
// the handler error, or nil when ctx finished first.
func RestartWithContext(ctx context.Context, handler func() error, afterLoop func(), result chan<- error) {
	failed := make(chan error, 1)

	go func() {
		for {
			if err := handler(); err != nil {
				failed <- err
				return
			}

			if ctx.Err() != nil {
				return
			}

			afterLoop()
		}
	}()

	select {
	case <-ctx.Done():
		result <- nil
	case err := <-failed:
		result <- err
	}
}
