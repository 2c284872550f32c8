package engine

import (
	"context"
	"time"
)

// Drive calls s.Tick once per value received on ticks until the session
// reaches a terminal state, ticks is closed, or ctx is cancelled.
// Production callers pass a time.Ticker channel; tests pass a manual channel.
func Drive(ctx context.Context, s *Session, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			s.Tick()
			if s.Status().Terminal() {
				return
			}
		}
	}
}
