package inference

import (
	"context"
	"time"
)

// admit reserves the single generation slot, waiting up to maxWait.
// Returns a release func to be deferred.
func (e *Engine) admit(ctx context.Context) (func(), error) {
	select {
	case e.slot <- struct{}{}:
		return func() { <-e.slot }, nil
	default:
	}
	t := time.NewTimer(e.maxWait)
	defer t.Stop()
	select {
	case e.slot <- struct{}{}:
		return func() { <-e.slot }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-t.C:
		return func() {}, tooBusyError{}
	}
}

// Busy reports whether a generation currently holds the slot.
func (e *Engine) Busy() bool { return len(e.slot) > 0 }
