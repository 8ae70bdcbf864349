package tracker

import "time"

// timerHandle is a one-shot timer with outright cancellation. Rescheduling a
// debounce is always cancel-then-arm; a cancelled instance has no residual
// effect because the callback re-checks the pending map under the lock.
type timerHandle struct {
	t *time.Timer
}

func arm(d time.Duration, fn func()) *timerHandle {
	return &timerHandle{t: time.AfterFunc(d, fn)}
}

func (h *timerHandle) cancel() {
	if h != nil && h.t != nil {
		h.t.Stop()
	}
}
