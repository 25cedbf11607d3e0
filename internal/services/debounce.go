package services

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of reschedulings into one execution after a
// quiet window. Used for destination changes driven by map dragging, where
// every intermediate drag position would otherwise fire a route request.
//
// A window of zero disables debouncing: Schedule runs fn synchronously.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule arranges for fn to run once the window elapses with no further
// calls. A pending schedule is replaced, not queued.
func (d *Debouncer) Schedule(fn func()) {
	if d.window <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Cancel drops any pending execution.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
