// Package debounce provides a single-timer debouncer: scheduling while a
// timer is pending cancels and restarts it, so a burst of triggers collapses
// into one callback after the quiet window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid Schedule calls into one deferred invocation.
// Safe for concurrent use. The callback runs on the timer goroutine.
type Debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

// New returns a debouncer with the given quiet window.
func New(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

// Schedule arranges for fn to run once the quiet window elapses. Any pending
// invocation (its own or an earlier fn's) is cancelled first, so only the
// most recent fn ever runs.
func (db *Debouncer) Schedule(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, func() {
		db.mu.Lock()
		db.timer = nil
		db.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending invocation.
func (db *Debouncer) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}

// Pending reports whether an invocation is scheduled.
func (db *Debouncer) Pending() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.timer != nil
}
