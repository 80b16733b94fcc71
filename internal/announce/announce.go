// Package announce implements the screen-reader announcement channel: a
// single transient message that is published to a listener and automatically
// cleared after a short delay, the terminal analogue of an aria-live region.
package announce

import (
	"sync"
	"time"
)

// ClearDelay is how long an announcement stays current before it is blanked.
const ClearDelay = 1000 * time.Millisecond

// Announcer holds the live announcement. Safe for concurrent use; the clear
// timer fires on its own goroutine.
type Announcer struct {
	mu         sync.Mutex
	current    string
	timer      *time.Timer
	clearAfter time.Duration
	notify     func(string)
}

// New returns an announcer that calls notify with every change to the live
// message, including the automatic clear (an empty string). notify may be
// nil.
func New(notify func(string)) *Announcer {
	return &Announcer{clearAfter: ClearDelay, notify: notify}
}

// Announce publishes message and restarts the clear timer. A follow-up
// announcement within the delay replaces the message and pushes the clear
// out again.
func (a *Announcer) Announce(message string) {
	a.mu.Lock()
	a.current = message
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.clearAfter, a.clear)
	notify := a.notify
	a.mu.Unlock()

	if notify != nil {
		notify(message)
	}
}

func (a *Announcer) clear() {
	a.mu.Lock()
	a.current = ""
	a.timer = nil
	notify := a.notify
	a.mu.Unlock()

	if notify != nil {
		notify("")
	}
}

// Current returns the live announcement, empty once cleared.
func (a *Announcer) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Close cancels a pending clear. The current message is left as is.
func (a *Announcer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
