package announce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// notifyLog records notifications in order.
type notifyLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *notifyLog) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *notifyLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func TestAnnouncePublishesAndClears(t *testing.T) {
	log := &notifyLog{}
	a := New(log.add)
	a.clearAfter = 30 * time.Millisecond

	a.Announce("Left sidebar collapsed")
	assert.Equal(t, "Left sidebar collapsed", a.Current())
	assert.Equal(t, []string{"Left sidebar collapsed"}, log.snapshot())

	assert.Eventually(t, func() bool {
		return a.Current() == ""
	}, time.Second, 5*time.Millisecond, "announcement should clear itself")
	assert.Equal(t, []string{"Left sidebar collapsed", ""}, log.snapshot())
}

func TestAnnounceRestartsClearTimer(t *testing.T) {
	log := &notifyLog{}
	a := New(log.add)
	a.clearAfter = 50 * time.Millisecond

	a.Announce("first")
	time.Sleep(30 * time.Millisecond)
	a.Announce("second")
	time.Sleep(30 * time.Millisecond)

	// 60ms after "first" but only 30ms after "second": still live.
	assert.Equal(t, "second", a.Current())

	assert.Eventually(t, func() bool {
		return a.Current() == ""
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second", ""}, log.snapshot())
}

func TestCloseCancelsPendingClear(t *testing.T) {
	a := New(nil)
	a.clearAfter = 20 * time.Millisecond

	a.Announce("sticky")
	a.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "sticky", a.Current())
}

func TestNilNotify(t *testing.T) {
	a := New(nil)
	a.clearAfter = 10 * time.Millisecond

	a.Announce("no listener") // must not panic
	assert.Eventually(t, func() bool {
		return a.Current() == ""
	}, time.Second, 5*time.Millisecond)
}
