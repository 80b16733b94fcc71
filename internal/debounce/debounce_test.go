package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleCoalesces(t *testing.T) {
	db := New(30 * time.Millisecond)

	var calls atomic.Int32
	var got atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		db.Schedule(func() {
			calls.Add(1)
			got.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond, "burst should collapse into one call")
	assert.Equal(t, int32(5), got.Load(), "only the most recent fn runs")
	assert.False(t, db.Pending())

	// A later burst fires again.
	db.Schedule(func() { calls.Add(1) })
	assert.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestCancel(t *testing.T) {
	db := New(20 * time.Millisecond)

	var calls atomic.Int32
	db.Schedule(func() { calls.Add(1) })
	assert.True(t, db.Pending())

	db.Cancel()
	assert.False(t, db.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load(), "cancelled invocation must not run")
}

func TestCancelWithoutSchedule(t *testing.T) {
	db := New(10 * time.Millisecond)
	db.Cancel() // must not panic
	assert.False(t, db.Pending())
}

func TestScheduleResetsWindow(t *testing.T) {
	db := New(50 * time.Millisecond)

	var calls atomic.Int32
	start := time.Now()
	db.Schedule(func() { calls.Add(1) })
	time.Sleep(30 * time.Millisecond)
	db.Schedule(func() { calls.Add(1) })

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	// The second Schedule restarted the window, so the call lands at least
	// 30ms + 50ms after the first Schedule.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
