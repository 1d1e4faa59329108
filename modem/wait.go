package modem

import "time"

// Clock returns a monotonic reading. Only differences between readings are
// used.
type Clock func() time.Duration

var epoch = time.Now()

// MonotonicClock reads the process monotonic clock.
func MonotonicClock() time.Duration {
	return time.Since(epoch)
}

// yieldMask selects every 128th millisecond of outstanding wait.
const yieldMask = 0x7F

// Timer is a resumable countdown for polling loops. Arm starts a wait and
// Poll advances it; the caller keeps servicing input between polls instead of
// sleeping.
//
// A Timer is not safe for concurrent use.
type Timer struct {
	clock Clock
	yield func()

	start     time.Duration
	remaining uint32 // milliseconds
}

// NewTimer returns a Timer reading clock. yield, when not nil, is called
// periodically during long waits so other cooperative work can run.
func NewTimer(clock Clock, yield func()) *Timer {
	if clock == nil {
		clock = MonotonicClock
	}
	return &Timer{clock: clock, yield: yield}
}

// Arm records the current time and the duration to wait. Durations are
// truncated to whole milliseconds.
func (t *Timer) Arm(d time.Duration) {
	t.start = t.clock()
	if d < 0 {
		d = 0
	}
	t.remaining = uint32(d / time.Millisecond)
}

// Poll reports whether the wait is still running. Every full millisecond
// elapsed since the last accounted instant is taken off the remaining time.
func (t *Timer) Poll() bool {
	if t.remaining == 0 {
		return false
	}
	if t.remaining&yieldMask == yieldMask && t.yield != nil {
		t.yield()
	}
	now := t.clock()
	for t.remaining > 0 && now-t.start >= time.Millisecond {
		t.remaining--
		t.start += time.Millisecond
	}
	return t.remaining > 0
}

// Remaining returns the time left on the current wait.
func (t *Timer) Remaining() time.Duration {
	return time.Duration(t.remaining) * time.Millisecond
}
