package schedule

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a pending callback that can be cancelled before it fires.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall-clock timers so combat pacing can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct {
	clock clock.Clock
}

// NewRealClock returns a Clock backed by the system time.
func NewRealClock() Clock {
	return realClock{clock: clock.New()}
}

func (c realClock) Now() time.Time {
	return c.clock.Now()
}

func (c realClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.clock.AfterFunc(d, f)
}

// ManualClock is a Clock whose time only moves when Advance is called.
// Time and timer expiry come from a clock.Mock; callbacks run on the
// goroutine calling Advance, in due-time order and then registration order.
type ManualClock struct {
	mock *clock.Mock

	mu      sync.Mutex
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	owner *ManualClock
	timer *clock.Timer
	when  time.Time
	seq   uint64
	f     func()
	done  bool
}

// NewManualClock creates a manual clock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	mock := clock.NewMock()
	mock.Set(start)
	return &ManualClock{mock: mock}
}

func (c *ManualClock) Now() time.Time {
	return c.mock.Now()
}

// AfterFunc registers f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	d = max(d, 0)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{
		owner: c,
		timer: c.mock.Timer(d),
		when:  c.mock.Now().Add(d),
		seq:   c.seq,
		f:     f,
	}
	c.pending = append(c.pending, t)
	return t
}

// Stop cancels the timer. It reports false if the callback already ran or
// the timer was stopped.
func (t *manualTimer) Stop() bool {
	c := t.owner
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.timer.Stop()
	c.remove(t)
	return true
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers registered by callbacks during the advance.
// It returns the number of callbacks fired.
func (c *ManualClock) Advance(d time.Duration) int {
	target := c.mock.Now().Add(max(d, 0))
	fired := 0
	for {
		c.mu.Lock()
		next := c.next(target)
		if next != nil {
			next.done = true
			c.remove(next)
		}
		c.mu.Unlock()

		if next == nil {
			c.mock.Set(target)
			return fired
		}
		if next.when.After(c.mock.Now()) {
			c.mock.Set(next.when)
		}
		select {
		case <-next.timer.C:
		default:
		}
		next.f()
		fired++
	}
}

// RunAll fires pending timers until none remain or the limit is reached.
// It returns the number of callbacks fired.
func (c *ManualClock) RunAll(limit int) int {
	fired := 0
	for fired < limit {
		c.mu.Lock()
		next := c.next(time.Time{})
		c.mu.Unlock()
		if next == nil {
			return fired
		}
		fired += c.Advance(next.when.Sub(c.mock.Now()))
	}
	return fired
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// next returns the earliest pending timer due at or before target. A zero
// target matches any timer.
func (c *ManualClock) next(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range c.pending {
		if best == nil || t.when.Before(best.when) || (t.when.Equal(best.when) && t.seq < best.seq) {
			best = t
		}
	}
	if best == nil || (!target.IsZero() && best.when.After(target)) {
		return nil
	}
	return best
}

func (c *ManualClock) remove(t *manualTimer) {
	for i, existing := range c.pending {
		if existing == t {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}
