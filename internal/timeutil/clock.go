// Package timeutil lets run timing and watch debouncing use a clock that
// tests can drive by hand.
package timeutil

import (
	"sort"
	"sync"
	"time"
)

// Clock is the time source for run durations, stored run timestamps and
// debounce timers.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// NewTimer returns an armed timer that fires once, d from now.
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	C() <-chan time.Time
	// Stop disarms the timer and reports whether it was armed.
	Stop() bool
	// Reset re-arms the timer to fire d from now and reports whether it was
	// armed before the call.
	Reset(d time.Duration) bool
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{time.NewTimer(d)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time        { return r.t.C }
func (r realTimer) Stop() bool                 { return r.t.Stop() }
func (r realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

// MockClock only moves when Advance is called. Timers fire during Advance,
// earliest deadline first.
type MockClock struct {
	mu    sync.Mutex
	now   time.Time
	armed map[*MockTimer]struct{}
}

// NewMockClock returns a clock stopped at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start, armed: make(map[*MockTimer]struct{})}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward by d and fires every armed timer whose
// deadline has been reached.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	type firing struct {
		t        *MockTimer
		deadline time.Time
	}
	var due []firing
	for t := range c.armed {
		if !now.Before(t.deadline) {
			due = append(due, firing{t, t.deadline})
			delete(c.armed, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, f := range due {
		select {
		case f.t.ch <- now:
		default:
		}
	}
}

func (c *MockClock) NewTimer(d time.Duration) Timer {
	t := &MockTimer{clock: c, ch: make(chan time.Time, 1)}
	t.Reset(d)
	return t
}

// MockTimer is a timer owned by a MockClock. Its state lives in the clock's
// armed set, guarded by the clock's mutex.
type MockTimer struct {
	clock    *MockClock
	ch       chan time.Time
	deadline time.Time
}

func (t *MockTimer) C() <-chan time.Time { return t.ch }

func (t *MockTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	_, armed := c.armed[t]
	delete(c.armed, t)
	return armed
}

func (t *MockTimer) Reset(d time.Duration) bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	_, armed := c.armed[t]
	t.deadline = c.now.Add(d)
	c.armed[t] = struct{}{}
	return armed
}
