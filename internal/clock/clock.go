// Package clock abstracts time for the polling and pacing loops so they can
// be tested without wall-clock delays.
package clock

import (
	"sync"
	"time"
)

// Clock provides the two operations the automation needs from time.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time        { return time.Now() }
func (Real) Sleep(d time.Duration) { time.Sleep(d) }

// Fake is a manually advanced clock for tests. Sleep advances the clock
// immediately and records the requested duration.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// OnSleep, if set, is invoked after each Sleep with the total number
	// of sleeps so far. Tests use it to mutate state between poll
	// iterations.
	OnSleep func(n int)
}

// NewFake returns a Fake starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	n := len(f.sleeps)
	cb := f.OnSleep
	f.mu.Unlock()

	if cb != nil {
		cb(n)
	}
}

// Sleeps returns a copy of all recorded sleep durations.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]time.Duration, len(f.sleeps))
	copy(cp, f.sleeps)
	return cp
}
