// Package clock provides wall-clock and monotonic time sources for the feeder.
package clock

import (
	"sync"
	"time"
)

// System reads the host clock. Monotonic readings come from Go's monotonic clock
// and are unaffected by wall-clock adjustments.
type System struct {
	boot time.Time
}

// NewSystem creates a system clock whose monotonic epoch is now.
func NewSystem() *System {
	return &System{boot: time.Now()}
}

// Now returns the local wall-clock time.
func (s *System) Now() time.Time {
	return time.Now()
}

// Monotonic returns the time elapsed since the clock was created.
func (s *System) Monotonic() time.Duration {
	return time.Since(s.boot)
}

// Fake is a manually driven clock for tests.
type Fake struct {
	mu   sync.Mutex
	wall time.Time
	mono time.Duration
}

// NewFake creates a fake clock reading wall with a monotonic reading of zero.
func NewFake(wall time.Time) *Fake {
	return &Fake{wall: wall}
}

// Now returns the fake wall-clock time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wall
}

// Monotonic returns the fake monotonic reading.
func (f *Fake) Monotonic() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mono
}

// Advance moves both readings forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.wall = f.wall.Add(d)
	f.mono += d
	f.mu.Unlock()
}

// SetWall jumps the wall clock without touching the monotonic reading,
// like an NTP or RTC correction would.
func (f *Fake) SetWall(wall time.Time) {
	f.mu.Lock()
	f.wall = wall
	f.mu.Unlock()
}
