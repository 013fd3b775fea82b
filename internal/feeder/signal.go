package feeder

import (
	"context"
	"sync"
)

// Signal is a single-slot, edge-triggered flag.
//
// Set raises the flag; setting an already raised flag is a no-op, so duplicate
// requests before consumption collapse into one. The consumer decides when the
// request is finished by calling Clear.
type Signal struct {
	name string

	mu  sync.Mutex
	set bool
	ch  chan struct{}
}

// NewSignal creates a lowered signal. The name is used in logs only.
func NewSignal(name string) *Signal {
	return &Signal{name: name, ch: make(chan struct{}, 1)}
}

// Name returns the signal name.
func (s *Signal) Name() string {
	return s.name
}

// Set raises the signal. It reports whether the call changed the state.
func (s *Signal) Set() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.set = true
	select {
	case s.ch <- struct{}{}:
	default:
	}
	return true
}

// Clear lowers the signal and drops any pending wakeup.
func (s *Signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = false
	select {
	case <-s.ch:
	default:
	}
}

// IsSet reports whether the signal is raised.
func (s *Signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// C returns a channel that receives after the signal is raised.
// A receive is only a hint; callers re-check IsSet.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Wait blocks until the signal is raised or ctx is done.
// It does not lower the signal.
func (s *Signal) Wait(ctx context.Context) error {
	for {
		if s.IsSet() {
			return nil
		}
		select {
		case <-s.ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
