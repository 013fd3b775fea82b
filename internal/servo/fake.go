package servo

import "sync"

// Fake records commanded positions.
type Fake struct {
	mu        sync.Mutex
	positions []int
	err       error
	closed    bool
}

// SetPosition records angle, or returns the configured error.
func (f *Fake) SetPosition(angle int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.positions = append(f.positions, angle)
	return nil
}

// Close marks the fake closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Positions returns a copy of the commanded positions.
func (f *Fake) Positions() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.positions...)
}

// SetError makes later moves fail with err.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
