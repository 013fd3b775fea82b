package gpio

import "sync"

// FakeOutput is a test double that records every level it was driven to.
type FakeOutput struct {
	mu sync.Mutex

	// States holds each level passed to Set, in order.
	States []bool

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records on, or returns SetError.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	return nil
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// On reports the last level set. False if never set.
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}

// Count returns the number of successful Set calls.
func (f *FakeOutput) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.States)
}

// Fail makes later Set calls return err. Pass nil to recover.
func (f *FakeOutput) Fail(err error) {
	f.mu.Lock()
	f.SetError = err
	f.mu.Unlock()
}
