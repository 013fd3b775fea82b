package scale

import "sync"

// Fake is a weight sensor for tests. It returns the current weight, or the
// next scripted weight when a script is queued.
type Fake struct {
	mu     sync.Mutex
	weight float64
	script []float64
	err    error
	calls  int
}

// NewFake creates a fake reading grams.
func NewFake(grams float64) *Fake {
	return &Fake{weight: grams}
}

// Sample returns the next scripted weight, or the current weight.
func (f *Fake) Sample(n int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.script) > 0 {
		f.weight = f.script[0]
		f.script = f.script[1:]
	}
	return f.weight, nil
}

// Set changes the weight returned by later samples.
func (f *Fake) Set(grams float64) {
	f.mu.Lock()
	f.weight = grams
	f.mu.Unlock()
}

// Script queues weights returned one per sample before falling back to the
// last one.
func (f *Fake) Script(grams ...float64) {
	f.mu.Lock()
	f.script = append(f.script, grams...)
	f.mu.Unlock()
}

// SetError makes later samples fail with err. Pass nil to recover.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Calls returns how many samples were taken.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeRaw is a RawReader returning a fixed sequence of raw values.
type FakeRaw struct {
	mu     sync.Mutex
	Values []int64
	Errs   []error
	i      int
}

// ReadRaw returns the next value, cycling through Values.
func (f *FakeRaw) ReadRaw() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.i
	f.i++
	if i < len(f.Errs) && f.Errs[i] != nil {
		return 0, f.Errs[i]
	}
	if len(f.Values) == 0 {
		return 0, nil
	}
	return f.Values[i%len(f.Values)], nil
}
