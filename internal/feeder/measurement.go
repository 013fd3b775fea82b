package feeder

import (
	"math"
	"time"
)

// Phase is the measurement state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "ACTIVE"
	}
	return "IDLE"
}

// MeasurementState is a copy of the measurement state machine.
type MeasurementState struct {
	Phase         Phase
	CycleID       string
	FirstWeight   float64
	LastWeight    float64
	WindowStart   time.Duration
	WindowEnd     time.Duration
	MidpointFired bool
	FinalReading  bool
}

// Kind returns the template the next notification should use.
func (s MeasurementState) Kind() ReadingKind {
	if s.FinalReading {
		return ReadingRemaining
	}
	return ReadingFed
}

// Step tells the measurement task what to draw and send after a sample.
type Step struct {
	// ShowFed asks for the "fed" line; true until the final reading is taken.
	ShowFed bool
	// Midpoint is true on the one sample that crossed the midpoint.
	Midpoint bool
}

// Measurement is the measurement phase state machine. All times are monotonic.
// It is not safe for concurrent use.
type Measurement struct {
	window   time.Duration
	midpoint time.Duration
	state    MeasurementState
}

// NewMeasurement creates an idle machine with the given window and midpoint.
func NewMeasurement(window, midpoint time.Duration) *Measurement {
	return &Measurement{window: window, midpoint: midpoint}
}

// Begin moves Idle to Active with the first weight taken at now.
// It returns false, changing nothing, when already Active.
func (m *Measurement) Begin(now time.Duration, cycleID string, first float64) bool {
	if m.state.Phase == PhaseActive {
		return false
	}
	m.state = MeasurementState{
		Phase:       PhaseActive,
		CycleID:     cycleID,
		FirstWeight: first,
		LastWeight:  first,
		WindowStart: now,
		WindowEnd:   now + m.window,
	}
	return true
}

// Expired reports whether an active window has closed at now.
func (m *Measurement) Expired(now time.Duration) bool {
	return m.state.Phase == PhaseActive && now >= m.state.WindowEnd
}

// Observe records a sample taken at now.
func (m *Measurement) Observe(now time.Duration, grams float64) Step {
	if m.state.Phase != PhaseActive {
		return Step{}
	}
	m.state.LastWeight = grams
	step := Step{ShowFed: !m.state.FinalReading}
	if !m.state.MidpointFired && now-m.state.WindowStart >= m.midpoint {
		m.state.MidpointFired = true
		m.state.FinalReading = true
		step.Midpoint = true
	}
	return step
}

// Finish returns to Idle and resets the notification state.
func (m *Measurement) Finish() {
	m.state = MeasurementState{}
}

// State returns a copy of the current state.
func (m *Measurement) State() MeasurementState {
	return m.state
}

// ApplyNoiseFloor zeroes readings whose magnitude is below floor and rounds the
// rest to 0.1 g. The comparison is strict: a reading of exactly floor is kept.
func ApplyNoiseFloor(grams, floor float64) float64 {
	if math.Abs(grams) < floor {
		return 0
	}
	r := math.Round(grams*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
