// Package feeder sequences a feeding cycle: the scheduled trigger, the dispenser
// motion, the timed weight measurement, display arbitration and notification dispatch.
//
// Hardware and network access sit behind the small interfaces declared here.
// Time is always read through a Clock so every task can be driven by tests.
package feeder

import (
	"time"
)

// Clock supplies wall-clock time and a monotonic reading.
// Monotonic must never jump when the wall clock is adjusted.
type Clock interface {
	Now() time.Time
	Monotonic() time.Duration
}

// WeightSensor returns a calibrated weight in grams, averaged over n raw samples.
type WeightSensor interface {
	Sample(n int) (float64, error)
}

// Actuator moves the dispenser to an angle in degrees (0..180).
type Actuator interface {
	SetPosition(angle int) error
}

// Display is a character display with fixed-width rows.
type Display interface {
	MoveCursor(col, row int)
	Write(text string)
	Clear()
	PowerOff()
}

// Indicator is a single on/off liveness output, usually an LED.
type Indicator interface {
	Set(on bool) error
}

// ReadingKind selects the notification template for a weight reading.
type ReadingKind string

const (
	// ReadingFed is sent when a measurement window opens, right after dispensing.
	ReadingFed ReadingKind = "FED"
	// ReadingRemaining is sent once at the measurement midpoint.
	ReadingRemaining ReadingKind = "REMAINING"
)

// Reading is one notification-worthy weight reading of a feed cycle.
type Reading struct {
	CycleID string
	Kind    ReadingKind
	Grams   float64
	Time    time.Time
}

// Dispatcher hands readings to remote notifiers.
// Dispatch must return immediately and must never fail the caller.
type Dispatcher interface {
	Dispatch(r Reading)
}

// Observer receives cycle progress for status and metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	SlotFired(slot Slot, at time.Time)
	SlotMissed(slot Slot, at time.Time)
	Dispensed(at time.Time)
	MeasurementChanged(state MeasurementState)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) SlotFired(Slot, time.Time)           {}
func (NopObserver) SlotMissed(Slot, time.Time)          {}
func (NopObserver) Dispensed(time.Time)                 {}
func (NopObserver) MeasurementChanged(MeasurementState) {}

// Observers fans every callback out to each observer in order.
type Observers []Observer

func (o Observers) SlotFired(slot Slot, at time.Time) {
	for _, ob := range o {
		ob.SlotFired(slot, at)
	}
}

func (o Observers) SlotMissed(slot Slot, at time.Time) {
	for _, ob := range o {
		ob.SlotMissed(slot, at)
	}
}

func (o Observers) Dispensed(at time.Time) {
	for _, ob := range o {
		ob.Dispensed(at)
	}
}

func (o Observers) MeasurementChanged(state MeasurementState) {
	for _, ob := range o {
		ob.MeasurementChanged(state)
	}
}
