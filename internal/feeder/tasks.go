package feeder

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SchedulerTask polls the clock and raises the feed signal when a slot is due.
type SchedulerTask struct {
	clock     Clock
	scheduler *Scheduler
	feed      *Signal
	interval  time.Duration
	observer  Observer
	log       zerolog.Logger
}

// Poll runs a single scheduler check.
func (t *SchedulerTask) Poll() Decision {
	now := t.clock.Now()
	slot, d := t.scheduler.Check(now)
	switch d {
	case DecisionFire:
		if t.feed.Set() {
			t.log.Info().Stringer("slot", slot).Time("at", now).Msg("feeding slot due")
		} else {
			t.log.Debug().Stringer("slot", slot).Msg("feed already pending")
		}
		t.observer.SlotFired(slot, now)
	case DecisionMissed:
		t.log.Info().Stringer("slot", slot).Time("at", now).Msg("feeding slot edge missed, skipping until tomorrow")
		t.observer.SlotMissed(slot, now)
	}
	return d
}

// Run polls until ctx is done.
func (t *SchedulerTask) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	t.Poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Poll()
		}
	}
}

// FeedTask dispenses food whenever the feed signal is raised.
type FeedTask struct {
	feed     *Signal
	prepare  *Signal
	actuator Actuator
	profile  Profile
	hold     time.Duration
	clock    Clock
	observer Observer
	log      zerolog.Logger
}

// Dispense drives the actuator through open, hold, closed, hold.
// Actuator errors are logged; there is no position feedback to act on.
func (t *FeedTask) Dispense(ctx context.Context) error {
	for _, angle := range []int{t.profile.Open, t.profile.Closed} {
		if err := t.actuator.SetPosition(angle); err != nil {
			t.log.Error().Err(err).Int("angle", angle).Msg("actuator command failed")
		}
		if err := sleep(ctx, t.hold); err != nil {
			return err
		}
	}
	return nil
}

// Run waits for feed requests until ctx is done.
func (t *FeedTask) Run(ctx context.Context) error {
	for {
		if err := t.feed.Wait(ctx); err != nil {
			return nil
		}
		t.feed.Clear()
		t.log.Info().Msg("dispensing")
		if err := t.Dispense(ctx); err != nil {
			// Leave the dispenser closed on the way out.
			if err := t.actuator.SetPosition(t.profile.Closed); err != nil {
				t.log.Error().Err(err).Msg("actuator close on shutdown failed")
			}
			return nil
		}
		t.observer.Dispensed(t.clock.Now())
		t.prepare.Set()
		t.log.Info().Msg("dispensing complete")
	}
}

// DisplayTask draws the date and time, and starts measurement after the
// post-dispense settle delay.
type DisplayTask struct {
	clock    Clock
	screen   *Screen
	prepare  *Signal
	measure  *Signal
	interval time.Duration
	settle   time.Duration
	log      zerolog.Logger
}

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04:05"
)

// Render draws one tick. Row 0 is skipped while measurement owns it.
func (t *DisplayTask) Render() {
	now := t.clock.Now()
	mono := t.clock.Monotonic()
	t.log.Debug().Str("clock", now.Format("02-01-2006 15:04:05")).Msg("tick")
	t.screen.WriteLine(WriterClock, 0, now.Format(dateLayout), mono)
	t.screen.WriteLine(WriterClock, 1, now.Format(timeLayout), mono)
}

// Run renders every interval until ctx is done.
func (t *DisplayTask) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var (
		settleTimer *time.Timer
		settled     <-chan time.Time
	)
	defer func() {
		if settleTimer != nil {
			settleTimer.Stop()
		}
	}()

	t.Render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Render()
		case <-t.prepare.C():
			if !t.prepare.IsSet() {
				continue
			}
			t.prepare.Clear()
			if settleTimer != nil {
				settleTimer.Stop()
			}
			settleTimer = time.NewTimer(t.settle)
			settled = settleTimer.C
			t.log.Debug().Dur("settle", t.settle).Msg("display settling before measurement")
		case <-settled:
			settled = nil
			if !t.measure.Set() {
				t.log.Debug().Msg("measurement already running")
			}
		}
	}
}

// MeasureTask runs the measurement state machine when the measure signal is raised.
type MeasureTask struct {
	clock        Clock
	sensor       WeightSensor
	screen       *Screen
	measure      *Signal
	dispatcher   Dispatcher
	observer     Observer
	averages     int
	noiseFloor   float64
	samplePeriod time.Duration
	newID        func() string
	log          zerolog.Logger

	mu sync.Mutex
	m  *Measurement
}

// State returns a copy of the measurement state.
func (t *MeasureTask) State() MeasurementState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.State()
}

// Run waits for measure requests until ctx is done.
func (t *MeasureTask) Run(ctx context.Context) error {
	for {
		if err := t.measure.Wait(ctx); err != nil {
			return nil
		}
		t.cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (t *MeasureTask) cycle(ctx context.Context) {
	first := t.weigh(0)
	start := t.clock.Monotonic()

	t.mu.Lock()
	t.m.Begin(start, t.newID(), first)
	st := t.m.State()
	t.mu.Unlock()

	t.log.Info().Str("cycle", st.CycleID).Float64("grams", first).Msg("measurement started")
	t.observer.MeasurementChanged(st)
	t.dispatch(st, ReadingFed, first)
	t.screen.Reserve(st.WindowStart, st.WindowEnd)

	last := first
	for {
		now := t.clock.Monotonic()
		t.mu.Lock()
		expired := t.m.Expired(now)
		t.mu.Unlock()
		if expired {
			break
		}

		last = t.weigh(last)
		t.log.Debug().Float64("grams", last).Msg("weight sample")

		t.mu.Lock()
		step := t.m.Observe(now, last)
		st = t.m.State()
		t.mu.Unlock()

		if step.ShowFed {
			t.screen.WriteLine(WriterMeasure, 0, "Dog was fed "+grams(st.FirstWeight)+"g", now)
		}
		if step.Midpoint {
			t.screen.Clear()
			t.screen.WriteLine(WriterMeasure, 0, grams(last)+"g food left", now)
			t.log.Info().Str("cycle", st.CycleID).Float64("grams", last).Msg("measurement midpoint")
			t.dispatch(st, ReadingRemaining, last)
		}
		t.observer.MeasurementChanged(st)

		if err := sleep(ctx, t.samplePeriod); err != nil {
			break
		}
	}
	t.finish(st.CycleID)
}

func (t *MeasureTask) finish(cycleID string) {
	t.screen.Clear()
	t.mu.Lock()
	t.m.Finish()
	st := t.m.State()
	t.mu.Unlock()
	t.screen.Release()
	t.measure.Clear()
	t.observer.MeasurementChanged(st)
	t.log.Info().Str("cycle", cycleID).Msg("measurement done")
}

// weigh samples the sensor and applies the noise floor. On a sensor error the
// previous reading is kept.
func (t *MeasureTask) weigh(previous float64) float64 {
	raw, err := t.sensor.Sample(t.averages)
	if err != nil {
		t.log.Warn().Err(err).Float64("kept", previous).Msg("weight sample failed")
		return previous
	}
	return ApplyNoiseFloor(raw, t.noiseFloor)
}

// dispatch hands a reading to the dispatcher. A panicking dispatcher is logged
// and the cycle goes on.
func (t *MeasureTask) dispatch(st MeasurementState, kind ReadingKind, g float64) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Str("kind", string(kind)).Msg("dispatch panicked")
		}
	}()
	t.dispatcher.Dispatch(Reading{
		CycleID: st.CycleID,
		Kind:    kind,
		Grams:   g,
		Time:    t.clock.Now(),
	})
}

// grams formats a weight with no decimals for the display.
func grams(g float64) string {
	return strconv.FormatFloat(g, 'f', 0, 64)
}

// HeartbeatTask blinks an indicator.
type HeartbeatTask struct {
	led    Indicator
	period time.Duration
	log    zerolog.Logger
}

// Run toggles the indicator every period and switches it off when ctx is done.
func (t *HeartbeatTask) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	on := true
	failing := false
	set := func(v bool) {
		err := t.led.Set(v)
		switch {
		case err != nil && !failing:
			failing = true
			t.log.Warn().Err(err).Msg("heartbeat indicator failed")
		case err == nil && failing:
			failing = false
			t.log.Info().Msg("heartbeat indicator recovered")
		}
	}
	set(on)
	for {
		select {
		case <-ctx.Done():
			set(false)
			return nil
		case <-ticker.C:
			on = !on
			set(on)
		}
	}
}

func newCycleID() string {
	return uuid.NewString()
}
