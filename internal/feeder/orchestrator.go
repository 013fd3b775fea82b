package feeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators the orchestrator drives.
type Deps struct {
	Clock      Clock
	Sensor     WeightSensor
	Actuator   Actuator
	Display    Display
	Dispatcher Dispatcher
	// Indicator is optional; without it no heartbeat task runs.
	Indicator Indicator
	// Observer is optional.
	Observer Observer
	// NewCycleID is optional; it defaults to random UUIDs.
	NewCycleID func() string
	Logger     zerolog.Logger
}

// Orchestrator owns the signals, the screen and the tasks of one feeder.
type Orchestrator struct {
	cfg    Config
	screen *Screen
	log    zerolog.Logger

	feed    *Signal
	prepare *Signal
	measure *Signal

	scheduler *SchedulerTask
	feeder    *FeedTask
	display   *DisplayTask
	measurer  *MeasureTask
	heartbeat *HeartbeatTask
}

// New validates cfg and wires the tasks. Nothing runs until Run.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Clock == nil || deps.Sensor == nil || deps.Actuator == nil || deps.Display == nil || deps.Dispatcher == nil {
		return nil, errors.New("clock, sensor, actuator, display and dispatcher are required")
	}
	observer := deps.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	newID := deps.NewCycleID
	if newID == nil {
		newID = newCycleID
	}
	log := deps.Logger

	o := &Orchestrator{
		cfg:     cfg,
		screen:  NewScreen(deps.Display, cfg.Width),
		log:     log,
		feed:    NewSignal("feed"),
		prepare: NewSignal("display-prepare"),
		measure: NewSignal("measure"),
	}
	t := cfg.Timing
	o.scheduler = &SchedulerTask{
		clock:     deps.Clock,
		scheduler: NewScheduler(cfg.Schedule, t.EdgeSeconds),
		feed:      o.feed,
		interval:  t.PollInterval,
		observer:  observer,
		log:       log.With().Str("task", "scheduler").Logger(),
	}
	o.feeder = &FeedTask{
		feed:     o.feed,
		prepare:  o.prepare,
		actuator: deps.Actuator,
		profile:  cfg.Profile,
		hold:     t.Hold,
		clock:    deps.Clock,
		observer: observer,
		log:      log.With().Str("task", "feed").Logger(),
	}
	o.display = &DisplayTask{
		clock:    deps.Clock,
		screen:   o.screen,
		prepare:  o.prepare,
		measure:  o.measure,
		interval: t.PollInterval,
		settle:   t.Settle,
		log:      log.With().Str("task", "display").Logger(),
	}
	o.measurer = &MeasureTask{
		clock:        deps.Clock,
		sensor:       deps.Sensor,
		screen:       o.screen,
		measure:      o.measure,
		dispatcher:   deps.Dispatcher,
		observer:     observer,
		averages:     cfg.Averages,
		noiseFloor:   cfg.NoiseFloor,
		samplePeriod: t.SamplePeriod,
		newID:        newID,
		log:          log.With().Str("task", "measure").Logger(),
		m:            NewMeasurement(t.Window, t.Midpoint),
	}
	if deps.Indicator != nil {
		o.heartbeat = &HeartbeatTask{
			led:    deps.Indicator,
			period: t.Heartbeat,
			log:    log.With().Str("task", "heartbeat").Logger(),
		}
	}
	return o, nil
}

// Run starts every task and blocks until ctx is done, then powers the display off.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info().
		Stringer("schedule", o.cfg.Schedule).
		Dur("window", o.cfg.Timing.Window).
		Dur("midpoint", o.cfg.Timing.Midpoint).
		Msg("feeder started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.scheduler.Run(ctx) })
	g.Go(func() error { return o.feeder.Run(ctx) })
	g.Go(func() error { return o.display.Run(ctx) })
	g.Go(func() error { return o.measurer.Run(ctx) })
	if o.heartbeat != nil {
		g.Go(func() error { return o.heartbeat.Run(ctx) })
	}
	err := g.Wait()

	o.screen.PowerOff()
	o.log.Info().Msg("feeder stopped")
	return err
}

// Measurement returns the measurement state.
func (o *Orchestrator) Measurement() MeasurementState {
	return o.measurer.State()
}

// Window returns the display ownership window.
func (o *Orchestrator) Window() OwnershipWindow {
	return o.screen.Window()
}

// Dispense runs one dispenser profile outside the schedule.
func Dispense(ctx context.Context, a Actuator, p Profile, hold time.Duration, log zerolog.Logger) error {
	t := &FeedTask{actuator: a, profile: p, hold: hold, log: log}
	return t.Dispense(ctx)
}
