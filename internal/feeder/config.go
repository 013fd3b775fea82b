package feeder

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds every duration the orchestrator sleeps or waits on.
type Timing struct {
	// PollInterval is the scheduler and display tick.
	PollInterval time.Duration
	// EdgeSeconds is the last second of a matching minute that still fires (inclusive).
	EdgeSeconds int
	// Hold is how long the dispenser rests at each end of its motion.
	Hold time.Duration
	// Settle is the pause between dispensing and measuring.
	Settle time.Duration
	// Window is the length of the measurement phase.
	Window time.Duration
	// Midpoint is the elapsed time at which the remaining-food reading is taken.
	Midpoint time.Duration
	// SamplePeriod is the pause between weight samples while measuring.
	SamplePeriod time.Duration
	// Heartbeat is the LED half period.
	Heartbeat time.Duration
}

// Profile is the two-step dispenser motion.
type Profile struct {
	Open   int
	Closed int
}

// Config is the static orchestrator configuration.
type Config struct {
	Schedule   Schedule
	Timing     Timing
	Profile    Profile
	NoiseFloor float64
	Averages   int
	// Width is the number of characters per display row.
	Width int
}

// DefaultTiming returns the stock feeder timings.
func DefaultTiming() Timing {
	return Timing{
		PollInterval: 2 * time.Second,
		EdgeSeconds:  1,
		Hold:         550 * time.Millisecond,
		Settle:       3 * time.Second,
		Window:       180 * time.Second,
		Midpoint:     120 * time.Second,
		SamplePeriod: 3 * time.Second,
		Heartbeat:    time.Second,
	}
}

// DefaultConfig returns a config feeding at 09:15 and 18:15.
func DefaultConfig() Config {
	return Config{
		Schedule:   Schedule{{Hour: 9, Minute: 15}, {Hour: 18, Minute: 15}},
		Timing:     DefaultTiming(),
		Profile:    Profile{Open: 90, Closed: 0},
		NoiseFloor: 5,
		Averages:   10,
		Width:      16,
	}
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if len(c.Schedule) == 0 {
		return errors.New("schedule is empty")
	}
	for _, s := range c.Schedule {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	t := c.Timing
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"poll interval", t.PollInterval},
		{"hold", t.Hold},
		{"window", t.Window},
		{"midpoint", t.Midpoint},
		{"sample period", t.SamplePeriod},
		{"heartbeat", t.Heartbeat},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.v)
		}
	}
	if t.Settle < 0 {
		return fmt.Errorf("settle must not be negative, got %v", t.Settle)
	}
	if t.Midpoint >= t.Window {
		return fmt.Errorf("midpoint %v must be shorter than window %v", t.Midpoint, t.Window)
	}
	if t.EdgeSeconds < 0 || t.EdgeSeconds > 59 {
		return fmt.Errorf("edge seconds out of range: %d", t.EdgeSeconds)
	}
	// A slot fires only from a poll inside its edge window, so polls must
	// never be further apart than the window is wide.
	if limit := time.Duration(t.EdgeSeconds+1) * time.Second; t.PollInterval > limit {
		return fmt.Errorf("poll interval %v exceeds the %v edge window", t.PollInterval, limit)
	}
	if !validAngle(c.Profile.Open) || !validAngle(c.Profile.Closed) {
		return fmt.Errorf("profile angles must be within 0..180, got open=%d closed=%d", c.Profile.Open, c.Profile.Closed)
	}
	if c.NoiseFloor < 0 {
		return fmt.Errorf("noise floor must not be negative, got %v", c.NoiseFloor)
	}
	if c.Averages < 1 {
		return fmt.Errorf("averages must be at least 1, got %d", c.Averages)
	}
	if c.Width < 1 {
		return fmt.Errorf("display width must be at least 1, got %d", c.Width)
	}
	return nil
}

func validAngle(a int) bool {
	return a >= 0 && a <= 180
}
