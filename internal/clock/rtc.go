package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// RTC reads wall-clock time from a DS3231 real-time clock.
// The chip stores local time without a zone; readings are placed in loc.
// Monotonic readings come from the host.
type RTC struct {
	mu     sync.Mutex
	dev    ds3231.Device
	loc    *time.Location
	host   *System
	log    zerolog.Logger
	failed bool
}

// NewRTC configures the DS3231 on bus. If the oscillator was stopped it is
// restarted, and an invalid time is replaced with the host time.
func NewRTC(bus drivers.I2C, loc *time.Location, log zerolog.Logger) (*RTC, error) {
	if loc == nil {
		loc = time.Local
	}
	dev := ds3231.New(bus)
	dev.Configure()
	if !dev.IsRunning() {
		if err := dev.SetRunning(true); err != nil {
			return nil, fmt.Errorf("start rtc oscillator: %w", err)
		}
	}
	if !dev.IsTimeValid() {
		now := time.Now().In(loc)
		log.Warn().Time("host", now).Msg("rtc time invalid, setting from host")
		if err := dev.SetTime(asUTC(now)); err != nil {
			return nil, fmt.Errorf("set rtc time: %w", err)
		}
	}
	return &RTC{dev: dev, loc: loc, host: NewSystem(), log: log}, nil
}

// Now reads the RTC. On a bus error the host clock is used instead.
func (r *RTC) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.dev.ReadTime()
	if err != nil {
		if !r.failed {
			r.log.Warn().Err(err).Msg("rtc read failed, using host clock")
			r.failed = true
		}
		return r.host.Now().In(r.loc)
	}
	if r.failed {
		r.log.Info().Msg("rtc read recovered")
		r.failed = false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, r.loc)
}

// Monotonic returns the host monotonic reading.
func (r *RTC) Monotonic() time.Duration {
	return r.host.Monotonic()
}

// Temperature returns the DS3231 die temperature in degrees Celsius.
func (r *RTC) Temperature() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mc, err := r.dev.ReadTemperature()
	if err != nil {
		return 0, fmt.Errorf("read rtc temperature: %w", err)
	}
	return float64(mc) / 1000, nil
}

// asUTC keeps the calendar fields of t but labels them UTC, which is how the
// driver expects register values.
func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
