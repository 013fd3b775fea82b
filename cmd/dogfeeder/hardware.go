package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AnnaPov19/DogFeeder/internal/clock"
	"github.com/AnnaPov19/DogFeeder/internal/config"
	"github.com/AnnaPov19/DogFeeder/internal/feeder"
	"github.com/AnnaPov19/DogFeeder/internal/gpio"
	"github.com/AnnaPov19/DogFeeder/internal/i2c"
	"github.com/AnnaPov19/DogFeeder/internal/lcd"
	"github.com/AnnaPov19/DogFeeder/internal/scale"
	"github.com/AnnaPov19/DogFeeder/internal/servo"
)

// closers releases hardware in reverse order of acquisition.
type closers []func() error

func (c *closers) add(f func() error) { *c = append(*c, f) }

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openDisplay(c config.Display, cl *closers) (*lcd.HD44780, error) {
	bus, err := i2c.Open(c.Bus)
	if err != nil {
		return nil, fmt.Errorf("open display bus: %w", err)
	}
	cl.add(bus.Close)
	d, err := lcd.NewHD44780(bus, c.Address, c.Cols, c.Rows)
	if err != nil {
		return nil, fmt.Errorf("init display: %w", err)
	}
	return d, nil
}

// openClock returns the DS3231 clock when enabled. A missing RTC is not
// fatal: the host clock is used instead.
func openClock(c config.RTC, loc *time.Location, cl *closers, log zerolog.Logger) feeder.Clock {
	if !c.Enabled {
		return clock.NewSystem()
	}
	bus, err := i2c.Open(c.Bus)
	if err != nil {
		log.Warn().Err(err).Str("bus", c.Bus).Msg("rtc unavailable, using host clock")
		return clock.NewSystem()
	}
	rtc, err := clock.NewRTC(bus, loc, log)
	if err != nil {
		bus.Close()
		log.Warn().Err(err).Msg("rtc init failed, using host clock")
		return clock.NewSystem()
	}
	cl.add(bus.Close)
	log.Info().Str("bus", c.Bus).Stringer("location", loc).Msg("using rtc")
	return rtc
}

func openScale(c config.Scale) (*scale.Scale, error) {
	dev, err := scale.NewIIO(c.Device)
	if err != nil {
		return nil, fmt.Errorf("open scale: %w", err)
	}
	return scale.New(dev, scale.Calibration{Offset: c.Offset, Scale: c.Factor})
}

func openServo(c config.Dispenser, cl *closers) (*servo.PWM, error) {
	pwm, err := servo.Open(c.Chip, c.Channel)
	if err != nil {
		return nil, fmt.Errorf("open servo: %w", err)
	}
	cl.add(pwm.Close)
	return pwm, nil
}

// openLED returns nil when the LED is disabled or cannot be claimed.
func openLED(c config.LED, cl *closers, log zerolog.Logger) feeder.Indicator {
	if !c.Enabled {
		return nil
	}
	out, err := gpio.NewRealOutput(c.Pin)
	if err != nil {
		log.Warn().Err(err).Int("pin", c.Pin).Msg("heartbeat led unavailable")
		return nil
	}
	cl.add(out.Close)
	return out
}
