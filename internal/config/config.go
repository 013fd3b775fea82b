// Package config loads the feeder's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
	"github.com/AnnaPov19/DogFeeder/internal/gpio"
	"github.com/AnnaPov19/DogFeeder/internal/lcd"
	"github.com/AnnaPov19/DogFeeder/internal/notify"
	"github.com/AnnaPov19/DogFeeder/internal/scale"
)

// ErrInvalidSchedule is returned when a feeding time cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Config is the complete daemon configuration.
type Config struct {
	Schedule  []string  `yaml:"schedule"`
	Timing    Timing    `yaml:"timing"`
	Dispenser Dispenser `yaml:"dispenser"`
	Scale     Scale     `yaml:"scale"`
	Display   Display   `yaml:"display"`
	RTC       RTC       `yaml:"rtc"`
	LED       LED       `yaml:"led"`
	Network   Network   `yaml:"network"`
	MQTT      MQTT      `yaml:"mqtt"`
	Pushcut   Pushcut   `yaml:"pushcut"`
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
}

// Timing mirrors feeder.Timing.
type Timing struct {
	Poll         time.Duration `yaml:"poll"`
	EdgeSeconds  int           `yaml:"edge_seconds"`
	Hold         time.Duration `yaml:"hold"`
	Settle       time.Duration `yaml:"settle"`
	Window       time.Duration `yaml:"window"`
	Midpoint     time.Duration `yaml:"midpoint"`
	SamplePeriod time.Duration `yaml:"sample_period"`
	Blink        time.Duration `yaml:"blink"`
}

// Dispenser configures the servo.
type Dispenser struct {
	Open    int    `yaml:"open"`
	Closed  int    `yaml:"closed"`
	Chip    string `yaml:"pwm_chip"`
	Channel int    `yaml:"pwm_channel"`
}

// Scale configures the load cell.
type Scale struct {
	Device     string  `yaml:"device"`
	Offset     float64 `yaml:"offset"`
	Factor     float64 `yaml:"factor"`
	Averages   int     `yaml:"averages"`
	NoiseFloor float64 `yaml:"noise_floor"`
}

// Display configures the character LCD.
type Display struct {
	Bus     string `yaml:"bus"`
	Address uint8  `yaml:"address"`
	Cols    int    `yaml:"cols"`
	Rows    int    `yaml:"rows"`
}

// RTC configures the DS3231. When disabled the host clock is used.
type RTC struct {
	Enabled  bool   `yaml:"enabled"`
	Bus      string `yaml:"bus"`
	Location string `yaml:"location"`
}

// LED configures the heartbeat indicator.
type LED struct {
	Enabled bool `yaml:"enabled"`
	Pin     int  `yaml:"pin"`
}

// Network configures the boot connectivity wait.
type Network struct {
	Wait      bool          `yaml:"wait"`
	Interface string        `yaml:"interface"`
	Step      time.Duration `yaml:"step"`
}

// MQTT configures the broker connection. An empty broker disables MQTT.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Pushcut configures the Pushcut webhook. An empty URL disables it.
type Pushcut struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTP configures the status server. An empty address disables it.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the stock configuration.
func Default() *Config {
	t := feeder.DefaultTiming()
	return &Config{
		Schedule: []string{"09:15", "18:15"},
		Timing: Timing{
			Poll:         t.PollInterval,
			EdgeSeconds:  t.EdgeSeconds,
			Hold:         t.Hold,
			Settle:       t.Settle,
			Window:       t.Window,
			Midpoint:     t.Midpoint,
			SamplePeriod: t.SamplePeriod,
			Blink:        t.Heartbeat,
		},
		Dispenser: Dispenser{Open: 90, Closed: 0, Chip: "/sys/class/pwm/pwmchip0", Channel: 0},
		Scale: Scale{
			Device:     scale.DefaultIIODevice,
			Offset:     scale.DefaultOffset,
			Factor:     scale.DefaultScale,
			Averages:   10,
			NoiseFloor: 5,
		},
		Display: Display{Bus: "/dev/i2c-1", Address: lcd.DefaultAddr, Cols: 16, Rows: 2},
		RTC:     RTC{Enabled: true, Bus: "/dev/i2c-0", Location: "Local"},
		LED:     LED{Enabled: true, Pin: gpio.DefaultPinLED},
		Network: Network{Wait: true, Step: 500 * time.Millisecond},
		MQTT:    MQTT{Broker: "tcp://192.168.1.200:1883", ClientID: "dogfeeder", Heartbeat: 15 * time.Minute},
		Pushcut: Pushcut{URL: notify.DefaultPushcutURL, Timeout: 10 * time.Second},
		HTTP:    HTTP{Addr: ":80"},
		Log:     Log{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads YAML from data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Feeder converts the configuration into the orchestrator's config and validates it.
func (c *Config) Feeder() (feeder.Config, error) {
	schedule, err := feeder.ParseSchedule(c.Schedule)
	if err != nil {
		return feeder.Config{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	fc := feeder.Config{
		Schedule: schedule,
		Timing: feeder.Timing{
			PollInterval: c.Timing.Poll,
			EdgeSeconds:  c.Timing.EdgeSeconds,
			Hold:         c.Timing.Hold,
			Settle:       c.Timing.Settle,
			Window:       c.Timing.Window,
			Midpoint:     c.Timing.Midpoint,
			SamplePeriod: c.Timing.SamplePeriod,
			Heartbeat:    c.Timing.Blink,
		},
		Profile:    feeder.Profile{Open: c.Dispenser.Open, Closed: c.Dispenser.Closed},
		NoiseFloor: c.Scale.NoiseFloor,
		Averages:   c.Scale.Averages,
		Width:      c.Display.Cols,
	}
	if err := fc.Validate(); err != nil {
		if len(fc.Schedule) == 0 {
			return feeder.Config{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		return feeder.Config{}, err
	}
	return fc, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Feeder(); err != nil {
		return err
	}
	if c.Display.Rows < 2 {
		return fmt.Errorf("display needs at least 2 rows, got %d", c.Display.Rows)
	}
	if err := (scale.Calibration{Offset: c.Scale.Offset, Scale: c.Scale.Factor}).Validate(); err != nil {
		return err
	}
	if c.Network.Wait && c.Network.Step <= 0 {
		return fmt.Errorf("network step must be positive, got %v", c.Network.Step)
	}
	if c.MQTT.Broker != "" && c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt heartbeat must not be negative, got %v", c.MQTT.Heartbeat)
	}
	if c.Pushcut.URL != "" && c.Pushcut.Timeout <= 0 {
		return fmt.Errorf("pushcut timeout must be positive, got %v", c.Pushcut.Timeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the RTC time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.RTC.Location {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.RTC.Location)
	if err != nil {
		return nil, fmt.Errorf("rtc location: %w", err)
	}
	return loc, nil
}
