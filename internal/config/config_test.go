package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

func TestDefaultMatchesStockFeeder(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	fc, err := cfg.Feeder()
	require.NoError(t, err)
	want := feeder.DefaultConfig()
	assert.Equal(t, want, fc)

	assert.Equal(t, 7996169.0, cfg.Scale.Offset)
	assert.Equal(t, -948.79, cfg.Scale.Factor)
	assert.Equal(t, uint8(0x27), cfg.Display.Address)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "dogfeeder.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"07:30", "19:00"}, cfg.Schedule)
	assert.Equal(t, 4*time.Minute, cfg.Timing.Window)
	assert.Equal(t, 150*time.Second, cfg.Timing.Midpoint)
	assert.Equal(t, 600*time.Millisecond, cfg.Timing.Hold)
	assert.Equal(t, 2*time.Second, cfg.Timing.Poll, "unset fields keep defaults")
	assert.Equal(t, 100, cfg.Dispenser.Open)
	assert.Equal(t, 0, cfg.Dispenser.Closed)
	assert.Equal(t, 8000000.0, cfg.Scale.Offset)
	assert.Equal(t, 3.0, cfg.Scale.NoiseFloor)
	assert.Equal(t, 10, cfg.Scale.Averages)
	assert.Equal(t, uint8(0x3f), cfg.Display.Address)
	assert.False(t, cfg.RTC.Enabled)
	assert.Equal(t, 27, cfg.LED.Pin)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	fc, err := cfg.Feeder()
	require.NoError(t, err)
	assert.Equal(t, feeder.Schedule{{Hour: 7, Minute: 30}, {Hour: 19, Minute: 0}}, fc.Schedule)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("schedul:\n  - \"09:15\"\n"))
	assert.Error(t, err)
}

func TestInvalidSchedule(t *testing.T) {
	for _, sched := range []string{"schedule: [\"25:00\"]", "schedule: [\"noon\"]", "schedule: []"} {
		cfg, err := Parse([]byte(sched))
		require.NoError(t, err, sched)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidSchedule, sched)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"midpoint after window", func(c *Config) { c.Timing.Midpoint = c.Timing.Window }},
		{"zero poll", func(c *Config) { c.Timing.Poll = 0 }},
		{"poll slower than edge window", func(c *Config) { c.Timing.Poll = 5 * time.Second }},
		{"negative settle", func(c *Config) { c.Timing.Settle = -time.Second }},
		{"open angle", func(c *Config) { c.Dispenser.Open = 181 }},
		{"closed angle", func(c *Config) { c.Dispenser.Closed = -1 }},
		{"zero averages", func(c *Config) { c.Scale.Averages = 0 }},
		{"zero factor", func(c *Config) { c.Scale.Factor = 0 }},
		{"one row", func(c *Config) { c.Display.Rows = 1 }},
		{"network step", func(c *Config) { c.Network.Step = 0 }},
		{"pushcut timeout", func(c *Config) { c.Pushcut.Timeout = 0 }},
		{"location", func(c *Config) { c.RTC.Location = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.RTC.Location = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
