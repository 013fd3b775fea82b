// Package status provides a thread-safe status tracker for the dog feeder daemon.
// It is designed to be read by HTTP handlers and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
	"github.com/AnnaPov19/DogFeeder/internal/network"
)

// Config contains daemon configuration for display.
type Config struct {
	Schedule    feeder.Schedule
	PollMs      int64
	WindowMs    int64
	MidpointMs  int64
	NoiseFloor  float64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	Notifiers   []string
}

// Counts tallies scheduler and dispenser activity since startup.
type Counts struct {
	Fired     int
	Missed    int
	Dispensed int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Measurement   feeder.MeasurementState
	Counts        Counts
	LastSlot      string
	LastFed       time.Time
	LastMissed    string
	NextSlot      string
	NextAt        time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *network.Info
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
// It implements feeder.Observer.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used by Snapshot.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// SlotFired records a fired slot.
func (t *Tracker) SlotFired(slot feeder.Slot, _ time.Time) {
	t.mu.Lock()
	t.snap.Counts.Fired++
	t.snap.LastSlot = slot.String()
	t.mu.Unlock()
}

// SlotMissed records a slot whose edge window was missed.
func (t *Tracker) SlotMissed(slot feeder.Slot, _ time.Time) {
	t.mu.Lock()
	t.snap.Counts.Missed++
	t.snap.LastMissed = slot.String()
	t.mu.Unlock()
}

// Dispensed records a completed dispenser profile.
func (t *Tracker) Dispensed(at time.Time) {
	t.mu.Lock()
	t.snap.Counts.Dispensed++
	t.snap.LastFed = at
	t.mu.Unlock()
}

// MeasurementChanged stores the latest measurement state.
func (t *Tracker) MeasurementChanged(s feeder.MeasurementState) {
	t.mu.Lock()
	t.snap.Measurement = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *network.Info) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call, and
// the next slot is computed from it.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	now := t.now
	t.mu.RUnlock()
	s.Now = now()
	if slot, at, ok := s.Config.Schedule.Next(s.Now); ok {
		s.NextSlot = slot.String()
		s.NextAt = at
	}
	return s
}
