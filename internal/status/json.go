package status

import (
	"encoding/json"
	"time"

	"github.com/AnnaPov19/DogFeeder/internal/network"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string          `json:"event,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Phase         string          `json:"phase"`
	Measurement   MeasurementJSON `json:"measurement"`
	Feeding       FeedingJSON     `json:"feeding"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     string          `json:"start_time"`
	Timestamp     string          `json:"timestamp"`
	MQTT          MQTTStatus      `json:"mqtt"`
	Network       *network.Info   `json:"network,omitempty"`
	Config        ConfigJSON      `json:"config"`
}

// MeasurementJSON reports the measurement window.
type MeasurementJSON struct {
	CycleID       string  `json:"cycle_id,omitempty"`
	FirstGrams    float64 `json:"first_grams"`
	LastGrams     float64 `json:"last_grams"`
	MidpointFired bool    `json:"midpoint_fired"`
}

// FeedingJSON reports scheduler activity.
type FeedingJSON struct {
	Fired      int    `json:"fired"`
	Missed     int    `json:"missed"`
	Dispensed  int    `json:"dispensed"`
	LastSlot   string `json:"last_slot,omitempty"`
	LastMissed string `json:"last_missed,omitempty"`
	LastFed    string `json:"last_fed,omitempty"`
	NextSlot   string `json:"next_slot,omitempty"`
	NextAt     string `json:"next_at,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Schedule    string   `json:"schedule"`
	PollMs      int64    `json:"poll_ms"`
	WindowMs    int64    `json:"window_ms"`
	MidpointMs  int64    `json:"midpoint_ms"`
	NoiseFloor  float64  `json:"noise_floor_grams"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	Broker      string   `json:"broker"`
	HTTPPort    string   `json:"http_port"`
	Notifiers   []string `json:"notifiers,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	m := snap.Measurement
	return StatusInner{
		Phase: m.Phase.String(),
		Measurement: MeasurementJSON{
			CycleID:       m.CycleID,
			FirstGrams:    m.FirstWeight,
			LastGrams:     m.LastWeight,
			MidpointFired: m.MidpointFired,
		},
		Feeding: FeedingJSON{
			Fired:      snap.Counts.Fired,
			Missed:     snap.Counts.Missed,
			Dispensed:  snap.Counts.Dispensed,
			LastSlot:   snap.LastSlot,
			LastMissed: snap.LastMissed,
			LastFed:    formatTime(snap.LastFed),
			NextSlot:   snap.NextSlot,
			NextAt:     formatTime(snap.NextAt),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Network:       snap.Network,
		Config: ConfigJSON{
			Schedule:    snap.Config.Schedule.String(),
			PollMs:      snap.Config.PollMs,
			WindowMs:    snap.Config.WindowMs,
			MidpointMs:  snap.Config.MidpointMs,
			NoiseFloor:  snap.Config.NoiseFloor,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			Notifiers:   snap.Config.Notifiers,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
