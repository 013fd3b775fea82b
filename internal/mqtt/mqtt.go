// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

// Topic is the MQTT topic for feeding readings.
const Topic = "home/dogfeeder/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/dogfeeder/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishReading sends a feeding reading with its rendered message.
	// Returns error if publishing fails (should not crash the process).
	PublishReading(r feeder.Reading, message string) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Feeder FeederPayload `json:"feeder"`
}

// FeederPayload contains the reading details.
type FeederPayload struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	CycleID   string  `json:"cycle_id"`
	Grams     float64 `json:"grams"`
	Message   string  `json:"message"`
}

// FormatPayload creates the JSON payload for a reading.
func FormatPayload(r feeder.Reading, message string) ([]byte, error) {
	payload := Payload{
		Feeder: FeederPayload{
			Timestamp: r.Time.UTC().Format(time.RFC3339),
			Event:     string(r.Kind),
			CycleID:   r.CycleID,
			Grams:     r.Grams,
			Message:   message,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
